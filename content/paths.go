package content

import "strconv"

// BlogPath returns the canonical public path of a blog entry. Every link to
// an entry is built here; the id and slug are guaranteed URL safe by the
// validator and the loader.
func BlogPath(e BlogEntry) string {
	return "/blog/" + e.ID + "/" + e.Slug + "/"
}

// TagPath returns the canonical public path of a tag index page.
func TagPath(slug string) string {
	return "/tags/" + slug + "/"
}

// Redirect maps a retired path to its canonical replacement.
type Redirect struct {
	From string
	To   string
}

// Redirects returns the permanent redirects from legacy integer ids to the
// canonical paths of the entries that carry them, in entry order.
func Redirects(entries []BlogEntry) []Redirect {
	var out []Redirect
	for _, e := range entries {
		if e.LegacyID == nil {
			continue
		}
		old := "/blog/" + strconv.Itoa(*e.LegacyID) + "/"
		to := BlogPath(e)
		if old+e.Slug+"/" != to {
			out = append(out, Redirect{From: old + e.Slug + "/", To: to})
		}
		out = append(out, Redirect{From: old, To: to})
	}
	return out
}
