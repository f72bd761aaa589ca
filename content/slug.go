package content

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts s to a URL-safe slug: accents are folded, letters are
// lowercased, and every run of other characters becomes a single "-".
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	prev := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// slugFromPath derives a record key from its path inside a collection:
// the extension is dropped, a trailing "index" collapses into its directory,
// and the slugified segments are joined with "-" so the key stays a single
// path segment.
func slugFromPath(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	segs := strings.Split(rel, "/")
	if len(segs) > 1 && segs[len(segs)-1] == "index" {
		segs = segs[:len(segs)-1]
	}
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if slug := Slugify(s); slug != "" {
			out = append(out, slug)
		}
	}
	return strings.Join(out, "-")
}
