package pubsite

import (
	"fmt"
	"io"
	"net/http"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/views"
)

// writeRobots allows everything and points crawlers at the sitemap.
func writeRobots(w io.Writer, cfg SiteConfig) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", views.AbsURL(cfg.URL, "/sitemap.xml"))
	return err
}

// writeRedirects writes redirects in the Netlify _redirects format.
func writeRedirects(w io.Writer, redirects []content.Redirect) error {
	for _, r := range redirects {
		if _, err := fmt.Fprintf(w, "%s %s %d\n", r.From, r.To, http.StatusMovedPermanently); err != nil {
			return err
		}
	}
	return nil
}

// relatedPosts returns up to limit posts sharing a tag with current.
func relatedPosts(current content.Post, posts []content.Post, limit int) []content.Post {
	related := views.FilterRelatedPosts(current, posts)
	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

const maxRelated = 3
