package pubsite

import (
	"encoding/xml"
	"io"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemap lists the home page, every post at its canonical path, and
// every tag page.
func writeSitemap(w io.Writer, cfg SiteConfig, snap *Snapshot) error {
	base := cfg.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
	}
	for _, p := range snap.Posts {
		urls = append(urls, sitemapURL{
			Loc:     views.AbsURL(base, p.Path()),
			LastMod: p.Entry.Modified.Format("2006-01-02"),
		})
	}
	for _, t := range snap.Tags {
		urls = append(urls, sitemapURL{Loc: views.AbsURL(base, content.TagPath(t.Slug))})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}
