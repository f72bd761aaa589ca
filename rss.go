package pubsite

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/eringen/pubsite/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func writeFeed(w io.Writer, cfg SiteConfig, snap *Snapshot) error {
	base := cfg.URL
	items := make([]rssItem, 0, len(snap.Posts))
	for _, p := range snap.Posts {
		postURL := views.AbsURL(base, p.Path())
		item := rssItem{
			Title:       p.Entry.Title,
			Link:        postURL,
			Description: p.Entry.Description,
			PubDate:     p.Entry.Date.Format(time.RFC1123Z),
			GUID:        postURL,
		}
		for _, t := range p.Tags {
			item.Categories = append(item.Categories, t.Title)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        views.BuildURL(base),
			Description: cfg.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
