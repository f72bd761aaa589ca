package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/pubsite/content"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsURL joins a site-relative path such as content.BlogPath onto the base URL.
func AbsURL(base, sitePath string) string {
	return strings.TrimRight(base, "/") + sitePath
}

// AssetPrefix is where resolved content assets are published.
const AssetPrefix = "/_assets/"

// ImageURL returns the public URL of a thumbnail. Unresolved legacy paths are
// used as authored.
func ImageURL(img content.Image) string {
	if img.Resolved() {
		return AssetPrefix + img.Path
	}
	return img.Src
}

// FilterRelatedPosts returns posts that share at least one tag with current.
func FilterRelatedPosts(current content.Post, posts []content.Post) []content.Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		tagSet[t.Slug] = struct{}{}
	}
	var related []content.Post
	for _, p := range posts {
		if p.Entry.ID == current.Entry.ID {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[t.Slug]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "flex gap-1 flex-nowrap items-center text-orange-400"
	if active {
		base += " font-bold underline"
	}
	return base
}

// FormatDate formats a post date for display.
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post content.Post) string {
	postURL := AbsURL(cfg.URL, post.Path())
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Entry.Title,
		"description":   post.Entry.Description,
		"datePublished": post.Entry.Date.Format("2006-01-02"),
		"dateModified":  post.Entry.Modified.Format("2006-01-02"),
		"url":           postURL,
		"image":         AbsURL(cfg.URL, ImageURL(post.Entry.Thumbnail)),
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(post.Tags) > 0 {
		titles := make([]string, len(post.Tags))
		for i, t := range post.Tags {
			titles[i] = t.Title
		}
		data["keywords"] = strings.Join(titles, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
