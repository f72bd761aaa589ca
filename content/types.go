// Package content loads the blog and tag collections, validates them against
// the site schema, resolves tag references, and derives canonical paths.
//
// Loading happens in two phases. Every record is first validated on its own;
// cross references between collections are only resolved once both
// collections are fully parsed, so every dangling reference is reported in
// the same pass.
package content

import "time"

// Collection names as they appear in the content root.
const (
	CollectionBlog = "blog"
	CollectionTags = "tags"
)

// Record is a raw, untyped content record as read from a content file.
type Record struct {
	Collection string
	// Key is the slug derived from the record's location.
	Key string
	// Source is the record's path inside the content root.
	Source string
	Fields map[string]any
	Body   []byte
}

// Image is a thumbnail reference. Under the legacy schema only Src is set.
type Image struct {
	// Src is the reference exactly as authored.
	Src string
	// Path is the asset's location inside the content root.
	Path   string
	Format string
	Width  int
	Height int
}

// Resolved reports whether the image was checked against a real asset.
func (i Image) Resolved() bool {
	return i.Path != ""
}

// BlogEntry is a validated blog post.
type BlogEntry struct {
	ID          string
	LegacyID    *int
	Title       string
	Description string
	Tags        []string
	Thumbnail   Image
	Date        time.Time
	Modified    time.Time
	Repository  *string
	Slug        string

	Source      string
	Body        []byte
	Fingerprint string
}

// TagEntry is a validated tag. Its slug is the target of blog tag references.
type TagEntry struct {
	Slug      string
	Title     string
	Thumbnail Image
	Source    string
}

// TagReference is a tag token of a blog entry resolved against the tag set.
type TagReference struct {
	Slug      string
	Title     string
	Thumbnail Image
	Path      string
}

// Post is a blog entry together with its resolved tags, in authored order.
type Post struct {
	Entry BlogEntry
	Tags  []TagReference
}

// Path returns the post's canonical path.
func (p Post) Path() string {
	return BlogPath(p.Entry)
}

// HasTag reports whether the post references the tag slug.
func (p Post) HasTag(slug string) bool {
	for _, t := range p.Tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}
