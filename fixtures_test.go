package pubsite

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/eringen/pubsite/content"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func intPtr(v int) *int         { return &v }
func strPtr(v string) *string   { return &v }
func day(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

// testCollections is a validated set of two tags and three posts.
func testCollections(t *testing.T) *content.Collections {
	t.Helper()
	img := func(p string) content.Image {
		return content.Image{Src: "./" + p, Path: p, Format: "png", Width: 8, Height: 6}
	}
	tags := []content.TagEntry{
		{Slug: "rust", Title: "Rust", Thumbnail: img("tags/rust/rust.png"), Source: "tags/rust/index.md"},
		{Slug: "go", Title: "Go", Thumbnail: img("tags/go/go.png"), Source: "tags/go/index.md"},
	}
	entries := []content.BlogEntry{
		{
			ID: "abc123", LegacyID: intPtr(7), Slug: "my-post",
			Title: "My post", Description: "About things",
			Tags:      []string{"go", "rust", "go"},
			Thumbnail: img("blog/my-post/thumb.png"),
			Date:      day(2024, 1, 15), Modified: day(2024, 2, 1),
			Repository: strPtr("my-post-demo"),
			Source:     "blog/my-post/index.md", Body: []byte("# Hello\n"), Fingerprint: "fp-1",
		},
		{
			ID: "zz9_-a", Slug: "older-post",
			Title: "Older", Description: "Earlier",
			Tags:      []string{"go"},
			Thumbnail: img("blog/my-post/thumb.png"),
			Date:      day(2023, 6, 1), Modified: day(2023, 6, 1),
			Source: "blog/Older Post.md", Body: []byte("Older body\n"), Fingerprint: "fp-2",
		},
		{
			ID: "rst001", Slug: "rusty",
			Title: "Rusty", Description: "Only rust",
			Tags:      []string{"rust"},
			Thumbnail: img("blog/my-post/thumb.png"),
			Date:      day(2023, 6, 1), Modified: day(2023, 7, 1),
			Source: "blog/rusty.md", Body: []byte("Rust body\n"), Fingerprint: "fp-3",
		},
	}
	c, err := content.NewCollections(content.SchemaV2, entries, tags)
	if err != nil {
		t.Fatalf("NewCollections: %v", err)
	}
	return c
}

// testContentFS is a content root that loads without errors.
func testContentFS(t *testing.T) fstest.MapFS {
	t.Helper()
	thumb := &fstest.MapFile{Data: pngBytes(t)}
	return fstest.MapFS{
		"tags/go/index.md":   {Data: []byte("---\ntitle: Go\nthumbnail: ./go.png\n---\n")},
		"tags/go/go.png":     thumb,
		"tags/rust/index.md": {Data: []byte("---\ntitle: Rust\nthumbnail: ./rust.png\n---\n")},
		"tags/rust/rust.png": thumb,
		"blog/my-post/index.md": {Data: []byte(`---
id: abc123
oldId: 7
title: My post
description: About things
tags: [go, rust]
thumbnail: ./thumb.png
date: 2024-01-15
modified: 2024-02-01
repository: my-post-demo
---
# Hello

<Note type="IMPORTANT">
  Mind the gap
</Note>
`)},
		"blog/my-post/thumb.png": thumb,
		"blog/second.md": {Data: []byte(`---
id: def456
title: Second
description: Another
tags: [go]
thumbnail: ./my-post/thumb.png
date: 2023-06-01
modified: 2023-06-01
---
Body
`)},
	}
}
