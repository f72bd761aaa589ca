package content

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

// siteFS is a small valid content root: two tags and two posts.
func siteFS(t *testing.T) fstest.MapFS {
	t.Helper()
	thumb := &fstest.MapFile{Data: pngBytes(t, 4, 3)}
	return fstest.MapFS{
		"tags/go/index.md":   file("---\ntitle: Go\nthumbnail: ./go.png\n---\n"),
		"tags/go/go.png":     thumb,
		"tags/rust/index.md": file("---\ntitle: Rust\nthumbnail: ./rust.png\n---\n"),
		"tags/rust/rust.png": thumb,
		"blog/my-post/index.md": file(`---
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
`),
		"blog/my-post/thumb.png": thumb,
		"blog/Older Post.md": file(`---
id: zz9_-a
title: Older
description: Earlier
tags: [go]
thumbnail: /blog/my-post/thumb.png
date: 2023-06-01
modified: 2023-06-01
repository: null
---
text
`),
	}
}

func blogRecord(fields map[string]any) Record {
	return Record{
		Collection: CollectionBlog,
		Key:        "my-post",
		Source:     "blog/my-post/index.md",
		Fields:     fields,
		Body:       []byte("body"),
	}
}

func validBlogFields() map[string]any {
	return map[string]any{
		"id":          "abc123",
		"title":       "My post",
		"description": "About things",
		"tags":        []any{"go", "rust"},
		"thumbnail":   "./thumb.png",
		"date":        "2024-01-15",
		"modified":    "2024-02-01",
	}
}

// stubAssets resolves every reference except the ones listed as missing.
type stubAssets struct {
	missing map[string]bool
}

func (s stubAssets) ResolveImage(from, ref string) (Image, error) {
	if s.missing[ref] {
		return Image{}, errors.New("not found")
	}
	return Image{Src: ref, Path: "blog/my-post/" + ref, Format: "png", Width: 1, Height: 1}, nil
}

func fstestEmpty() fstest.MapFS {
	return fstest.MapFS{}
}
