package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidSite(t *testing.T) {
	c, err := Load(context.Background(), siteFS(t), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, SchemaV2, c.Schema)
	require.Len(t, c.Posts, 2)
	require.Len(t, c.Tags, 2)

	newest := c.Posts[0]
	assert.Equal(t, "abc123", newest.Entry.ID)
	assert.Equal(t, "my-post", newest.Entry.Slug)
	assert.Equal(t, "/blog/abc123/my-post/", newest.Path())
	require.Len(t, newest.Tags, 2)
	assert.Equal(t, "go", newest.Tags[0].Slug)
	assert.Equal(t, "rust", newest.Tags[1].Slug)
	assert.Equal(t, "blog/my-post/thumb.png", newest.Entry.Thumbnail.Path)
	assert.Equal(t, 4, newest.Entry.Thumbnail.Width)
	assert.Equal(t, "# Hello\n", string(newest.Entry.Body))

	older := c.Posts[1]
	assert.Equal(t, "older-post", older.Entry.Slug)
	assert.Nil(t, older.Entry.Repository)
	assert.Equal(t, "blog/my-post/thumb.png", older.Entry.Thumbnail.Path)

	p, ok := c.Post("zz9_-a")
	require.True(t, ok)
	assert.Equal(t, "Older", p.Entry.Title)
	tag, ok := c.Tag("rust")
	require.True(t, ok)
	assert.Equal(t, "Rust", tag.Title)
	assert.Len(t, c.PostsTagged("go"), 2)
	assert.Len(t, c.PostsTagged("rust"), 1)

	assert.Equal(t, []Redirect{
		{From: "/blog/7/my-post/", To: "/blog/abc123/my-post/"},
		{From: "/blog/7/", To: "/blog/abc123/my-post/"},
	}, c.Redirects())
}

func TestLoad_Deterministic(t *testing.T) {
	fsys := siteFS(t)
	first, err := Load(context.Background(), fsys, LoadOptions{})
	require.NoError(t, err)
	second, err := Load(context.Background(), fsys, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Posts, second.Posts)
	assert.Equal(t, first.Tags, second.Tags)
}

func TestLoad_DanglingReferenceAbortsBuild(t *testing.T) {
	fsys := siteFS(t)
	delete(fsys, "tags/rust/index.md")

	c, err := Load(context.Background(), fsys, LoadOptions{})
	require.Error(t, err)
	assert.Nil(t, c)

	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "rust", refErr.Tag)
	assert.Equal(t, "abc123", refErr.Entry)
}

func TestLoad_InvalidTagIsReportedOnce(t *testing.T) {
	fsys := siteFS(t)
	fsys["tags/rust/index.md"] = file("---\nthumbnail: ./rust.png\n---\n")

	_, err := Load(context.Background(), fsys, LoadOptions{})
	leaves := Unwrap(err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "schema", Kind(leaves[0]))
}

func TestLoad_CollectsErrorsFromEveryRecord(t *testing.T) {
	fsys := siteFS(t)
	fsys["blog/broken.md"] = file("---\ntitle: x\n")
	fsys["blog/empty.md"] = file("no frontmatter at all")

	_, err := Load(context.Background(), fsys, LoadOptions{})
	require.Error(t, err)

	sources := map[string]int{}
	for _, e := range Unwrap(err) {
		var se *SchemaValidationError
		require.True(t, errors.As(e, &se), "%v", e)
		sources[se.Source]++
	}
	assert.Equal(t, 1, sources["blog/broken.md"])
	assert.Equal(t, 7, sources["blog/empty.md"])
}

func TestLoad_DuplicateSlug(t *testing.T) {
	fsys := siteFS(t)
	fsys["blog/my-post.md"] = fsys["blog/my-post/index.md"]

	_, err := Load(context.Background(), fsys, LoadOptions{})
	var dup *DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "my-post", dup.Value)
}

func TestLoad_SkipsHiddenAndDrafts(t *testing.T) {
	fsys := siteFS(t)
	fsys["blog/_drafts/wip.md"] = file("not valid")
	fsys["blog/.notes.md"] = file("not valid")
	fsys["blog/my-post/notes.txt"] = file("ignored")

	c, err := Load(context.Background(), fsys, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, c.Posts, 2)
}

func TestLoad_MissingThumbnail(t *testing.T) {
	fsys := siteFS(t)
	delete(fsys, "tags/go/go.png")

	_, err := Load(context.Background(), fsys, LoadOptions{})
	var se *SchemaValidationError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "thumbnail", se.Field)
	assert.Equal(t, "tags/go/index.md", se.Source)
}

func TestLoad_LegacySchema(t *testing.T) {
	fsys := siteFS(t)
	fsys["blog/my-post/index.md"] = file(`---
id: 7
title: My post
description: About things
tags: [go]
thumbnail: /images/x.png
date: 2024-01-15
modified: 2024-01-15
---
`)
	delete(fsys, "blog/Older Post.md")

	c, err := Load(context.Background(), fsys, LoadOptions{Schema: SchemaV1})
	require.NoError(t, err)
	require.Len(t, c.Posts, 1)
	assert.Equal(t, "/blog/7/my-post/", c.Posts[0].Path())
	assert.Empty(t, c.Redirects())
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, siteFS(t), LoadOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoad_EmptyRoot(t *testing.T) {
	c, err := Load(context.Background(), fstestEmpty(), LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, c.Posts)
	assert.Empty(t, c.Tags)
}
