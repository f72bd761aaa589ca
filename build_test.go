package pubsite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestBuild(t *testing.T) {
	s := newTestSite(t, testContentFS(t))
	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.staticDir, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := s.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out := s.Config.OutputDir
	if report.OutputDir != out {
		t.Errorf("OutputDir = %q, want %q", report.OutputDir, out)
	}
	// home, two posts, two tags
	if report.Pages != 5 {
		t.Errorf("Pages = %d, want 5", report.Pages)
	}
	if report.Redirects != 2 {
		t.Errorf("Redirects = %d, want 2", report.Redirects)
	}

	for _, name := range []string{
		"index.html",
		"404.html",
		"blog/abc123/my-post/index.html",
		"blog/def456/second/index.html",
		"tags/go/index.html",
		"tags/rust/index.html",
		"sitemap.xml",
		"feed.xml",
		"robots.txt",
		"_redirects",
		"_assets/blog/my-post/thumb.png",
		"_assets/tags/go/go.png",
		"public/style.css",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	redirects := readFile(t, filepath.Join(out, "_redirects"))
	for _, line := range []string{
		"/blog/7/my-post/ /blog/abc123/my-post/ 301",
		"/blog/7/ /blog/abc123/my-post/ 301",
	} {
		if !strings.Contains(redirects, line) {
			t.Errorf("_redirects missing %q:\n%s", line, redirects)
		}
	}

	post := readFile(t, filepath.Join(out, "blog", "abc123", "my-post", "index.html"))
	if !strings.Contains(post, `src="/_assets/blog/my-post/thumb.png"`) {
		t.Error("post page does not reference the published thumbnail")
	}
	if strings.Contains(post, "/__livereload") {
		t.Error("static build must not include the live reload script")
	}
}

func TestBuildFailureKeepsPreviousOutput(t *testing.T) {
	fsys := testContentFS(t)
	s := newTestSite(t, fsys)
	ctx := context.Background()
	if _, err := s.Build(ctx, ""); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	before := readFile(t, filepath.Join(s.Config.OutputDir, "index.html"))

	fsys["blog/third.md"] = &fstest.MapFile{Data: []byte(`---
id: abc123
title: Duplicate
description: Reuses an id
tags: [go]
thumbnail: ./my-post/thumb.png
date: 2025-01-01
modified: 2025-01-01
---
`)}
	if _, err := s.Build(ctx, ""); err == nil {
		t.Fatal("expected build error for duplicate id")
	}
	after := readFile(t, filepath.Join(s.Config.OutputDir, "index.html"))
	if before != after {
		t.Error("failed build changed the published output")
	}
	if strings.Contains(after, "Duplicate") {
		t.Error("failed build published partial content")
	}

	entries, err := os.ReadDir(filepath.Dir(s.Config.OutputDir))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".pubsite-build-") {
			t.Errorf("temporary build dir %s left behind", e.Name())
		}
	}
}

func TestBuildReplacesOutput(t *testing.T) {
	fsys := testContentFS(t)
	s := newTestSite(t, fsys)
	ctx := context.Background()
	if _, err := s.Build(ctx, ""); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	delete(fsys, "blog/second.md")
	if _, err := s.Build(ctx, ""); err != nil {
		t.Fatalf("second Build failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Config.OutputDir, "blog", "def456")); !os.IsNotExist(err) {
		t.Errorf("removed post still published: %v", err)
	}
	if _, err := os.Stat(s.Config.OutputDir + ".old"); !os.IsNotExist(err) {
		t.Errorf("previous output left behind: %v", err)
	}
}
