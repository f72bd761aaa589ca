package pubsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/views"
)

// BuildReport summarizes a static build.
type BuildReport struct {
	OutputDir string
	Pages     int
	Assets    int
	Redirects int
}

// Build rebuilds the index and writes the static site to outDir
// (Config.OutputDir when empty). The site is assembled in a temporary
// directory next to outDir and only moved into place once every file was
// written; on error the previous output is untouched.
func (s *Site) Build(ctx context.Context, outDir string) (BuildReport, error) {
	if outDir == "" {
		outDir = s.Config.OutputDir
	}
	report := BuildReport{OutputDir: outDir}

	if _, err := s.Rebuild(ctx); err != nil {
		return report, err
	}
	snap, err := s.Cache.Snapshot(ctx)
	if err != nil {
		return report, err
	}

	parent := filepath.Dir(filepath.Clean(outDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return report, err
	}
	tmp, err := os.MkdirTemp(parent, ".pubsite-build-*")
	if err != nil {
		return report, err
	}
	defer os.RemoveAll(tmp)
	if err := os.Chmod(tmp, 0o755); err != nil {
		return report, err
	}

	b := &builder{site: s, dir: tmp, cfg: s.Config.views(false)}
	if err := b.write(ctx, snap, &report); err != nil {
		return report, err
	}
	if err := swapDir(tmp, outDir); err != nil {
		return report, fmt.Errorf("pubsite: publish %s: %w", outDir, err)
	}
	s.logger.Info("Static site written",
		"dir", outDir,
		"pages", report.Pages,
		"assets", report.Assets,
		"redirects", report.Redirects)
	return report, nil
}

type builder struct {
	site *Site
	dir  string
	cfg  views.SiteConfig
}

func (b *builder) write(ctx context.Context, snap *Snapshot, report *BuildReport) error {
	page := func(sitePath string, cmp templ.Component) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := renderFile(ctx, b.pagePath(sitePath), cmp); err != nil {
			return fmt.Errorf("render %s: %w", sitePath, err)
		}
		report.Pages++
		return nil
	}

	if err := page("/", views.Home(b.cfg, snap.Posts, snap.Tags)); err != nil {
		return err
	}
	for _, p := range snap.Posts {
		if err := page(p.Path(), views.PostPage(b.cfg, p, relatedPosts(p, snap.Posts, maxRelated))); err != nil {
			return err
		}
	}
	for _, t := range snap.Tags {
		if err := page(content.TagPath(t.Slug), views.TagPage(b.cfg, t, snap.PostsTagged(t.Slug))); err != nil {
			return err
		}
	}
	if err := renderFile(ctx, filepath.Join(b.dir, "404.html"), views.NotFound(b.cfg)); err != nil {
		return err
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"sitemap.xml", func(w io.Writer) error { return writeSitemap(w, b.site.Config, snap) }},
		{"feed.xml", func(w io.Writer) error { return writeFeed(w, b.site.Config, snap) }},
		{"robots.txt", func(w io.Writer) error { return writeRobots(w, b.site.Config) }},
		{"_redirects", func(w io.Writer) error { return writeRedirects(w, snap.Redirects) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(b.dir, f.name), f.write); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	report.Redirects = len(snap.Redirects)

	assets := make([]string, 0)
	for p := range snap.Assets() {
		assets = append(assets, p)
	}
	sort.Strings(assets)
	for _, p := range assets {
		if err := b.copyAsset(p); err != nil {
			return err
		}
		report.Assets++
	}

	if info, err := os.Stat(b.site.staticDir); err == nil && info.IsDir() {
		if err := os.CopyFS(filepath.Join(b.dir, "public"), os.DirFS(b.site.staticDir)); err != nil {
			return fmt.Errorf("copy static dir: %w", err)
		}
	}
	return nil
}

// pagePath maps a site path such as /blog/abc123/my-post/ to its index.html.
func (b *builder) pagePath(sitePath string) string {
	rel := strings.Trim(sitePath, "/")
	return filepath.Join(b.dir, filepath.FromSlash(rel), "index.html")
}

func (b *builder) copyAsset(p string) error {
	src, err := b.site.fsys.Open(p)
	if err != nil {
		return fmt.Errorf("asset %s: %w", p, err)
	}
	defer src.Close()
	dst := filepath.Join(b.dir, filepath.FromSlash(strings.TrimPrefix(path.Join(views.AssetPrefix, p), "/")))
	return writeFile(dst, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
}

func writeFile(name string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// swapDir replaces dst with src. An existing dst is moved aside first and
// restored if the rename fails.
func swapDir(src, dst string) error {
	old := dst + ".old"
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	hadOld := true
	if err := os.Rename(dst, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		hadOld = false
	}
	if err := os.Rename(src, dst); err != nil {
		if hadOld {
			_ = os.Rename(old, dst)
		}
		return err
	}
	if hadOld {
		return os.RemoveAll(old)
	}
	return nil
}
