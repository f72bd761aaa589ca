// Package scaffold creates new pubsite projects and content records from
// embedded templates.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/pubsite/content"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const siteRoot = "templates/site"

// ErrExists is returned instead of overwriting existing files.
var ErrExists = errors.New("already exists")

// NewID returns a random six character blog id made of URL-safe characters.
func NewID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])[:6]
}

// SiteData holds the template variables of a new site.
type SiteData struct {
	SiteName string
	PostID   string
	Date     string
}

// InitSite renders the site skeleton into dir, which must not exist or be
// empty. It returns the created paths.
func InitSite(dir, siteName string, now time.Time) ([]string, error) {
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("directory %q: %w and is not empty", dir, ErrExists)
	}
	data := SiteData{
		SiteName: siteName,
		PostID:   NewID(),
		Date:     now.UTC().Format("2006-01-02"),
	}

	var created []string
	err := fs.WalkDir(Templates, siteRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, siteRoot), "/")
		out := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))
		switch filepath.Base(out) {
		case "dotenv":
			out = filepath.Join(filepath.Dir(out), ".env.example")
		case "gitignore":
			out = filepath.Join(filepath.Dir(out), ".gitignore")
		}
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		if err := render(p, out, data); err != nil {
			return err
		}
		created = append(created, out)
		if filepath.Base(out) == "index.md" {
			thumb := filepath.Join(filepath.Dir(out), "thumbnail.png")
			if err := writeThumbnail(thumb); err != nil {
				return err
			}
			created = append(created, thumb)
		}
		return nil
	})
	return created, err
}

// PostData holds the template variables of a new blog entry.
type PostData struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Repository  string
	Date        string
}

// NewPost writes blog/{slug}/index.md under contentDir with a fresh id and a
// placeholder thumbnail. The slug is derived from title unless given.
func NewPost(contentDir, slug string, data PostData, now time.Time) (string, error) {
	if slug == "" {
		slug = content.Slugify(data.Title)
	}
	if slug == "" {
		return "", errors.New("post needs a title or slug")
	}
	if data.ID == "" {
		data.ID = NewID()
	}
	if data.Description == "" {
		data.Description = data.Title
	}
	data.Date = now.UTC().Format("2006-01-02")
	return newRecord(contentDir, content.CollectionBlog, slug, "templates/post.md.tmpl", data)
}

// TagData holds the template variables of a new tag.
type TagData struct {
	Title string
}

// NewTag writes tags/{slug}/index.md under contentDir with a placeholder
// thumbnail.
func NewTag(contentDir, slug string, data TagData) (string, error) {
	slug = content.Slugify(slug)
	if slug == "" {
		return "", errors.New("tag needs a slug")
	}
	if data.Title == "" {
		data.Title = slug
	}
	return newRecord(contentDir, content.CollectionTags, slug, "templates/tag.md.tmpl", data)
}

func newRecord(contentDir, collection, slug, tmpl string, data any) (string, error) {
	dir := filepath.Join(contentDir, collection, slug)
	out := filepath.Join(dir, "index.md")
	if _, err := os.Stat(out); err == nil {
		return "", fmt.Errorf("%s: %w", out, ErrExists)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := render(tmpl, out, data); err != nil {
		return "", err
	}
	if err := writeThumbnail(filepath.Join(dir, "thumbnail.png")); err != nil {
		return "", err
	}
	return out, nil
}

func render(name, out string, data any) error {
	raw, err := Templates.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	tmpl, err := template.New(path.Base(name)).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}

// writeThumbnail writes a flat placeholder image unless one exists.
func writeThumbnail(name string) error {
	if _, err := os.Stat(name); err == nil {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	fill := color.RGBA{R: 0xfb, G: 0x92, B: 0x3c, A: 0xff}
	for y := 0; y < 180; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(name, buf.Bytes(), 0o644)
}
