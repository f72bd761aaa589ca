package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/eringen/pubsite/frontmatter"
)

// LoadOptions configures Load.
type LoadOptions struct {
	Schema SchemaVersion
	// Assets resolves thumbnails. Defaults to an FSAssets over the loaded fs.
	Assets AssetResolver
	Logger *slog.Logger
}

// Collections is a fully validated and resolved content set.
type Collections struct {
	Schema SchemaVersion
	// Posts are ordered newest first, ties broken by id.
	Posts []Post
	// Tags are ordered by slug.
	Tags []TagEntry

	byID  map[string]int
	byTag map[string]int
}

// Post returns the post with the given id.
func (c *Collections) Post(id string) (Post, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Post{}, false
	}
	return c.Posts[i], true
}

// Tag returns the tag with the given slug.
func (c *Collections) Tag(slug string) (TagEntry, bool) {
	i, ok := c.byTag[slug]
	if !ok {
		return TagEntry{}, false
	}
	return c.Tags[i], true
}

// PostsTagged returns the posts referencing slug, newest first.
func (c *Collections) PostsTagged(slug string) []Post {
	var out []Post
	for _, p := range c.Posts {
		if p.HasTag(slug) {
			out = append(out, p)
		}
	}
	return out
}

// Entries returns the blog entries in post order.
func (c *Collections) Entries() []BlogEntry {
	out := make([]BlogEntry, len(c.Posts))
	for i, p := range c.Posts {
		out[i] = p.Entry
	}
	return out
}

// Redirects returns the legacy id redirects of the set.
func (c *Collections) Redirects() []Redirect {
	return Redirects(c.Entries())
}

// NewCollections assembles an already validated set: the tags are indexed,
// every post is resolved, and ordering is applied.
func NewCollections(schema SchemaVersion, entries []BlogEntry, tags []TagEntry) (*Collections, error) {
	resolver, err := NewResolver(tags)
	if err != nil {
		return nil, err
	}
	posts, err := resolver.ResolveAll(entries)
	if err != nil {
		return nil, err
	}
	return assemble(schema, posts, tags), nil
}

func assemble(schema SchemaVersion, posts []Post, tags []TagEntry) *Collections {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Entry, posts[j].Entry
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID < b.ID
	})
	sortedTags := append([]TagEntry(nil), tags...)
	sort.Slice(sortedTags, func(i, j int) bool { return sortedTags[i].Slug < sortedTags[j].Slug })

	c := &Collections{
		Schema: schema,
		Posts:  posts,
		Tags:   sortedTags,
		byID:   make(map[string]int, len(posts)),
		byTag:  make(map[string]int, len(sortedTags)),
	}
	for i, p := range posts {
		c.byID[p.Entry.ID] = i
	}
	for i, t := range sortedTags {
		c.byTag[t.Slug] = i
	}
	return c
}

// Load reads both collections from fsys and returns the validated set. Any
// schema, reference, or identity error aborts the load; all of them are
// returned joined.
func Load(ctx context.Context, fsys fs.FS, opts LoadOptions) (*Collections, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	assets := opts.Assets
	if assets == nil {
		assets = NewFSAssets(fsys)
	}
	v := NewValidator(opts.Schema, assets)

	tagRecs, err := readCollection(ctx, fsys, CollectionTags)
	if err != nil {
		return nil, err
	}
	blogRecs, err := readCollection(ctx, fsys, CollectionBlog)
	if err != nil {
		return nil, err
	}

	var errs []error
	errs = append(errs, tagRecs.errs...)
	errs = append(errs, blogRecs.errs...)

	// Phase one: every record on its own.
	tags := make([]TagEntry, 0, len(tagRecs.records))
	failedTags := make(map[string]bool)
	for _, rec := range tagRecs.records {
		t, err := v.Tag(rec)
		if err != nil {
			failedTags[rec.Key] = true
			errs = append(errs, err)
			continue
		}
		tags = append(tags, t)
	}
	for key := range tagRecs.broken {
		failedTags[key] = true
	}
	entries := make([]BlogEntry, 0, len(blogRecs.records))
	for _, rec := range blogRecs.records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := v.Blog(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	logger.Debug("Validated content records",
		"schema", v.Version(),
		"tags", len(tags),
		"blog", len(entries),
		"failed", len(errs))

	// Phase two: cross references. Tags that exist but failed validation are
	// already reported and do not produce a second, reference error.
	resolver, err := NewResolver(tags)
	if err != nil {
		return nil, errors.Join(append(errs, err)...)
	}
	posts, err := resolver.ResolveAll(entries)
	if err != nil {
		for _, e := range Unwrap(err) {
			var refErr *ReferenceError
			if errors.As(e, &refErr) && failedTags[refErr.Tag] {
				continue
			}
			errs = append(errs, e)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	c := assemble(v.Version(), posts, tags)
	logger.Info("Loaded content", "posts", len(c.Posts), "tags", len(c.Tags))
	return c, nil
}

type collectionRecords struct {
	records []Record
	errs    []error
	// broken holds keys of records that could not be parsed at all.
	broken map[string]bool
}

func readCollection(ctx context.Context, fsys fs.FS, collection string) (collectionRecords, error) {
	out := collectionRecords{broken: map[string]bool{}}
	if _, err := fs.Stat(fsys, collection); errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}

	seen := make(map[string]string)
	err := fs.WalkDir(fsys, collection, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != collection && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isContentFile(name) {
			return nil
		}

		rel := strings.TrimPrefix(p, collection+"/")
		key := slugFromPath(rel)
		schemaErr := func(reason string) {
			out.errs = append(out.errs, &SchemaValidationError{
				Collection: collection,
				Key:        key,
				Source:     p,
				Reason:     reason,
			})
			out.broken[key] = true
		}
		if key == "" {
			schemaErr("cannot derive a slug from the file path")
			return nil
		}
		if prev, ok := seen[key]; ok {
			out.errs = append(out.errs, &DuplicateIDError{
				Collection: collection,
				Field:      "slug",
				Value:      key,
				First:      prev,
				Second:     p,
			})
			return nil
		}
		seen[key] = p

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		fields, body, err := frontmatter.Parse(raw)
		if err != nil {
			schemaErr(err.Error())
			return nil
		}
		out.records = append(out.records, Record{
			Collection: collection,
			Key:        key,
			Source:     p,
			Fields:     fields,
			Body:       body,
		})
		return nil
	})
	if err != nil {
		return collectionRecords{}, fmt.Errorf("walk %s: %w", collection, err)
	}
	return out, nil
}

func isContentFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}
