package pubsite

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/pubsite/content"
)

// Snapshot is one consistent read of the content index.
type Snapshot struct {
	Posts     []content.Post
	Tags      []content.TagEntry
	Redirects []content.Redirect
}

// Post returns the post with id.
func (s *Snapshot) Post(id string) (content.Post, bool) {
	for _, p := range s.Posts {
		if p.Entry.ID == id {
			return p, true
		}
	}
	return content.Post{}, false
}

// Tag returns the tag with slug.
func (s *Snapshot) Tag(slug string) (content.TagEntry, bool) {
	for _, t := range s.Tags {
		if t.Slug == slug {
			return t, true
		}
	}
	return content.TagEntry{}, false
}

// PostsTagged returns the posts referencing slug, in listing order.
func (s *Snapshot) PostsTagged(slug string) []content.Post {
	var out []content.Post
	for _, p := range s.Posts {
		if p.HasTag(slug) {
			out = append(out, p)
		}
	}
	return out
}

// Redirect returns the canonical path for a retired path.
func (s *Snapshot) Redirect(from string) (string, bool) {
	for _, r := range s.Redirects {
		if r.From == from {
			return r.To, true
		}
	}
	return "", false
}

// Assets returns the content-root paths of every resolved thumbnail.
func (s *Snapshot) Assets() map[string]struct{} {
	out := make(map[string]struct{})
	add := func(img content.Image) {
		if img.Resolved() {
			out[img.Path] = struct{}{}
		}
	}
	for _, t := range s.Tags {
		add(t.Thumbnail)
	}
	for _, p := range s.Posts {
		add(p.Entry.Thumbnail)
	}
	return out
}

// ContentCache is an in-memory snapshot of the Store with TTL.
type ContentCache struct {
	mu      sync.RWMutex
	snap    *Snapshot
	assets  map[string]struct{}
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.snap != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.assets = nil
	c.mu.Unlock()
}

func (c *ContentCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return err
	}
	redirects, err := c.store.ListRedirects(ctx)
	if err != nil {
		return err
	}
	c.snap = &Snapshot{Posts: posts, Tags: tags, Redirects: redirects}
	c.assets = c.snap.Assets()
	c.fetched = time.Now()
	return nil
}

// Snapshot returns the cached index after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ContentCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.snap, nil
}

// ListPosts returns indexed posts, optionally filtered by tag.
func (c *ContentCache) ListPosts(ctx context.Context, tag string) ([]content.Post, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return snap.Posts, nil
	}
	return snap.PostsTagged(tag), nil
}

// GetPost returns a single post by id from the cache.
func (c *ContentCache) GetPost(ctx context.Context, id string) (content.Post, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return content.Post{}, err
	}
	if p, ok := snap.Post(id); ok {
		return p, nil
	}
	return content.Post{}, ErrNotFound
}

// GetTag returns a single tag by slug from the cache.
func (c *ContentCache) GetTag(ctx context.Context, slug string) (content.TagEntry, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return content.TagEntry{}, err
	}
	if t, ok := snap.Tag(slug); ok {
		return t, nil
	}
	return content.TagEntry{}, ErrNotFound
}

// LookupRedirect returns the canonical path a retired path redirects to.
func (c *ContentCache) LookupRedirect(ctx context.Context, from string) (string, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if to, ok := snap.Redirect(from); ok {
		return to, nil
	}
	return "", ErrNotFound
}

// HasAsset reports whether p is a thumbnail referenced by indexed content.
func (c *ContentCache) HasAsset(ctx context.Context, p string) (bool, error) {
	if _, err := c.Snapshot(ctx); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.assets[p]
	return ok, nil
}
