package pubsite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubsite/content"
)

// ErrNotFound is returned when a requested post, tag, or redirect does not exist.
var ErrNotFound = sql.ErrNoRows

// timeLayout is fixed width so stored dates sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the SQLite content index. It holds the last successfully loaded
// content set; a failed load never touches it.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while a rebuild writes. Writers wait
	// on the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS tags (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    thumbnail_src TEXT NOT NULL,
    thumbnail_path TEXT NOT NULL,
    thumbnail_format TEXT NOT NULL,
    thumbnail_width INTEGER NOT NULL,
    thumbnail_height INTEGER NOT NULL,
    source TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    legacy_id INTEGER UNIQUE,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    thumbnail_src TEXT NOT NULL,
    thumbnail_path TEXT NOT NULL,
    thumbnail_format TEXT NOT NULL,
    thumbnail_width INTEGER NOT NULL,
    thumbnail_height INTEGER NOT NULL,
    date TEXT NOT NULL,
    modified TEXT NOT NULL,
    repository TEXT,
    source TEXT NOT NULL,
    body TEXT NOT NULL,
    fingerprint TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entry_tags (
    entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    tag_slug TEXT NOT NULL REFERENCES tags(slug),
    PRIMARY KEY (entry_id, position)
);
CREATE INDEX IF NOT EXISTS entry_tags_tag ON entry_tags(tag_slug);
CREATE TABLE IF NOT EXISTS redirects (
    from_path TEXT PRIMARY KEY,
    to_path TEXT NOT NULL
);
`)
	return err
}

// ReplaceStats summarizes how an index replacement changed the entry set,
// compared by content fingerprint.
type ReplaceStats struct {
	Added     int
	Changed   int
	Unchanged int
	Removed   int
}

// Replace swaps the whole index for c in one transaction.
func (s *Store) Replace(ctx context.Context, c *content.Collections) (ReplaceStats, error) {
	var stats ReplaceStats
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	previous := make(map[string]string)
	rows, err := tx.QueryContext(ctx, `SELECT id, fingerprint FROM entries`)
	if err != nil {
		return stats, err
	}
	for rows.Next() {
		var id, fp string
		if err := rows.Scan(&id, &fp); err != nil {
			rows.Close()
			return stats, err
		}
		previous[id] = fp
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	for _, q := range []string{
		`DELETE FROM entry_tags`,
		`DELETE FROM redirects`,
		`DELETE FROM entries`,
		`DELETE FROM tags`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return stats, err
		}
	}

	for _, t := range c.Tags {
		th := t.Thumbnail
		if _, err := tx.ExecContext(ctx, `INSERT INTO tags (slug, title, thumbnail_src, thumbnail_path, thumbnail_format, thumbnail_width, thumbnail_height, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Slug, t.Title, th.Src, th.Path, th.Format, th.Width, th.Height, t.Source); err != nil {
			return stats, fmt.Errorf("index tag %q: %w", t.Slug, err)
		}
	}
	for _, p := range c.Posts {
		e := p.Entry
		th := e.Thumbnail
		if _, err := tx.ExecContext(ctx, `INSERT INTO entries (id, legacy_id, slug, title, description, thumbnail_src, thumbnail_path, thumbnail_format, thumbnail_width, thumbnail_height, date, modified, repository, source, body, fingerprint) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, nullInt(e.LegacyID), e.Slug, e.Title, e.Description,
			th.Src, th.Path, th.Format, th.Width, th.Height,
			formatTime(e.Date), formatTime(e.Modified), nullString(e.Repository),
			e.Source, string(e.Body), e.Fingerprint); err != nil {
			return stats, fmt.Errorf("index entry %q: %w", e.ID, err)
		}
		for i, slug := range e.Tags {
			if _, err := tx.ExecContext(ctx, `INSERT INTO entry_tags (entry_id, position, tag_slug) VALUES (?, ?, ?)`, e.ID, i, slug); err != nil {
				return stats, fmt.Errorf("index entry %q tag %q: %w", e.ID, slug, err)
			}
		}
		switch fp, ok := previous[e.ID]; {
		case !ok:
			stats.Added++
		case fp != e.Fingerprint:
			stats.Changed++
		default:
			stats.Unchanged++
		}
		delete(previous, e.ID)
	}
	stats.Removed = len(previous)
	for _, r := range c.Redirects() {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO redirects (from_path, to_path) VALUES (?, ?)`, r.From, r.To); err != nil {
			return stats, err
		}
	}
	if err := tx.Commit(); err != nil {
		return stats, err
	}
	return stats, nil
}

const entryColumns = `id, legacy_id, slug, title, description, thumbnail_src, thumbnail_path, thumbnail_format, thumbnail_width, thumbnail_height, date, modified, repository, source, body, fingerprint`

// ListPosts returns indexed posts ordered by date descending, then id.
// If tag is non-empty, results are filtered to posts referencing that tag.
func (s *Store) ListPosts(ctx context.Context, tag string) ([]content.Post, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY date DESC, id ASC`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id IN (SELECT entry_id FROM entry_tags WHERE tag_slug = ?) ORDER BY date DESC, id ASC`, tag)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, content.Post{Entry: e})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single indexed post by id.
func (s *Store) GetPost(ctx context.Context, id string) (content.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return content.Post{}, err
	}
	posts := []content.Post{{Entry: e}}
	if err := s.attachTags(ctx, posts); err != nil {
		return content.Post{}, err
	}
	return posts[0], nil
}

// attachTags fills the tag tokens and resolved references of posts, in
// authored order.
func (s *Store) attachTags(ctx context.Context, posts []content.Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		index[p.Entry.ID] = i
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT et.entry_id, t.slug, t.title, t.thumbnail_src, t.thumbnail_path, t.thumbnail_format, t.thumbnail_width, t.thumbnail_height
FROM entry_tags et JOIN tags t ON t.slug = et.tag_slug
ORDER BY et.entry_id, et.position`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var entryID string
		var ref content.TagReference
		th := &ref.Thumbnail
		if err := rows.Scan(&entryID, &ref.Slug, &ref.Title, &th.Src, &th.Path, &th.Format, &th.Width, &th.Height); err != nil {
			return err
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		ref.Path = content.TagPath(ref.Slug)
		posts[i].Entry.Tags = append(posts[i].Entry.Tags, ref.Slug)
		posts[i].Tags = append(posts[i].Tags, ref)
	}
	return rows.Err()
}

// ListTags returns every indexed tag ordered by slug.
func (s *Store) ListTags(ctx context.Context) ([]content.TagEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, title, thumbnail_src, thumbnail_path, thumbnail_format, thumbnail_width, thumbnail_height, source FROM tags ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []content.TagEntry
	for rows.Next() {
		var t content.TagEntry
		th := &t.Thumbnail
		if err := rows.Scan(&t.Slug, &t.Title, &th.Src, &th.Path, &th.Format, &th.Width, &th.Height, &t.Source); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListRedirects returns every legacy redirect ordered by source path.
func (s *Store) ListRedirects(ctx context.Context) ([]content.Redirect, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_path, to_path FROM redirects ORDER BY from_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []content.Redirect
	for rows.Next() {
		var r content.Redirect
		if err := rows.Scan(&r.From, &r.To); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LookupRedirect returns the canonical path a retired path redirects to.
func (s *Store) LookupRedirect(ctx context.Context, from string) (string, error) {
	var to string
	err := s.db.QueryRowContext(ctx, `SELECT to_path FROM redirects WHERE from_path = ?`, from).Scan(&to)
	return to, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (content.BlogEntry, error) {
	var (
		e              content.BlogEntry
		legacy         sql.NullInt64
		date, modified string
		repository     sql.NullString
		body           string
	)
	th := &e.Thumbnail
	if err := sc.Scan(&e.ID, &legacy, &e.Slug, &e.Title, &e.Description,
		&th.Src, &th.Path, &th.Format, &th.Width, &th.Height,
		&date, &modified, &repository, &e.Source, &body, &e.Fingerprint); err != nil {
		return e, err
	}
	var err error
	if e.Date, err = time.Parse(timeLayout, date); err != nil {
		return e, fmt.Errorf("entry %q: date: %w", e.ID, err)
	}
	if e.Modified, err = time.Parse(timeLayout, modified); err != nil {
		return e, fmt.Errorf("entry %q: modified: %w", e.ID, err)
	}
	if legacy.Valid {
		v := int(legacy.Int64)
		e.LegacyID = &v
	}
	if repository.Valid {
		v := repository.String
		e.Repository = &v
	}
	e.Body = []byte(body)
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
