package content

import (
	"errors"
	"strconv"
)

// Resolver resolves blog tag tokens against a fixed tag set.
type Resolver struct {
	tags map[string]TagEntry
}

// NewResolver indexes tags by slug. Two tags with the same slug are rejected.
func NewResolver(tags []TagEntry) (*Resolver, error) {
	r := &Resolver{tags: make(map[string]TagEntry, len(tags))}
	var errs []error
	for _, t := range tags {
		if prev, ok := r.tags[t.Slug]; ok {
			errs = append(errs, &DuplicateIDError{
				Collection: CollectionTags,
				Field:      "slug",
				Value:      t.Slug,
				First:      prev.Source,
				Second:     t.Source,
			})
			continue
		}
		r.tags[t.Slug] = t
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Tag returns the tag entry for slug.
func (r *Resolver) Tag(slug string) (TagEntry, bool) {
	t, ok := r.tags[slug]
	return t, ok
}

// Resolve maps the entry's tag tokens to references in authored order,
// duplicates included. If any token is unknown it returns one ReferenceError
// per unknown token and no references.
func (r *Resolver) Resolve(e BlogEntry) ([]TagReference, error) {
	refs := make([]TagReference, 0, len(e.Tags))
	var errs []error
	for _, slug := range e.Tags {
		t, ok := r.tags[slug]
		if !ok {
			errs = append(errs, &ReferenceError{Entry: e.ID, Source: e.Source, Tag: slug})
			continue
		}
		refs = append(refs, TagReference{
			Slug:      t.Slug,
			Title:     t.Title,
			Thumbnail: t.Thumbnail,
			Path:      TagPath(t.Slug),
		})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return refs, nil
}

// ResolveAll resolves every entry and enforces id uniqueness across the set.
// Errors from all entries are joined; on error no posts are returned.
func (r *Resolver) ResolveAll(entries []BlogEntry) ([]Post, error) {
	var errs []error
	ids := make(map[string]string, len(entries))
	legacy := make(map[int]string)
	posts := make([]Post, 0, len(entries))

	for _, e := range entries {
		if prev, ok := ids[e.ID]; ok {
			errs = append(errs, &DuplicateIDError{
				Collection: CollectionBlog,
				Field:      "id",
				Value:      e.ID,
				First:      prev,
				Second:     e.Source,
			})
		} else {
			ids[e.ID] = e.Source
		}
		if e.LegacyID != nil {
			if prev, ok := legacy[*e.LegacyID]; ok {
				errs = append(errs, &DuplicateIDError{
					Collection: CollectionBlog,
					Field:      "oldId",
					Value:      strconv.Itoa(*e.LegacyID),
					First:      prev,
					Second:     e.Source,
				})
			} else {
				legacy[*e.LegacyID] = e.Source
			}
		}

		refs, err := r.Resolve(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		posts = append(posts, Post{Entry: e, Tags: refs})
	}

	// A legacy id shares the /blog/{id}/ namespace with current ids.
	for _, e := range entries {
		if e.LegacyID == nil {
			continue
		}
		value := strconv.Itoa(*e.LegacyID)
		if owner, ok := ids[value]; ok && owner != e.Source {
			errs = append(errs, &DuplicateIDError{
				Collection: CollectionBlog,
				Field:      "oldId",
				Value:      value,
				First:      owner,
				Second:     e.Source,
			})
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return posts, nil
}
