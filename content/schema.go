package content

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// SchemaVersion selects the blog identity shape. The two versions coexist
// because published permalinks from both eras still exist.
type SchemaVersion string

const (
	// SchemaV1 keys blog entries on a non-negative integer id and takes
	// thumbnails as bare paths.
	SchemaV1 SchemaVersion = "v1"
	// SchemaV2 keys blog entries on a six character token, keeps the v1
	// integer as an optional oldId, and resolves thumbnails to image assets.
	SchemaV2 SchemaVersion = "v2"
)

// ParseSchemaVersion parses a configured schema version. Empty means SchemaV2.
func ParseSchemaVersion(s string) (SchemaVersion, error) {
	switch SchemaVersion(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemaV2:
		return SchemaV2, nil
	case SchemaV1:
		return SchemaV1, nil
	default:
		return "", fmt.Errorf("unknown schema version %q (want v1 or v2)", s)
	}
}

const idLength = 6

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// AssetResolver resolves an image reference authored in the record at from.
type AssetResolver interface {
	ResolveImage(from, ref string) (Image, error)
}

// Validator checks raw records against one schema version.
type Validator struct {
	version SchemaVersion
	assets  AssetResolver
}

// NewValidator returns a validator for version. assets may be nil for SchemaV1,
// which never resolves thumbnails.
func NewValidator(version SchemaVersion, assets AssetResolver) *Validator {
	if version == "" {
		version = SchemaV2
	}
	return &Validator{version: version, assets: assets}
}

// Version returns the schema version the validator enforces.
func (v *Validator) Version() SchemaVersion {
	return v.version
}

// Blog validates a blog record. All failing fields are reported together.
func (v *Validator) Blog(rec Record) (BlogEntry, error) {
	c := &checker{rec: rec}
	entry := BlogEntry{
		Slug:   rec.Key,
		Source: rec.Source,
		Body:   rec.Body,
	}

	if v.version == SchemaV1 {
		entry.ID = c.legacyID()
	} else {
		entry.ID = c.tokenID()
		entry.LegacyID = c.optionalInt("oldId")
	}
	entry.Title = c.text("title")
	entry.Description = c.text("description")
	entry.Tags = c.references("tags")
	entry.Thumbnail = v.thumbnail(c)
	entry.Date = c.date("date")
	entry.Modified = c.date("modified")
	entry.Repository = c.nullableString("repository")

	if err := c.err(); err != nil {
		return BlogEntry{}, err
	}
	entry.Fingerprint = fingerprint(rec)
	return entry, nil
}

// Tag validates a tag record.
func (v *Validator) Tag(rec Record) (TagEntry, error) {
	c := &checker{rec: rec}
	tag := TagEntry{
		Slug:   rec.Key,
		Source: rec.Source,
	}
	tag.Title = c.text("title")
	tag.Thumbnail = v.thumbnail(c)
	if err := c.err(); err != nil {
		return TagEntry{}, err
	}
	return tag, nil
}

func (v *Validator) thumbnail(c *checker) Image {
	ref, ok := c.str("thumbnail")
	if !ok {
		return Image{}
	}
	if v.version == SchemaV1 {
		return Image{Src: ref}
	}
	if v.assets == nil {
		c.fail("thumbnail", "image assets are not available")
		return Image{}
	}
	img, err := v.assets.ResolveImage(c.rec.Source, ref)
	if err != nil {
		c.fail("thumbnail", "%v", err)
		return Image{}
	}
	return img
}

// fingerprint hashes the record's fields and body. yaml.v3 sorts map keys,
// so equal records always hash equally.
func fingerprint(rec Record) string {
	fm, err := yaml.Marshal(rec.Fields)
	if err != nil {
		fm = nil
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(rec.Body))
}

// checker accumulates field errors for one record.
type checker struct {
	rec  Record
	errs []error
}

func (c *checker) fail(field, format string, args ...any) {
	c.errs = append(c.errs, &SchemaValidationError{
		Collection: c.rec.Collection,
		Key:        c.rec.Key,
		Source:     c.rec.Source,
		Field:      field,
		Reason:     fmt.Sprintf(format, args...),
	})
}

func (c *checker) err() error {
	return errors.Join(c.errs...)
}

func (c *checker) value(field string) (any, bool) {
	v, ok := c.rec.Fields[field]
	if !ok || v == nil {
		c.fail(field, "is required")
		return nil, false
	}
	return v, true
}

func (c *checker) str(field string) (string, bool) {
	v, ok := c.value(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.fail(field, "expected string, got %T", v)
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		c.fail(field, "must not be empty")
		return "", false
	}
	return s, true
}

func (c *checker) text(field string) string {
	s, _ := c.str(field)
	return s
}

func (c *checker) tokenID() string {
	id, ok := c.str("id")
	if !ok {
		return ""
	}
	if len(id) != idLength {
		c.fail("id", "must be exactly %d characters, got %d", idLength, len(id))
		return ""
	}
	if !idPattern.MatchString(id) {
		c.fail("id", "may only contain letters, digits, '-' and '_'")
		return ""
	}
	return id
}

func (c *checker) legacyID() string {
	v, ok := c.value("id")
	if !ok {
		return ""
	}
	n, err := coerceInt(v)
	if err != nil {
		c.fail("id", "%v", err)
		return ""
	}
	if n < 0 {
		c.fail("id", "must not be negative")
		return ""
	}
	return strconv.Itoa(n)
}

func (c *checker) optionalInt(field string) *int {
	v, ok := c.rec.Fields[field]
	if !ok || v == nil {
		return nil
	}
	n, err := coerceInt(v)
	if err != nil {
		c.fail(field, "%v", err)
		return nil
	}
	if n < 0 {
		c.fail(field, "must not be negative")
		return nil
	}
	return &n
}

func (c *checker) references(field string) []string {
	v, ok := c.value(field)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		c.fail(field, "expected a list, got %T", v)
		return nil
	}
	refs := make([]string, 0, len(items))
	valid := true
	for i, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			c.fail(fmt.Sprintf("%s[%d]", field, i), "expected a tag slug, got %#v", item)
			valid = false
			continue
		}
		refs = append(refs, s)
	}
	if !valid {
		return nil
	}
	return refs
}

func (c *checker) date(field string) time.Time {
	v, ok := c.value(field)
	if !ok {
		return time.Time{}
	}
	d, err := coerceDate(v)
	if err != nil {
		c.fail(field, "%v", err)
		return time.Time{}
	}
	return d
}

func (c *checker) nullableString(field string) *string {
	v, ok := c.rec.Fields[field]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		c.fail(field, "expected string or null, got %T", v)
		return nil
	}
	return &s
}
