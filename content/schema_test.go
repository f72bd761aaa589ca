package content

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, e := range Unwrap(err) {
		var se *SchemaValidationError
		require.True(t, errors.As(e, &se), "unexpected error %v", e)
		out[se.Field] = se.Reason
	}
	return out
}

func TestValidatorBlog_V2Valid(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	fields := validBlogFields()
	fields["oldId"] = 42
	fields["repository"] = "demo"

	e, err := v.Blog(blogRecord(fields))
	require.NoError(t, err)
	assert.Equal(t, "abc123", e.ID)
	assert.Equal(t, "my-post", e.Slug)
	assert.Equal(t, []string{"go", "rust"}, e.Tags)
	require.NotNil(t, e.LegacyID)
	assert.Equal(t, 42, *e.LegacyID)
	require.NotNil(t, e.Repository)
	assert.Equal(t, "demo", *e.Repository)
	assert.True(t, e.Thumbnail.Resolved())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), e.Date)
	assert.NotEmpty(t, e.Fingerprint)
}

func TestValidatorBlog_ReportsEveryMissingField(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})

	_, err := v.Blog(blogRecord(map[string]any{}))
	require.Error(t, err)
	got := fieldErrors(t, err)
	for _, f := range []string{"id", "title", "description", "tags", "thumbnail", "date", "modified"} {
		assert.Equal(t, "is required", got[f], f)
	}
	assert.NotContains(t, got, "repository")
	assert.NotContains(t, got, "oldId")
}

func TestValidatorBlog_TokenID(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	tests := []struct {
		name string
		id   any
		want string
	}{
		{"too short", "abc", "must be exactly 6 characters, got 3"},
		{"too long", "abcdefg", "must be exactly 6 characters, got 7"},
		{"unsafe", "ab/c12", "may only contain letters, digits, '-' and '_'"},
		{"integer", 123456, "expected string, got int"},
		{"empty", "  ", "must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validBlogFields()
			fields["id"] = tt.id
			_, err := v.Blog(blogRecord(fields))
			require.Error(t, err)
			assert.Equal(t, tt.want, fieldErrors(t, err)["id"])
		})
	}
}

func TestValidatorBlog_LegacySchema(t *testing.T) {
	v := NewValidator(SchemaV1, nil)
	fields := validBlogFields()
	fields["id"] = 17
	fields["thumbnail"] = "/images/post.png"

	e, err := v.Blog(blogRecord(fields))
	require.NoError(t, err)
	assert.Equal(t, "17", e.ID)
	assert.Nil(t, e.LegacyID)
	assert.Equal(t, "/images/post.png", e.Thumbnail.Src)
	assert.False(t, e.Thumbnail.Resolved())

	fields["id"] = -1
	_, err = v.Blog(blogRecord(fields))
	assert.Equal(t, "must not be negative", fieldErrors(t, err)["id"])

	fields["id"] = "abc123"
	_, err = v.Blog(blogRecord(fields))
	assert.Equal(t, "expected integer, got string", fieldErrors(t, err)["id"])
}

func TestValidatorBlog_Tags(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})

	fields := validBlogFields()
	fields["tags"] = "go"
	_, err := v.Blog(blogRecord(fields))
	assert.Equal(t, "expected a list, got string", fieldErrors(t, err)["tags"])

	fields["tags"] = []any{"go", 3, ""}
	_, err = v.Blog(blogRecord(fields))
	got := fieldErrors(t, err)
	assert.Contains(t, got, "tags[1]")
	assert.Contains(t, got, "tags[2]")

	fields["tags"] = []any{}
	e, err := v.Blog(blogRecord(fields))
	require.NoError(t, err)
	assert.Empty(t, e.Tags)
}

func TestValidatorBlog_Repository(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})

	fields := validBlogFields()
	fields["repository"] = nil
	e, err := v.Blog(blogRecord(fields))
	require.NoError(t, err)
	assert.Nil(t, e.Repository)

	fields["repository"] = 12
	_, err = v.Blog(blogRecord(fields))
	assert.Equal(t, "expected string or null, got int", fieldErrors(t, err)["repository"])
}

func TestValidatorBlog_Dates(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	want := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T10:30:00Z", want},
		{"2024-03-05T10:30:00", want},
		{"2024-03-05 10:30", want},
		{want, want},
		{int(want.UnixMilli()), want},
	}
	for _, tt := range tests {
		fields := validBlogFields()
		fields["date"] = tt.in
		e, err := v.Blog(blogRecord(fields))
		require.NoError(t, err, "%v", tt.in)
		assert.True(t, tt.want.Equal(e.Date), "%v: got %v", tt.in, e.Date)
	}

	fields := validBlogFields()
	fields["modified"] = "yesterday"
	_, err := v.Blog(blogRecord(fields))
	assert.Equal(t, `cannot parse "yesterday" as a date`, fieldErrors(t, err)["modified"])

	fields["modified"] = true
	_, err = v.Blog(blogRecord(fields))
	assert.Equal(t, "expected date, got bool", fieldErrors(t, err)["modified"])
}

func TestValidatorBlog_ThumbnailMustResolve(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{missing: map[string]bool{"./thumb.png": true}})

	_, err := v.Blog(blogRecord(validBlogFields()))
	require.Error(t, err)
	assert.Equal(t, "not found", fieldErrors(t, err)["thumbnail"])

	_, err = NewValidator(SchemaV2, nil).Blog(blogRecord(validBlogFields()))
	assert.Equal(t, "image assets are not available", fieldErrors(t, err)["thumbnail"])
}

func TestValidatorBlog_ThumbnailErrorKeepsPercent(t *testing.T) {
	v := NewValidator(SchemaV2, NewFSAssets(fstestEmpty()))
	fields := validBlogFields()
	fields["thumbnail"] = "./100%sale.png"

	_, err := v.Blog(blogRecord(fields))
	require.Error(t, err)
	assert.Equal(t, `image "./100%sale.png" not found`, fieldErrors(t, err)["thumbnail"])
}

func TestValidatorBlog_LegacyIDOutOfRange(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	fields := validBlogFields()
	fields["oldId"] = 1e30

	_, err := v.Blog(blogRecord(fields))
	require.Error(t, err)
	assert.Equal(t, "integer 1e+30 out of range", fieldErrors(t, err)["oldId"])
}

func TestValidatorBlog_ErrorNamesRecord(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	fields := validBlogFields()
	delete(fields, "title")

	_, err := v.Blog(blogRecord(fields))
	require.EqualError(t, err, `blog "my-post" (blog/my-post/index.md): field "title": is required`)
}

func TestValidatorBlog_Idempotent(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	rec := blogRecord(validBlogFields())

	first, err := v.Blog(rec)
	require.NoError(t, err)
	second, err := v.Blog(rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, validBlogFields(), rec.Fields)
}

func TestValidatorTag(t *testing.T) {
	v := NewValidator(SchemaV2, stubAssets{})
	rec := Record{Collection: CollectionTags, Key: "go", Source: "tags/go/index.md", Fields: map[string]any{
		"title":     "Go",
		"thumbnail": "./go.png",
	}}

	tag, err := v.Tag(rec)
	require.NoError(t, err)
	assert.Equal(t, "go", tag.Slug)
	assert.Equal(t, "Go", tag.Title)

	rec.Fields = map[string]any{"title": ""}
	_, err = v.Tag(rec)
	got := fieldErrors(t, err)
	assert.Equal(t, "must not be empty", got["title"])
	assert.Equal(t, "is required", got["thumbnail"])
}

func TestParseSchemaVersion(t *testing.T) {
	v, err := ParseSchemaVersion("")
	require.NoError(t, err)
	assert.Equal(t, SchemaV2, v)

	v, err = ParseSchemaVersion(" V1 ")
	require.NoError(t, err)
	assert.Equal(t, SchemaV1, v)

	_, err = ParseSchemaVersion("v3")
	require.Error(t, err)
}
