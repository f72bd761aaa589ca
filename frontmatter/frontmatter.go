// Package frontmatter splits Markdown documents into their YAML frontmatter
// block and body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnclosed is returned when a document opens a frontmatter block with
// `---` but never closes it.
var ErrUnclosed = errors.New("frontmatter opened with --- but never closed")

// Split separates the `---` delimited frontmatter from the body. Both LF and
// CRLF line endings are accepted. When the document has no frontmatter, had
// is false and body is the whole input.
func Split(content []byte) (fm, body []byte, had bool, err error) {
	nl := newline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// A closing delimiter on the final line has no trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-len("---")], []byte{}, true, nil
		}
		return nil, nil, false, ErrUnclosed
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}

// Parse splits content and decodes the frontmatter into a map. A document
// without frontmatter yields an empty, non-nil map.
func Parse(content []byte) (map[string]any, []byte, error) {
	fm, body, _, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	fields := map[string]any{}
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, body, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}

func newline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
