package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, in string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, []byte(in)))
	return buf.String()
}

func TestRenderMarkdown_Inline(t *testing.T) {
	got := render(t, "text **bold** and *em*")
	assert.Contains(t, got, "<strong>bold</strong>")
	assert.Contains(t, got, "<em>em</em>")
}

func TestRenderMarkdown_HeadingIDs(t *testing.T) {
	got := render(t, "## Getting started")
	assert.Contains(t, got, `<h2 id="getting-started">Getting started</h2>`)
}

func TestRenderMarkdown_CodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nfmt.Println(1)\n```")
	assert.Contains(t, got, `<code class="language-go">`)
	assert.Contains(t, got, "fmt.Println(1)")
}

func TestRenderMarkdown_Table(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |\n")
	assert.Contains(t, got, "<table>")
	assert.Contains(t, got, "<td>2</td>")
}

func TestRenderMarkdown_RawHTMLOmitted(t *testing.T) {
	got := render(t, "<script>alert(1)</script>\n\nok")
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "<p>ok</p>")
}

func TestStripMDX(t *testing.T) {
	in := "import { Demo } from \"../components/Demo\";\nexport const x = 1;\n\n# Title\n\n```js\nimport a from 'a';\n```\n"
	got := string(StripMDX([]byte(in)))
	assert.NotContains(t, got, "Demo")
	assert.NotContains(t, got, "export const")
	assert.Contains(t, got, "import a from 'a';")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(got), "# Title"))
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown([]byte("# Hi")).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<h1 id="hi">Hi</h1>`)
}

func TestBlocks(t *testing.T) {
	in := "import { Note } from \"../components/Note\";\n\nIntro\n\n<Note type=\"HELPFUL\">\n  Keep this text\n\n      indented code\n</Note>\n\n<Demo\n  repository=\"x\"\n  height={500}\n/>\n\n```mdx\n<Note type=\"CRITICAL\">quoted</Note>\n```\n"
	blocks := Blocks([]byte(in), "Note", "Demo")
	require.Len(t, blocks, 4)

	assert.Empty(t, blocks[0].Name)
	assert.Equal(t, "Intro", strings.TrimSpace(string(blocks[0].Body)))

	assert.Equal(t, "Note", blocks[1].Name)
	assert.Equal(t, "HELPFUL", blocks[1].Attrs["type"])
	assert.Equal(t, "Keep this text\n\n    indented code", string(blocks[1].Body))

	assert.Equal(t, "Demo", blocks[2].Name)
	assert.Equal(t, map[string]string{"repository": "x", "height": "500"}, blocks[2].Attrs)
	assert.Nil(t, blocks[2].Body)

	assert.Empty(t, blocks[3].Name)
	assert.Contains(t, string(blocks[3].Body), `<Note type="CRITICAL">quoted</Note>`)
}

func TestBlocksInlineAndUnknownTags(t *testing.T) {
	blocks := Blocks([]byte("<Note type='IMPORTANT'>one *line*</Note> tail\n\n<Other />\n"), "Note")
	require.Len(t, blocks, 2)
	assert.Equal(t, "IMPORTANT", blocks[0].Attrs["type"])
	assert.Equal(t, "one *line*", string(blocks[0].Body))
	assert.Contains(t, string(blocks[1].Body), "tail")
	assert.Contains(t, string(blocks[1].Body), "<Other />")
}

func TestBlocksUnterminatedNoteKeepsText(t *testing.T) {
	blocks := Blocks([]byte("<Note type=\"HELPFUL\">\nstill here\n"), "Note")
	require.Len(t, blocks, 1)
	assert.Equal(t, "still here", string(blocks[0].Body))
}
