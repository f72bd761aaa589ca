package markdown

import (
	"bytes"
	"regexp"
	"strings"
)

// Block is one piece of a post body. Plain Markdown has an empty Name;
// embedded components such as <Note> and <Demo> carry their tag name,
// attributes and, for paired tags, the Markdown between them.
type Block struct {
	Name  string
	Attrs map[string]string
	Body  []byte
}

var (
	openTag  = regexp.MustCompile(`^<([A-Z][A-Za-z0-9]*)\b`)
	attrExpr = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)=(?:"([^"]*)"|'([^']*)'|\{([^}]*)\})`)
)

// Blocks splits an MDX body into Markdown and component blocks. Only tags
// listed in components are recognised; anything else stays Markdown. Tags
// must start a line outside fenced code.
func Blocks(content []byte, components ...string) []Block {
	known := make(map[string]bool, len(components))
	for _, c := range components {
		known[c] = true
	}

	lines := strings.SplitAfter(string(StripMDX(content)), "\n")
	var (
		blocks  []Block
		md      strings.Builder
		inFence bool
	)
	flush := func() {
		if strings.TrimSpace(md.String()) != "" {
			blocks = append(blocks, Block{Body: []byte(md.String())})
		}
		md.Reset()
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		m := openTag.FindStringSubmatch(trimmed)
		if inFence || m == nil || !known[m[1]] {
			md.WriteString(line)
			continue
		}
		name := m[1]

		// The opening tag may span lines until its closing '>'.
		tag := trimmed
		for !strings.Contains(tag, ">") && i+1 < len(lines) {
			i++
			tag += " " + strings.TrimSpace(lines[i])
		}
		end := strings.Index(tag, ">")
		if end < 0 {
			end = len(tag)
		}
		head, rest := tag[:end], ""
		if end < len(tag) {
			rest = tag[end+1:]
		}
		flush()
		b := Block{Name: name, Attrs: parseAttrs(head)}
		if strings.HasSuffix(head, "/") {
			blocks = append(blocks, b)
			continue
		}

		closer := "</" + name + ">"
		var body strings.Builder
		for {
			if j := strings.Index(rest, closer); j >= 0 {
				body.WriteString(rest[:j])
				if after := strings.TrimSpace(rest[j+len(closer):]); after != "" {
					md.WriteString(after + "\n")
				}
				break
			}
			body.WriteString(rest)
			if rest != "" && !strings.HasSuffix(rest, "\n") {
				body.WriteByte('\n')
			}
			if i+1 >= len(lines) {
				break
			}
			i++
			rest = lines[i]
		}
		b.Body = dedent(body.String())
		blocks = append(blocks, b)
	}
	flush()
	return blocks
}

func parseAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrExpr.FindAllStringSubmatch(tag, -1) {
		v := m[2] + m[3] + m[4]
		attrs[m[1]] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return attrs
}

// dedent strips the indentation shared by all non-blank lines so nested
// Markdown is not read as an indented code block.
func dedent(s string) []byte {
	lines := strings.Split(s, "\n")
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	var out bytes.Buffer
	for _, l := range lines {
		if len(l) >= prefix && prefix > 0 {
			l = l[prefix:]
		} else if strings.TrimSpace(l) == "" {
			l = ""
		}
		out.WriteString(l)
		out.WriteByte('\n')
	}
	return bytes.TrimSpace(out.Bytes())
}
