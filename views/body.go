package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite/markdown"
)

// PostBody renders a post body, expanding embedded <Note> and <Demo> tags
// into their components. Note bodies are Markdown.
func PostBody(cfg SiteConfig, body []byte) templ.Component {
	return component(func(p *page) {
		for _, b := range markdown.Blocks(body, "Note", "Demo") {
			switch b.Name {
			case "Note":
				kind, ok := ParseNoteKind(b.Attrs["type"])
				if !ok {
					kind = Helpful
				}
				p.render(Note(kind, markdown.Markdown(b.Body)))
			case "Demo":
				height, _ := strconv.Atoi(b.Attrs["height"])
				p.render(Demo(cfg, DemoProps{
					Repository: b.Attrs["repository"],
					Branch:     b.Attrs["branch"],
					Height:     height,
				}))
			default:
				p.render(markdown.Markdown(b.Body))
			}
		}
	})
}
