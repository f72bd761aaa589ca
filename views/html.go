package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// page accumulates markup and keeps the first write error.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s escaped for element content and quoted attribute values.
func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) attr(name, value string) {
	p.raw(" " + name + `="`)
	p.text(value)
	p.raw(`"`)
}

func (p *page) render(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func component(fn func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}
