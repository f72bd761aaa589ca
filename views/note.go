package views

import (
	"strings"

	"github.com/a-h/templ"
)

// NoteKind selects the styling of a Note. Only Helpful, Important and
// Critical implement it.
type NoteKind interface {
	noteClasses() string
	label() string
}

type noteKind struct {
	classes string
	name    string
}

func (k noteKind) noteClasses() string { return k.classes }
func (k noteKind) label() string       { return k.name }

var (
	Helpful   NoteKind = noteKind{classes: "border-sky-400 bg-sky-50 dark:bg-sky-950", name: "Note"}
	Important NoteKind = noteKind{classes: "border-amber-400 bg-amber-50 dark:bg-amber-950", name: "Important"}
	Critical  NoteKind = noteKind{classes: "border-red-500 bg-red-50 dark:bg-red-950", name: "Warning"}
)

// Note renders body inside a callout box.
func Note(kind NoteKind, body templ.Component) templ.Component {
	if kind == nil {
		kind = Helpful
	}
	return component(func(p *page) {
		p.raw(`<aside`)
		p.attr("class", "not-prose border-l-4 rounded px-4 py-3 my-6 "+kind.noteClasses())
		p.attr("role", "note")
		p.raw(`><strong class="block mb-1">`)
		p.text(kind.label())
		p.raw(`</strong>`)
		p.render(body)
		p.raw(`</aside>`)
	})
}

// ParseNoteKind maps the authored type attribute (HELPFUL, IMPORTANT or
// CRITICAL, any case) to a NoteKind.
func ParseNoteKind(s string) (NoteKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HELPFUL":
		return Helpful, true
	case "IMPORTANT":
		return Important, true
	case "CRITICAL":
		return Critical, true
	}
	return nil, false
}
