// Package views holds the console's HTML components.
//
// Components are templ.Components assembled by hand with
// templ.ComponentFunc. Every dynamic string goes through templ's escaper.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter remembers the first write error so components can write
// straight through and check once at the end.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, p)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// component adapts a writer-based body into a templ.Component.
func component(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		fn(ctx, hw)
		return hw.err
	})
}

// Group renders components one after another.
func Group(children ...templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		for _, c := range children {
			hw.render(ctx, c)
		}
	})
}

// Text renders an escaped paragraph.
func Text(s string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw("<p>")
		hw.text(s)
		hw.raw("</p>")
	})
}
