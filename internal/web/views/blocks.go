package views

import (
	"context"

	"github.com/a-h/templ"
)

// Stat is one dashboard figure.
type Stat struct {
	Label string
	Value string
}

// StatCards renders dashboard figures.
func StatCards(stats []Stat) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<div class="stats">`)
		for _, s := range stats {
			hw.raw(`<div class="stat"><span class="stat-value">`)
			hw.text(s.Value)
			hw.raw(`</span><span class="stat-label">`)
			hw.text(s.Label)
			hw.raw(`</span></div>`)
		}
		hw.raw(`</div>`)
	})
}

// Action is a row button: a link when Post is false, else a POST form.
type Action struct {
	Label   string
	Href    string
	Post    bool
	Confirm string
}

// Row is one table line.
type Row struct {
	Cells   []string
	Actions []Action
}

// Table renders rows under headers, or empty when there are none.
func Table(headers []string, rows []Row, empty string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		if len(rows) == 0 {
			hw.raw(`<p class="empty">`)
			hw.text(empty)
			hw.raw(`</p>`)
			return
		}

		hasActions := false
		for _, r := range rows {
			if len(r.Actions) > 0 {
				hasActions = true
				break
			}
		}

		hw.raw(`<table><thead><tr>`)
		for _, h := range headers {
			hw.raw(`<th>`)
			hw.text(h)
			hw.raw(`</th>`)
		}
		if hasActions {
			hw.raw(`<th></th>`)
		}
		hw.raw(`</tr></thead><tbody>`)

		for _, r := range rows {
			hw.raw(`<tr>`)
			for _, c := range r.Cells {
				hw.raw(`<td>`)
				hw.text(c)
				hw.raw(`</td>`)
			}
			if hasActions {
				hw.raw(`<td class="actions">`)
				for _, a := range r.Actions {
					writeAction(hw, a)
				}
				hw.raw(`</td>`)
			}
			hw.raw(`</tr>`)
		}
		hw.raw(`</tbody></table>`)
	})
}

func writeAction(hw *htmlWriter, a Action) {
	if !a.Post {
		hw.raw(`<a`)
		hw.attr("href", a.Href)
		hw.raw(`>`)
		hw.text(a.Label)
		hw.raw(`</a>`)
		return
	}

	hw.raw(`<form method="post"`)
	hw.attr("action", a.Href)
	if a.Confirm != "" {
		hw.attr("data-confirm", a.Confirm)
	}
	hw.raw(`><button type="submit">`)
	hw.text(a.Label)
	hw.raw(`</button></form>`)
}

// Field is one form input.
type Field struct {
	Name     string
	Label    string
	Type     string // text, email, password, textarea, checkbox, file
	Value    string
	Checked  bool
	Required bool
	Accept   string
}

// FormSpec describes a form.
type FormSpec struct {
	Title     string
	Action    string
	Submit    string
	Multipart bool
	Fields    []Field
	Errors    map[string]string // field name -> message
}

// Form renders a POST form with inline field errors.
func Form(f FormSpec) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		if f.Title != "" {
			hw.raw(`<h2>`)
			hw.text(f.Title)
			hw.raw(`</h2>`)
		}
		hw.raw(`<form method="post"`)
		hw.attr("action", f.Action)
		if f.Multipart {
			hw.raw(` enctype="multipart/form-data"`)
		}
		hw.raw(`>`)

		for _, fld := range f.Fields {
			writeField(hw, fld, f.Errors[fld.Name])
		}

		hw.raw(`<button type="submit">`)
		hw.text(f.Submit)
		hw.raw(`</button></form>`)
	})
}

func writeField(hw *htmlWriter, fld Field, errMsg string) {
	typ := fld.Type
	if typ == "" {
		typ = "text"
	}

	hw.raw(`<label>`)
	hw.text(fld.Label)

	switch typ {
	case "textarea":
		hw.raw(`<textarea`)
		hw.attr("name", fld.Name)
		if fld.Required {
			hw.raw(` required`)
		}
		hw.raw(`>`)
		hw.text(fld.Value)
		hw.raw(`</textarea>`)
	case "checkbox":
		hw.raw(`<input type="checkbox" value="on"`)
		hw.attr("name", fld.Name)
		if fld.Checked {
			hw.raw(` checked`)
		}
		hw.raw(`>`)
	default:
		hw.raw(`<input`)
		hw.attr("type", typ)
		hw.attr("name", fld.Name)
		if typ != "password" && typ != "file" {
			hw.attr("value", fld.Value)
		}
		if fld.Accept != "" {
			hw.attr("accept", fld.Accept)
		}
		if fld.Required {
			hw.raw(` required`)
		}
		hw.raw(`>`)
	}

	if errMsg != "" {
		hw.raw(`<span class="field-error">`)
		hw.text(errMsg)
		hw.raw(`</span>`)
	}
	hw.raw(`</label>`)
}

// SearchForm renders a GET filter box.
func SearchForm(action, name, value, placeholder string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<form method="get" class="search"`)
		hw.attr("action", action)
		hw.raw(`><input type="search"`)
		hw.attr("name", name)
		hw.attr("value", value)
		hw.attr("placeholder", placeholder)
		hw.raw(`><button type="submit">Filter</button></form>`)
	})
}

// Section renders a titled block.
func Section(title string, children ...templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<section><h2>`)
		hw.text(title)
		hw.raw(`</h2>`)
		for _, c := range children {
			hw.render(ctx, c)
		}
		hw.raw(`</section>`)
	})
}

// Link renders a single anchor.
func Link(href, label string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<p><a`)
		hw.attr("href", href)
		hw.raw(`>`)
		hw.text(label)
		hw.raw(`</a></p>`)
	})
}
