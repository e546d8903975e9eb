package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ecole-console/internal/access"
	"github.com/JonMunkholm/ecole-console/internal/session"
)

// Page is the chrome around every screen.
type Page struct {
	Title    string
	UserName string
	Role     access.Role
	Active   string // href of the current nav entry
	Flashes  []session.Flash
}

type navItem struct {
	Href  string
	Label string
}

var navByRole = map[access.Role][]navItem{
	access.RoleSuperAdmin: {
		{"/super/dashboard", "Dashboard"},
		{"/super/schools", "Schools"},
		{"/super/contacts", "Contacts"},
		{"/super/subscriptions", "Subscriptions"},
	},
	access.RoleAdmin: {
		{"/admin/dashboard", "Dashboard"},
		{"/admin/students", "Students"},
		{"/admin/contents", "Contents"},
		{"/admin/contents/import-log", "Imports"},
		{"/admin/subscription", "Subscription"},
	},
}

// Layout wraps body in the HTML document, navigation and flash messages.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		hw.text(p.Title)
		hw.raw(` · École Console</title><link rel="stylesheet" href="/static/app.css">`)
		hw.raw(`<script src="/static/app.js" defer></script></head><body>`)

		if p.Role != "" {
			hw.raw(`<header><nav>`)
			for _, item := range navByRole[p.Role] {
				hw.raw(`<a`)
				hw.attr("href", item.Href)
				if item.Href == p.Active {
					hw.raw(` class="active"`)
				}
				hw.raw(`>`)
				hw.text(item.Label)
				hw.raw(`</a>`)
			}
			hw.raw(`</nav><div class="user">`)
			hw.text(p.UserName)
			hw.raw(`<form method="post" action="/logout"><button type="submit">Sign out</button></form></div></header>`)
		}

		hw.raw(`<main><h1>`)
		hw.text(p.Title)
		hw.raw(`</h1>`)
		for _, f := range p.Flashes {
			hw.render(ctx, Alert(f.Kind, f.Message))
		}
		hw.render(ctx, body)
		hw.raw(`</main></body></html>`)
	})
}

// Alert renders a flash-style message box. kind is "success" or "error".
func Alert(kind, message string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		if kind != "success" {
			kind = "error"
		}
		hw.raw(`<div role="alert"`)
		hw.attr("class", "alert alert-"+kind)
		hw.raw(`>`)
		hw.text(message)
		hw.raw(`</div>`)
	})
}

// ErrorAlert renders a mapped error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<div role="alert" class="alert alert-error"><strong>`)
		hw.text(message)
		hw.raw(`</strong>`)
		if action != "" {
			hw.raw(`<p>`)
			hw.text(action)
			hw.raw(`</p>`)
		}
		if code != "" {
			hw.raw(`<small>Code: `)
			hw.text(code)
			hw.raw(`</small>`)
		}
		hw.raw(`</div>`)
	})
}
