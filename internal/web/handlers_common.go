package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/logging"
	"github.com/JonMunkholm/ecole-console/internal/session"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
	"github.com/JonMunkholm/ecole-console/internal/web/views"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

// render writes a full page. Flashes are popped before the status is
// written because doing so sets a cookie.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, title, active string, body templ.Component) {
	page := views.Page{
		Title:   title,
		Active:  active,
		Flashes: s.sessions.Flashes(w, r),
	}
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		page.UserName = sess.Name
		page.Role = sess.Role
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.Layout(page, body).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "title", title, "error", err)
	}
}

// redirectWithFlash queues a message and sends the browser to target.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	if err := s.sessions.AddFlash(w, r, session.Flash{Kind: kind, Message: message}); err != nil {
		logging.FromContext(r.Context()).Warn("add flash", "error", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// mutationFailed reports a failed create/update/delete. Browsers go back
// to the list with the mapped message; the list itself is left as is.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, target, what string, err error) {
	if mw.WantsJSON(r) || isHTMX(r) {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if statusFor(err) == http.StatusUnauthorized {
		s.respondError(w, r, err, http.StatusUnauthorized)
		return
	}

	logging.FromContext(r.Context()).Warn("mutation failed", "what", what, "error", err)
	s.redirectWithFlash(w, r, target, flashError, fmt.Sprintf("Could not %s: %s", what, core.FormatUserError(err)))
}

// currentSession returns the session attached by RequireSession.
func currentSession(r *http.Request) session.Session {
	sess, _ := mw.SessionFromContext(r.Context())
	return sess
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// formatMoney renders minor units as "12.34 EUR".
func formatMoney(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	out := fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	if currency != "" {
		out += " " + strings.ToUpper(currency)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
