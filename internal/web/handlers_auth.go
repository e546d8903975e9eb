package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ecole-console/internal/access"
	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/session"
	"github.com/JonMunkholm/ecole-console/internal/web/views"
)

func loginView(next string, form loginForm, errs map[string]string, problem string) templ.Component {
	action := "/login"
	if next != "" {
		action += "?next=" + url.QueryEscape(next)
	}

	var alert templ.Component
	if problem != "" {
		alert = views.Alert(flashError, problem)
	}
	return views.Group(alert, views.Form(views.FormSpec{
		Action: action,
		Submit: "Sign in",
		Fields: []views.Field{
			{Name: "email", Label: "Email", Type: "email", Value: form.Email, Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true},
		},
		Errors: errs,
	}))
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.sessions.Load(r); ok {
		http.Redirect(w, r, access.HomeFor(sess.Role), http.StatusSeeOther)
		return
	}
	next := safeNext(r.URL.Query().Get("next"))
	s.render(w, r, http.StatusOK, "Sign in", "", loginView(next, loginForm{}, nil, ""))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "Sign in", "", loginView(next, loginForm{}, nil, "Invalid form submission"))
		return
	}

	form := decodeLogin(r)
	if errs := s.forms.Check(form); errs != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "Sign in", "", loginView(next, form, errs, ""))
		return
	}

	res, err := s.backend.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		status := statusFor(err)
		problem := core.FormatUserError(err)
		if api.IsUnauthorized(err) {
			problem = "Invalid email or password"
		}
		slog.Warn("login failed", "email", form.Email, "status", status, "error", err)
		s.render(w, r, status, "Sign in", "", loginView(next, form, nil, problem))
		return
	}

	sess, err := s.sessions.FromLogin(res, s.cfg.API.JWTSecret)
	if err != nil {
		problem := "The sign-in token could not be verified"
		status := http.StatusUnauthorized
		if errors.Is(err, session.ErrUnknownRole) {
			problem = "This account has no access to the console"
			status = http.StatusForbidden
		}
		slog.Warn("login rejected", "email", form.Email, "error", err)
		s.render(w, r, status, "Sign in", "", loginView(next, form, nil, problem))
		return
	}

	if err := s.sessions.Save(w, r, sess); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	slog.Info("user signed in", "user_id", sess.UserID, "role", string(sess.Role), "school_id", sess.SchoolID)

	target := next
	if target == "" {
		target = access.HomeFor(sess.Role)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.SignOut(w, r, session.Flash{Kind: flashSuccess, Message: "You have been signed out."}); err != nil {
		slog.Warn("sign out", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHome sends the user to the dashboard of their role.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, access.HomeFor(currentSession(r).Role), http.StatusSeeOther)
}

// handleHealth reports liveness and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"imports": s.imports.Limiter().Status(),
	})
}
