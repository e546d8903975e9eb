package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ecole-console/internal/access"
	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/logging"
	"github.com/JonMunkholm/ecole-console/internal/session"
)

type sessionKey struct{}

// SessionLoader is the part of session.Manager the middleware needs.
type SessionLoader interface {
	Load(r *http.Request) (session.Session, bool)
}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(session.Session)
	return s, ok
}

// ContextWithSession attaches s the way RequireSession does. Handlers
// and tests use it to build authenticated contexts.
func ContextWithSession(ctx context.Context, s session.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, s)
	ctx = api.ContextWithToken(ctx, s.Token)
	ctx = core.ContextWithActor(ctx, core.Actor{UserID: s.UserID, SchoolID: s.SchoolID})
	return logging.WithUser(ctx, s.UserID, string(s.Role))
}

// RequireSession rejects requests without a live session. Browsers are
// redirected to /login; JSON clients get 401.
func RequireSession(sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := sessions.Load(r)
			if !ok {
				if WantsJSON(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"authentication required","code":"AUTH001"}`))
					return
				}
				target := "/login"
				if r.Method == http.MethodGet && r.URL.Path != "/" {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), s)))
		})
	}
}

// RequireRole checks the matched route pattern against the access table.
// It must run after routing (inside a chi Group or With) so the pattern
// is known.
func RequireRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		pattern := chi.RouteContext(r.Context()).RoutePattern()

		if !ok || !access.Allowed(pattern, s.Role) {
			slog.Warn("auth: role not allowed",
				"path", r.URL.Path,
				"pattern", pattern,
				"role", string(s.Role),
			)
			if WantsJSON(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","code":"AUTH002"}`))
				return
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WantsJSON reports whether the client asked for JSON.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
