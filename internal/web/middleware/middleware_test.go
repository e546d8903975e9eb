package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ecole-console/internal/access"
	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/session"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted keeps remote", "203.0.113.9:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9:5000"},
		{"trusted uses x-real-ip", "10.0.0.2:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted uses first forwarded", "10.0.0.2:5000", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"}, "5.6.7.8"},
		{"trusted single ip entry", "127.0.0.1:80", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"invalid header ignored", "10.0.0.2:5000", map[string]string{"X-Real-IP": "not-an-ip"}, "10.0.0.2:5000"},
	}

	mw := TrustedRealIP([]string{"10.0.0.0/8", "127.0.0.1", "bogus"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = r.RemoteAddr }))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

type stubLoader struct {
	s  session.Session
	ok bool
}

func (l stubLoader) Load(*http.Request) (session.Session, bool) { return l.s, l.ok }

func newGatedRouter(loader SessionLoader) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(loader))
		r.Use(RequireRole)
		r.Get("/super/schools", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		r.Get("/admin/students/{id}", func(w http.ResponseWriter, r *http.Request) {
			s, _ := SessionFromContext(r.Context())
			if api.TokenFromContext(r.Context()) != s.Token || core.GetActorFromContext(r.Context()).SchoolID != s.SchoolID {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	})
	return r
}

func TestRequireSessionAndRole(t *testing.T) {
	admin := stubLoader{s: session.Session{Token: "t", UserID: "u1", Role: access.RoleAdmin, SchoolID: "s1"}, ok: true}
	super := stubLoader{s: session.Session{Token: "t", Role: access.RoleSuperAdmin}, ok: true}
	anon := stubLoader{}

	tests := []struct {
		name     string
		loader   SessionLoader
		path     string
		json     bool
		want     int
		location string
	}{
		{"anonymous browser redirected", anon, "/super/schools", false, http.StatusSeeOther, "/login?next=%2Fsuper%2Fschools"},
		{"anonymous json gets 401", anon, "/super/schools", true, http.StatusUnauthorized, ""},
		{"super admin allowed", super, "/super/schools", false, http.StatusOK, ""},
		{"admin forbidden on super route", admin, "/super/schools", false, http.StatusForbidden, ""},
		{"admin allowed with param route", admin, "/admin/students/42", false, http.StatusOK, ""},
		{"super forbidden on admin route", super, "/admin/students/42", true, http.StatusForbidden, ""},
		{"unlisted route open to any role", super, "/profile", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.json {
				req.Header.Set("Accept", "application/json")
			}
			rec := httptest.NewRecorder()
			newGatedRouter(tt.loader).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.location)
			}
		})
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	var captured *responseWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot || captured.status != http.StatusTeapot || captured.bytes != 15 {
		t.Errorf("code=%d status=%d bytes=%d", rec.Code, captured.status, captured.bytes)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP = %q", got)
	}
}
