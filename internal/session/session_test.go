package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JonMunkholm/ecole-console/internal/access"
	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(config.SessionConfig{
		Secret:     testSecret,
		CookieName: "test_session",
		MaxAge:     time.Hour,
	})
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// roundTrip copies the cookies written by save onto a fresh request.
func roundTrip(t *testing.T, save func(http.ResponseWriter, *http.Request)) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	save(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestClaimsFromToken(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	good := signToken(t, "api-secret", Claims{
		Role:             "admin",
		SchoolID:         "s1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp},
	})
	expired := signToken(t, "api-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr bool
	}{
		{"verified", good, "api-secret", false},
		{"wrong secret", good, "other-secret", true},
		{"unverified", good, "", false},
		{"expired verified", expired, "api-secret", true},
		{"expired unverified", expired, "", true},
		{"not a jwt", "opaque-token", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ClaimsFromToken(tt.token, tt.secret)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ClaimsFromToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (claims.Role != "admin" || claims.SchoolID != "s1" || claims.Subject != "u1") {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestClaimsFromToken_ExpiredIsErrTokenExpired(t *testing.T) {
	tok := signToken(t, "k", Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	if _, err := ClaimsFromToken(tok, ""); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestFromLogin(t *testing.T) {
	m := newTestManager(t)
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	t.Run("claims override user", func(t *testing.T) {
		tok := signToken(t, "api-secret", Claims{
			Role:             "super_admin",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		})
		s, err := m.FromLogin(&api.LoginResult{Token: tok, User: api.User{ID: "u1", Role: "admin"}}, "api-secret")
		if err != nil {
			t.Fatalf("FromLogin: %v", err)
		}
		if s.Role != access.RoleSuperAdmin {
			t.Errorf("Role = %q", s.Role)
		}
		if !s.ExpiresAt.Equal(exp) {
			t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, exp)
		}
	})

	t.Run("opaque token without secret", func(t *testing.T) {
		s, err := m.FromLogin(&api.LoginResult{Token: "opaque", User: api.User{ID: "u1", Role: "admin"}}, "")
		if err != nil {
			t.Fatalf("FromLogin: %v", err)
		}
		if s.ExpiresAt.IsZero() || s.Role != access.RoleAdmin {
			t.Errorf("session = %+v", s)
		}
	})

	t.Run("opaque token with secret", func(t *testing.T) {
		_, err := m.FromLogin(&api.LoginResult{Token: "opaque", User: api.User{Role: "admin"}}, "api-secret")
		if err == nil {
			t.Fatal("FromLogin() expected verification error")
		}
	})

	t.Run("expired token without secret", func(t *testing.T) {
		tok := signToken(t, "api-secret", Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		})
		_, err := m.FromLogin(&api.LoginResult{Token: tok, User: api.User{ID: "u1", Role: "admin"}}, "")
		if !errors.Is(err, jwt.ErrTokenExpired) {
			t.Errorf("error = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := m.FromLogin(&api.LoginResult{Token: "opaque", User: api.User{Role: "student"}}, "")
		if !errors.Is(err, ErrUnknownRole) {
			t.Errorf("error = %v, want ErrUnknownRole", err)
		}
	})
}

func TestSaveLoad(t *testing.T) {
	m := newTestManager(t)
	want := Session{
		Token:     "tok",
		UserID:    "u1",
		Name:      "Awa Ndiaye",
		Email:     "awa@ecole.test",
		Role:      access.RoleAdmin,
		SchoolID:  "s1",
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}

	req := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
		if err := m.Save(w, r, want); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})

	got, ok := m.Load(req)
	if !ok {
		t.Fatal("Load() ok = false")
	}
	if got.Token != want.Token || got.Role != want.Role || got.SchoolID != want.SchoolID || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoad_Expired(t *testing.T) {
	m := newTestManager(t)
	req := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
		_ = m.Save(w, r, Session{Token: "tok", Role: access.RoleAdmin, ExpiresAt: time.Now().Add(time.Minute)})
	})

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, ok := m.Load(req); ok {
		t.Error("Load() ok = true for expired token")
	}
}

func TestLoad_NoCookie(t *testing.T) {
	m := newTestManager(t)
	if _, ok := m.Load(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Error("Load() ok = true without cookie")
	}
}

func TestLoad_ForeignKey(t *testing.T) {
	req := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
		_ = newTestManager(t).Save(w, r, Session{Token: "tok", Role: access.RoleAdmin})
	})

	other := NewManager(config.SessionConfig{Secret: "another-secret-another-secret-xx", CookieName: "test_session", MaxAge: time.Hour})
	if _, ok := other.Load(req); ok {
		t.Error("Load() accepted a cookie signed with another key")
	}
}

func TestFlashes(t *testing.T) {
	m := newTestManager(t)
	req := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
		if err := m.AddFlash(w, r, Flash{Kind: "success", Message: "Élève créé"}); err != nil {
			t.Fatalf("AddFlash: %v", err)
		}
	})

	flashes := m.Flashes(httptest.NewRecorder(), req)
	if len(flashes) != 1 || flashes[0].Kind != "success" || flashes[0].Message != "Élève créé" {
		t.Errorf("Flashes() = %+v", flashes)
	}
}

func TestClear(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()
	if err := m.Clear(rec, httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("Clear() cookies = %+v, want one expired cookie", cookies)
	}
}

func TestSignOut(t *testing.T) {
	m := newTestManager(t)
	signedIn := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
		if err := m.Save(w, r, Session{Token: "tok", UserID: "u1", Role: access.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})
	if _, ok := m.Load(signedIn); !ok {
		t.Fatal("Load() before sign out = false")
	}

	rec := httptest.NewRecorder()
	if err := m.SignOut(rec, signedIn, Flash{Kind: "success", Message: "Signed out"}); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	after := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range rec.Result().Cookies() {
		after.AddCookie(c)
	}

	if _, ok := m.Load(after); ok {
		t.Error("Load() after sign out = true")
	}
	flashes := m.Flashes(httptest.NewRecorder(), after)
	if len(flashes) != 1 || flashes[0].Message != "Signed out" {
		t.Errorf("Flashes() = %+v", flashes)
	}
}
