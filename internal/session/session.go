// Package session keeps the signed-in user's bearer token in an
// encrypted cookie.
//
// There is no refresh flow: once the token expires the session is
// treated as absent and the user signs in again.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"

	"github.com/JonMunkholm/ecole-console/internal/access"
	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/config"
)

const (
	keyToken     = "token"
	keyUserID    = "user_id"
	keyName      = "name"
	keyEmail     = "email"
	keyRole      = "role"
	keySchoolID  = "school_id"
	keyExpiresAt = "expires_at"
)

// ErrUnknownRole is returned when the API hands out a role the console
// has no screens for.
var ErrUnknownRole = errors.New("unknown role")

// Session is the signed-in user as seen by the console.
type Session struct {
	Token     string
	UserID    string
	Name      string
	Email     string
	Role      access.Role
	SchoolID  string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Flash is a one-shot message shown on the next page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// Manager reads and writes sessions.
type Manager struct {
	store  *sessions.CookieStore
	name   string
	maxAge time.Duration
	now    func() time.Time
}

// NewManager builds a cookie-backed manager. The signing and encryption
// keys are derived from cfg.Secret.
func NewManager(cfg config.SessionConfig) *Manager {
	hashKey := sha256.Sum256([]byte("ecole-console/auth:" + cfg.Secret))
	blockKey := sha256.Sum256([]byte("ecole-console/enc:" + cfg.Secret))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store:  store,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		now:    time.Now,
	}
}

// FromLogin builds a session from a login response. When jwtSecret is
// set the token must verify; otherwise its claims (if it is a JWT) are
// read unverified to pick up the expiry. An expired JWT is refused
// either way.
func (m *Manager) FromLogin(res *api.LoginResult, jwtSecret string) (Session, error) {
	s := Session{
		Token:    res.Token,
		UserID:   res.User.ID,
		Name:     res.User.Name,
		Email:    res.User.Email,
		Role:     access.Role(res.User.Role),
		SchoolID: res.User.SchoolID,
	}

	claims, err := ClaimsFromToken(res.Token, jwtSecret)
	switch {
	case err == nil:
		if claims.Role != "" {
			s.Role = access.Role(claims.Role)
		}
		if claims.SchoolID != "" {
			s.SchoolID = claims.SchoolID
		}
		if claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
	case errors.Is(err, jwt.ErrTokenExpired), jwtSecret != "":
		return Session{}, fmt.Errorf("verify token: %w", err)
	}

	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = m.now().Add(m.maxAge)
	}
	if !s.Role.Valid() {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownRole, s.Role)
	}
	if s.Expired(m.now()) {
		return Session{}, fmt.Errorf("verify token: token already expired")
	}
	return s, nil
}

// Load returns the current session. ok is false when there is none, the
// cookie does not decode, or the token has expired.
func (m *Manager) Load(r *http.Request) (Session, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return Session{}, false
	}

	s := Session{
		Token:    stringValue(sess.Values, keyToken),
		UserID:   stringValue(sess.Values, keyUserID),
		Name:     stringValue(sess.Values, keyName),
		Email:    stringValue(sess.Values, keyEmail),
		Role:     access.Role(stringValue(sess.Values, keyRole)),
		SchoolID: stringValue(sess.Values, keySchoolID),
	}
	if exp, ok := sess.Values[keyExpiresAt].(int64); ok && exp > 0 {
		s.ExpiresAt = time.Unix(exp, 0)
	}

	if s.Token == "" || s.Expired(m.now()) {
		return Session{}, false
	}
	return s, true
}

// Save stores s in the response cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[keyToken] = s.Token
	sess.Values[keyUserID] = s.UserID
	sess.Values[keyName] = s.Name
	sess.Values[keyEmail] = s.Email
	sess.Values[keyRole] = string(s.Role)
	sess.Values[keySchoolID] = s.SchoolID
	sess.Values[keyExpiresAt] = s.ExpiresAt.Unix()
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear drops the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SignOut forgets the user but keeps the cookie alive long enough to
// carry notice to the login page.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request, notice Flash) error {
	sess, _ := m.store.Get(r, m.name)
	for _, k := range []string{keyToken, keyUserID, keyName, keyEmail, keyRole, keySchoolID, keyExpiresAt} {
		delete(sess.Values, k)
	}
	if notice.Message != "" {
		sess.AddFlash(notice.Kind + "|" + notice.Message)
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) error {
	sess, _ := m.store.Get(r, m.name)
	sess.AddFlash(f.Kind + "|" + f.Message)
	return sess.Save(r, w)
}

// Flashes pops the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		return nil
	}

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, "|")
		if !found {
			kind, msg = "success", s
		}
		out = append(out, Flash{Kind: kind, Message: msg})
	}
	return out
}

func stringValue(values map[interface{}]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}
