package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusFor(err))
//  3. Error is mapped via core.MapError to a user-facing message
//  4. Technical error is logged with the request id for correlation
//  5. User message is rendered for the client (HTMX, JSON or HTML)
//
// An expired bearer token is special: the session is cleared and
// browsers are sent back to /login.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/logging"
	"github.com/JonMunkholm/ecole-console/internal/session"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
	"github.com/JonMunkholm/ecole-console/internal/web/views"
)

// ErrorResponse is the JSON body of an error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status reported for err.
func statusFor(err error) int {
	var apiErr *api.Error
	switch {
	case api.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrUnsupportedFile),
		errors.Is(err, core.ErrUnreadableFile),
		errors.Is(err, core.ErrNothingToImport),
		errors.Is(err, core.ErrBlankRecords):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoSchool):
		return http.StatusForbidden
	case errors.Is(err, core.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, api.ErrUnreachable):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and answers with its user-facing message in the
// format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if api.IsUnauthorized(err) {
		if !mw.WantsJSON(r) && !isHTMX(r) {
			s.expiredRedirect(w, r)
			return
		}
		_ = s.sessions.Clear(w, r)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case mw.WantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		s.respondErrorHTML(w, r, userMsg, statusCode)
	}
}

// expiredRedirect sends the browser to /login with a notice.
func (s *Server) expiredRedirect(w http.ResponseWriter, r *http.Request) {
	_ = s.sessions.SignOut(w, r, session.Flash{Kind: "error", Message: "Your session has expired. Please sign in again."})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders a full page around the error so the user keeps
// their navigation.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	s.render(w, r, statusCode, "Something went wrong", "",
		views.ErrorAlert(msg.Message, msg.Action, msg.Code))
}

func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
