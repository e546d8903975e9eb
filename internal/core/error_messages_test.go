package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JonMunkholm/ecole-console/internal/api"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("read upload: %w", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "nothing to import",
			err:         ErrNothingToImport,
			wantCode:    "FILE005",
			wantMessage: "Nothing to import",
		},
		{
			name:        "blank records",
			err:         ErrBlankRecords,
			wantCode:    "IMP001",
			wantMessage: "Every row in the file is empty",
		},
		{
			name:        "import in progress",
			err:         ErrImportInProgress,
			wantCode:    "IMP002",
			wantMessage: "An import is already running for your school",
		},
		{
			name:        "account without school",
			err:         ErrNoSchool,
			wantCode:    "IMP003",
			wantMessage: "Your account is not attached to a school",
		},
		{
			name:        "read failure is generic",
			err:         fmt.Errorf("%w: unexpected EOF", ErrReadFailed),
			wantCode:    "UPL003",
			wantMessage: "Upload failed",
		},
		{
			name:        "remote message shown verbatim",
			err:         &api.Error{StatusCode: http.StatusUnprocessableEntity, Message: "Quota de contenus atteint"},
			wantCode:    "API002",
			wantMessage: "Quota de contenus atteint",
		},
		{
			name:        "remote error without message",
			err:         &api.Error{StatusCode: http.StatusInternalServerError},
			wantCode:    "API002",
			wantMessage: "The school platform rejected the request",
		},
		{
			name:        "expired token",
			err:         fmt.Errorf("list contents: %w", &api.Error{StatusCode: http.StatusUnauthorized, Message: "jwt expired"}),
			wantCode:    "AUTH001",
			wantMessage: "Your session has expired",
		},
		{
			name:        "unreachable",
			err:         fmt.Errorf("%w: dial tcp: connection refused", api.ErrUnreachable),
			wantCode:    "API001",
			wantMessage: "The school platform is unreachable",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("submit: %w", context.DeadlineExceeded),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit pattern",
			err:         errors.New("Rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNoFile, "No file was selected (Code: FILE004). Please select a file to import"},
		{&api.Error{StatusCode: 400, Message: "Titre obligatoire"}, "Titre obligatoire (Code: API002)"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := FormatUserError(tt.err); got != tt.want {
			t.Errorf("FormatUserError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrBlankRecords, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("import: %w", ErrNothingToImport)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Nothing to import" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrNothingToImport) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
