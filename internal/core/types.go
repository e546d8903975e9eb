package core

import (
	"errors"
	"io"
	"time"
)

// Import failures. MapError turns each into a user-facing message.
var (
	ErrNoFile          = errors.New("no file provided")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrReadFailed      = errors.New("upload read failed")
	ErrUnreadableFile  = errors.New("encoding error")
	ErrNothingToImport = errors.New("nothing to import")
	ErrBlankRecords    = errors.New("all records are blank")
	ErrNoSchool        = errors.New("account is not attached to a school")
)

// ImportRequest is one uploaded file destined for the content catalog.
type ImportRequest struct {
	SchoolID string
	FileName string
	Body     io.Reader
}

// ImportResult summarizes a successful import.
type ImportResult struct {
	ImportID  string        `json:"import_id"`
	FileName  string        `json:"file_name"`
	Parsed    int           `json:"parsed"`
	Submitted int           `json:"submitted"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
}

// Import statuses stored in history.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ImportEntry is one line of the import history.
type ImportEntry struct {
	ID        string        `json:"id"`
	SchoolID  string        `json:"school_id"`
	UserID    string        `json:"user_id,omitempty"`
	FileName  string        `json:"file_name"`
	Status    string        `json:"status"`
	ErrorCode string        `json:"error_code,omitempty"`
	Parsed    int           `json:"parsed"`
	Submitted int           `json:"submitted"`
	Skipped   int           `json:"skipped"`
	IPAddress string        `json:"ip_address,omitempty"`
	UserAgent string        `json:"user_agent,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}
