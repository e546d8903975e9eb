package core

// error_messages.go maps technical errors to user-facing messages.
//
// Each message carries a code users can quote to support:
//
//	FILE001  file exceeds the upload size limit
//	FILE002  unsupported file type (only .csv, .txt and .xlsx)
//	FILE003  file is not readable text or a valid workbook
//	FILE004  no file selected
//	FILE005  nothing to import (fewer than two rows)
//	IMP001   every parsed record is blank
//	IMP002   an import for this school is already running
//	UPL002   server busy with other imports
//	UPL003   upload could not be read
//	UPL004   request cancelled
//	UPL005   request timed out
//	API001   remote API unreachable
//	API002   remote API rejected the request (its message is shown as-is)
//	AUTH001  session expired
//	AUTH002  access denied
//	RATE001  too many requests
//	ERR000   anything else; check the logs for the technical error
//
// Lookup order: remote API errors first, then sentinel errors via
// errors.Is, then case-insensitive substring patterns.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/ecole-console/internal/api"
)

// UserMessage is what the console shows for an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is checked in order with errors.Is.
var sentinelMessages = []sentinelMessage{
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}},
	{ErrUnsupportedFile, UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload a .csv, .txt or .xlsx file",
		Code:    "FILE002",
	}},
	{ErrUnreadableFile, UserMessage{
		Message: "The file could not be decoded",
		Action:  "Save the file as UTF-8 CSV or as an Excel workbook",
		Code:    "FILE003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to import",
		Code:    "FILE004",
	}},
	{ErrNothingToImport, UserMessage{
		Message: "Nothing to import",
		Action:  "The file needs a header row (No, Titre, Auteur, Description) and at least one data row",
		Code:    "FILE005",
	}},
	{ErrBlankRecords, UserMessage{
		Message: "Every row in the file is empty",
		Action:  "Check that the column headers are spelled exactly No, Titre, Auteur, Description",
		Code:    "IMP001",
	}},
	{ErrImportInProgress, UserMessage{
		Message: "An import is already running for your school",
		Action:  "Wait for it to finish before starting another one",
		Code:    "IMP002",
	}},
	{ErrNoSchool, UserMessage{
		Message: "Your account is not attached to a school",
		Action:  "Contact your platform administrator",
		Code:    "IMP003",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrReadFailed, UserMessage{
		Message: "Upload failed",
		Action:  "Please try again",
		Code:    "UPL003",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "UPL005",
	}},
	{api.ErrUnreachable, UserMessage{
		Message: "The school platform is unreachable",
		Action:  "Please try again in a few moments",
		Code:    "API001",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that lost their identity (formatted
// strings from lower layers). First match wins.
var errorPatterns = []errorPattern{
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
	{"request body too large", sentinelMessages[0].msg},
	{"connection refused", UserMessage{
		Message: "The school platform is unreachable",
		Action:  "Please try again in a few moments",
		Code:    "API001",
	}},
	{"timeout", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "UPL005",
	}},
}

var (
	sessionExpiredMessage = UserMessage{
		Message: "Your session has expired",
		Action:  "Please sign in again",
		Code:    "AUTH001",
	}
	forbiddenMessage = UserMessage{
		Message: "You are not allowed to do this",
		Action:  "Contact your platform administrator",
		Code:    "AUTH002",
	}
	apiRejectedMessage = UserMessage{
		Message: "The school platform rejected the request",
		Action:  "Please try again",
		Code:    "API002",
	}
)

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-facing message. A message sent by
// the remote API is passed through verbatim.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Unauthorized():
			return sessionExpiredMessage
		case apiErr.StatusCode == http.StatusForbidden && apiErr.Message == "":
			return forbiddenMessage
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return errorPatterns[0].msg
		case apiErr.Message != "":
			msg := apiRejectedMessage
			msg.Message = apiErr.Message
			msg.Action = ""
			return msg
		default:
			return apiRejectedMessage
		}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError keeps the technical error for logging next to the message
// shown to the user.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
