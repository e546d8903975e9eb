package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/config"
	"github.com/JonMunkholm/ecole-console/internal/csvimport"
	"github.com/JonMunkholm/ecole-console/internal/logging"
)

// BulkSubmitter stores a batch of content records remotely.
// *api.Client satisfies it.
type BulkSubmitter interface {
	BulkCreateContent(ctx context.Context, records []csvimport.Record) (*api.BulkResult, error)
}

// Service runs content imports.
type Service struct {
	submitter BulkSubmitter
	history   HistoryStore
	cfg       config.ImportConfig

	limiter *ImportLimiter
	guard   *KeyedGuard

	now func() time.Time
}

// NewService creates a Service. history may be nil to skip recording.
func NewService(submitter BulkSubmitter, history HistoryStore, cfg config.ImportConfig) *Service {
	return &Service{
		submitter: submitter,
		history:   history,
		cfg:       cfg,
		limiter:   NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		guard:     NewKeyedGuard(),
		now:       time.Now,
	}
}

// Limiter exposes the import limiter for health checks and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// ImportContent parses an uploaded file and submits its records to the
// content catalog in one bulk call. Either the whole batch is accepted or
// nothing is.
//
// Blank records are dropped before submission and counted as Skipped.
// The outcome is written to the import history whether it succeeds or not.
func (s *Service) ImportContent(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.SchoolID == "" {
		return nil, ErrNoSchool
	}
	if req.Body == nil || req.FileName == "" {
		return nil, ErrNoFile
	}
	kind, err := kindOf(req.FileName)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Lock(req.SchoolID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()
	defer trackActive()()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	actor := GetActorFromContext(ctx)
	start := s.now()
	entry := ImportEntry{
		ID:        uuid.NewString(),
		SchoolID:  req.SchoolID,
		UserID:    actor.UserID,
		FileName:  req.FileName,
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		StartedAt: start,
	}
	logger := logging.WithFields(ctx, "import_id", entry.ID, "file", req.FileName)

	result, err := s.runImport(ctx, kind, req.Body)
	entry.Duration = s.now().Sub(start)
	if result != nil {
		entry.Parsed = result.Parsed
		entry.Submitted = result.Submitted
		entry.Skipped = result.Skipped
	}

	if err != nil {
		entry.Status = StatusFailed
		entry.ErrorCode = MapError(err).Code
		s.recordHistory(ctx, entry)
		observeImport(entry)
		logger.Warn("content import failed",
			"code", entry.ErrorCode,
			"parsed", entry.Parsed,
			"error", err,
		)
		return nil, err
	}

	entry.Status = StatusSucceeded
	s.recordHistory(ctx, entry)
	observeImport(entry)

	result.ImportID = entry.ID
	result.FileName = req.FileName
	result.Duration = entry.Duration

	logger.Info("content import completed",
		"parsed", result.Parsed,
		"submitted", result.Submitted,
		"skipped", result.Skipped,
		"duration_ms", entry.Duration.Milliseconds(),
	)
	return result, nil
}

// runImport reads, parses, filters and submits. On failure the partial
// result still carries the counts reached so far.
func (s *Service) runImport(ctx context.Context, kind fileKind, body io.Reader) (*ImportResult, error) {
	data, err := s.readUpload(body)
	if err != nil {
		return nil, err
	}

	records, err := parseUpload(kind, data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Parsed: len(records)}
	if len(records) == 0 {
		return result, ErrNothingToImport
	}

	kept := csvimport.NonBlank(records)
	result.Skipped = len(records) - len(kept)
	if len(kept) == 0 {
		return result, ErrBlankRecords
	}

	res, err := s.submitter.BulkCreateContent(ctx, kept)
	if err != nil {
		return result, fmt.Errorf("submit %d contents: %w", len(kept), err)
	}
	result.Submitted = res.Count
	return result, nil
}

// readUpload reads the whole body, refusing anything over MaxFileSize.
func (s *Service) readUpload(body io.Reader) ([]byte, error) {
	limit := s.cfg.MaxFileSize
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: over %d bytes", ErrFileTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

func parseUpload(kind fileKind, data []byte) ([]csvimport.Record, error) {
	switch kind {
	case kindWorkbook:
		rows, err := workbookRows(data)
		if err != nil {
			return nil, err
		}
		return csvimport.RecordsFromRows(rows), nil
	default:
		text, err := decodeText(data)
		if err != nil {
			return nil, err
		}
		return csvimport.Parse(text), nil
	}
}
