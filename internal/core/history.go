package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/ecole-console/internal/logging"
)

// historyWriteTimeout bounds the best-effort history write after an import.
const historyWriteTimeout = 5 * time.Second

// HistoryStore persists import history.
type HistoryStore interface {
	Record(ctx context.Context, e ImportEntry) error
	Recent(ctx context.Context, schoolID string, limit int) ([]ImportEntry, error)
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// RecentImports lists the latest imports of a school, newest first.
func (s *Service) RecentImports(ctx context.Context, schoolID string, limit int) ([]ImportEntry, error) {
	if schoolID == "" {
		return nil, ErrNoSchool
	}
	if s.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.history.Recent(ctx, schoolID, limit)
}

// recordHistory writes e, logging instead of failing. It survives the
// request context being cancelled.
func (s *Service) recordHistory(ctx context.Context, e ImportEntry) {
	if s.history == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := s.history.Record(writeCtx, e); err != nil {
		logging.FromContext(ctx).Warn("import history write failed",
			"import_id", e.ID,
			"error", err,
		)
	}
}
