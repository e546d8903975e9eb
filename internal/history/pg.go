// Package history stores the content import history.
//
// The console keeps no business data of its own; this log of who imported
// which file, when, and with what outcome is the one thing it persists.
// PGStore is used when a database is configured, MemoryStore otherwise.
package history

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ecole-console/internal/core"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS content_import_history (
	id          uuid PRIMARY KEY,
	school_id   text NOT NULL,
	user_id     text,
	file_name   text NOT NULL,
	status      text NOT NULL,
	error_code  text,
	parsed      integer NOT NULL DEFAULT 0,
	submitted   integer NOT NULL DEFAULT 0,
	skipped     integer NOT NULL DEFAULT 0,
	ip_address  inet,
	user_agent  text,
	started_at  timestamptz NOT NULL,
	duration_ms bigint NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS content_import_history_school_idx
	ON content_import_history (school_id, started_at DESC);
`

const insertSQL = `
INSERT INTO content_import_history (
	id, school_id, user_id, file_name, status, error_code,
	parsed, submitted, skipped, ip_address, user_agent, started_at, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const recentSQL = `
SELECT id, school_id, user_id, file_name, status, error_code,
	parsed, submitted, skipped, ip_address, user_agent, started_at, duration_ms
FROM content_import_history
WHERE school_id = $1
ORDER BY started_at DESC
LIMIT $2`

const purgeSQL = `DELETE FROM content_import_history WHERE started_at < $1`

// PGStore keeps history in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ core.HistoryStore = (*PGStore)(nil)

// NewPGStore wraps an open pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the history table if it is missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create import history schema: %w", err)
	}
	return nil
}

// Record inserts one entry.
func (s *PGStore) Record(ctx context.Context, e core.ImportEntry) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}

	var ip *netip.Addr
	if addr, err := netip.ParseAddr(e.IPAddress); err == nil {
		ip = &addr
	}

	_, err = s.pool.Exec(ctx, insertSQL,
		pgtype.UUID{Bytes: id, Valid: true},
		e.SchoolID,
		toPgText(e.UserID),
		e.FileName,
		e.Status,
		toPgText(e.ErrorCode),
		e.Parsed,
		e.Submitted,
		e.Skipped,
		ip,
		toPgText(e.UserAgent),
		e.StartedAt,
		e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert import history: %w", err)
	}
	return nil
}

// Recent returns the latest entries of a school, newest first.
func (s *PGStore) Recent(ctx context.Context, schoolID string, limit int) ([]core.ImportEntry, error) {
	rows, err := s.pool.Query(ctx, recentSQL, schoolID, limit)
	if err != nil {
		return nil, fmt.Errorf("query import history: %w", err)
	}
	defer rows.Close()

	var entries []core.ImportEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import history: %w", err)
	}
	return entries, nil
}

// Purge deletes entries started before olderThan.
func (s *PGStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, purgeSQL, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge import history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(rows pgx.Rows) (core.ImportEntry, error) {
	var (
		id         pgtype.UUID
		userID     pgtype.Text
		errorCode  pgtype.Text
		ipAddress  *netip.Addr
		userAgent  pgtype.Text
		startedAt  pgtype.Timestamptz
		durationMS int64
		e          core.ImportEntry
	)

	err := rows.Scan(
		&id, &e.SchoolID, &userID, &e.FileName, &e.Status, &errorCode,
		&e.Parsed, &e.Submitted, &e.Skipped, &ipAddress, &userAgent, &startedAt, &durationMS,
	)
	if err != nil {
		return core.ImportEntry{}, err
	}

	if id.Valid {
		e.ID = uuid.UUID(id.Bytes).String()
	}
	e.UserID = userID.String
	e.ErrorCode = errorCode.String
	e.UserAgent = userAgent.String
	if ipAddress != nil {
		e.IPAddress = ipAddress.String()
	}
	e.StartedAt = startedAt.Time
	e.Duration = time.Duration(durationMS) * time.Millisecond
	return e, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
