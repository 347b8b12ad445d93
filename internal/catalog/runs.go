package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

const runColumns = "run_id, root, started_at, finished_at, seen, skipped, processed, updated, failed, located, bytes_hashed, interrupted, error_message"

// RecordRun inserts or updates an ingest run row.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.execWithRetry(ctx, `INSERT INTO ingest_runs (`+runColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
    finished_at = excluded.finished_at,
    seen = excluded.seen,
    skipped = excluded.skipped,
    processed = excluded.processed,
    updated = excluded.updated,
    failed = excluded.failed,
    located = excluded.located,
    bytes_hashed = excluded.bytes_hashed,
    interrupted = excluded.interrupted,
    error_message = excluded.error_message`,
		run.ID,
		run.Root,
		formatTime(run.StartedAt),
		nullableTime(run.FinishedAt),
		run.Seen,
		run.Skipped,
		run.Processed,
		run.Updated,
		run.Failed,
		run.Located,
		run.BytesHashed,
		boolToInt(run.Interrupted),
		nullableString(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns the newest runs first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+runColumns+" FROM ingest_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw sql.NullString
			interrupted int
			errMsg      sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Root, &startedRaw, &finishedRaw, &run.Seen, &run.Skipped,
			&run.Processed, &run.Updated, &run.Failed, &run.Located, &run.BytesHashed, &interrupted, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := parseTimeString(startedRaw); err == nil {
			run.StartedAt = ts
		}
		if finishedRaw.Valid {
			if ts, err := parseTimeString(finishedRaw.String); err == nil {
				run.FinishedAt = &ts
			}
		}
		run.Interrupted = interrupted != 0
		run.ErrorMessage = errMsg.String
		out = append(out, run)
	}
	return out, rows.Err()
}
