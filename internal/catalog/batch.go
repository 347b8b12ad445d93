package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"exifatlas/internal/services"
)

// Batch stages photo writes in one transaction. It is not safe for
// concurrent use.
type Batch struct {
	tx     *sql.Tx
	staged int
	closed bool
}

// BeginBatch opens a write transaction.
func (s *Store) BeginBatch(ctx context.Context) (*Batch, error) {
	tx, err := s.beginWithRetry(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "begin batch", "", err)
	}
	return &Batch{tx: tx}, nil
}

// MarkPending stages a record as pending before extraction.
func (b *Batch) MarkPending(ctx context.Context, path string, mtime time.Time, size int64) error {
	if b.closed {
		return fmt.Errorf("mark pending %s: batch closed", path)
	}
	if _, err := b.tx.ExecContext(ensureContext(ctx), markPendingSQL, path, filepath.Base(path), mtime.UnixNano(), size); err != nil {
		return services.Wrap(services.ErrStore, "catalog", "mark pending", path, err)
	}
	b.staged++
	return nil
}

// Upsert stages a terminal record.
func (b *Batch) Upsert(ctx context.Context, rec *PhotoRecord) error {
	if b.closed {
		return fmt.Errorf("upsert: batch closed")
	}
	if err := upsertPhoto(ensureContext(ctx), b.tx, rec); err != nil {
		return services.Wrap(services.ErrStore, "catalog", "upsert", "", err)
	}
	b.staged++
	return nil
}

// Len returns the number of statements staged.
func (b *Batch) Len() int {
	return b.staged
}

// Commit makes the staged writes durable.
func (b *Batch) Commit() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.tx.Commit(); err != nil {
		return services.Wrap(services.ErrStore, "catalog", "commit batch", fmt.Sprintf("%d statements", b.staged), err)
	}
	return nil
}

// Rollback discards staged writes. Safe to call after Commit.
func (b *Batch) Rollback() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.tx.Rollback()
}
