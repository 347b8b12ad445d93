package catalog

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds the writer lock.
var ErrLocked = errors.New("catalog is locked by another ingest")

// WriterLock is an advisory single-writer lock held beside the database file.
type WriterLock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// AcquireWriterLock takes the writer lock without blocking.
func AcquireWriterLock(dbPath string) (*WriterLock, error) {
	lock := flock.New(LockPath(dbPath))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire writer lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, LockPath(dbPath))
	}
	return &WriterLock{lock: lock}, nil
}

// Release drops the lock. Safe to call on nil.
func (l *WriterLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
