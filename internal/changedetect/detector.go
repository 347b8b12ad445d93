package changedetect

import (
	"fmt"
	"time"

	"exifatlas/internal/catalog"
	"exifatlas/internal/fileutil"
)

// Reason explains a decision. Values appear in debug logs.
type Reason string

const (
	ReasonNew            Reason = "new"
	ReasonForced         Reason = "forced"
	ReasonIncomplete     Reason = "incomplete"
	ReasonModified       Reason = "modified"
	ReasonContentChanged Reason = "content-changed"
	ReasonUnchanged      Reason = "unchanged"
)

// Stored is the persisted state for a path.
type Stored struct {
	Status      catalog.Status
	Fingerprint string
	Mtime       time.Time
}

// FromSnapshot converts a catalog snapshot.
func FromSnapshot(snap catalog.Snapshot) *Stored {
	return &Stored{Status: snap.Status, Fingerprint: snap.Fingerprint, Mtime: snap.FileMtime}
}

// Incomplete reports whether a prior run left the record unfinished.
func (s *Stored) Incomplete() bool {
	return s.Status == catalog.StatusPending || s.Fingerprint == ""
}

// ShouldProcess is the mtime-only decision.
func ShouldProcess(stored *Stored, currentMtime time.Time, force bool) bool {
	_, process := classify(stored, currentMtime, force)
	return process
}

func classify(stored *Stored, currentMtime time.Time, force bool) (Reason, bool) {
	switch {
	case stored == nil:
		return ReasonNew, true
	case force:
		return ReasonForced, true
	case stored.Incomplete():
		return ReasonIncomplete, true
	case !stored.Mtime.Equal(currentMtime):
		return ReasonModified, true
	default:
		return ReasonUnchanged, false
	}
}

// Decision is the outcome for one file. Fingerprint and Bytes are set
// whenever the file was hashed.
type Decision struct {
	Process     bool
	Reason      Reason
	Fingerprint string
	Bytes       int64
}

// HashFunc fingerprints a file.
type HashFunc func(path string) (string, int64, error)

// Detector adds an optional content check on top of ShouldProcess.
type Detector struct {
	VerifyContent bool
	hash          HashFunc
}

// New returns a Detector hashing with blake3.
func New(verifyContent bool) *Detector {
	return &Detector{VerifyContent: verifyContent, hash: fileutil.Fingerprint}
}

// WithHash swaps the fingerprint function, mostly for tests.
func (d *Detector) WithHash(fn HashFunc) *Detector {
	if fn != nil {
		d.hash = fn
	}
	return d
}

// Decide classifies path. Files that will be processed are always hashed so
// the caller can persist the fingerprint without reading the file again.
func (d *Detector) Decide(path string, stored *Stored, mtime time.Time, force bool) (Decision, error) {
	reason, process := classify(stored, mtime, force)
	if !process && !d.VerifyContent {
		return Decision{Reason: reason}, nil
	}

	fingerprint, n, err := d.hash(path)
	if err != nil {
		return Decision{Process: process, Reason: reason, Bytes: n}, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	decision := Decision{Process: process, Reason: reason, Fingerprint: fingerprint, Bytes: n}
	if !process && fingerprint != stored.Fingerprint {
		decision.Process = true
		decision.Reason = ReasonContentChanged
	}
	return decision, nil
}
