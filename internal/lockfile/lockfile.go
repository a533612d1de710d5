package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrTimeout means the lock could not be acquired within the bound.
	// Callers may retry the whole operation.
	ErrTimeout = errors.New("lock acquisition timed out")
)

// pollInterval is how often a blocked caller re-attempts creation of the
// marker file.
const pollInterval = 100 * time.Millisecond

// Lock is an advisory mutex over a named resource, backed by a marker file.
// The marker's existence is the only state: whoever creates it exclusively
// holds the lock until the marker is removed.
type Lock struct {
	path string
}

// New returns a Lock backed by the marker file at path.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the marker file location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire blocks until the marker file can be created exclusively, polling
// at a fixed interval, or until timeout elapses (ErrTimeout) or ctx is
// done. On success it returns a release func that removes the marker.
// Release is idempotent: an already-absent marker is not an error.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		// O_CREATE|O_EXCL is the atomic create-if-absent: there is no
		// check-then-create gap for a second caller to slip through.
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return l.release, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock marker: %w", err)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, l.path)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (l *Lock) release() {
	// An already-removed marker is fine; release must be idempotent.
	_ = os.Remove(l.path)
}
