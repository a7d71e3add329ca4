// Package lock prevents two conversion runs from working on the same
// repository at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("another run holds the lock")

// Common wait values for lock acquisition.
const (
	// TimeoutImmediate fails at once when the lock is taken.
	TimeoutImmediate = 0
	// TimeoutShort is suitable for fast-failing duplicate run detection.
	TimeoutShort = time.Second

	retryDelay = 50 * time.Millisecond
)

// RunLock is an exclusive file lock on <root>/<name>.
type RunLock struct {
	fl   *flock.Flock
	held bool
}

// NewRunLock creates a lock file handle. The lock is not acquired until
// TryAcquire is called.
func NewRunLock(root, name string) *RunLock {
	return &RunLock{fl: flock.New(filepath.Join(root, name))}
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.fl.Path()
}

// TryAcquire takes the lock, retrying for up to wait. It returns ErrLocked
// when another holder keeps it for the whole period.
func (l *RunLock) TryAcquire(ctx context.Context, wait time.Duration) error {
	if l.held {
		return nil
	}

	var (
		locked bool
		err    error
	)
	if wait <= 0 {
		locked, err = l.fl.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		locked, err = l.fl.TryLockContext(waitCtx, retryDelay)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.Path(), err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, l.Path())
	}
	l.held = true
	return nil
}

// Release unlocks the lock. Releasing a lock that is not held is a no-op.
func (l *RunLock) Release() error {
	if !l.held {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.Path(), err)
	}
	l.held = false
	return nil
}

// WithLock runs fn while holding the lock and releases it afterwards, even
// when fn panics.
func (l *RunLock) WithLock(ctx context.Context, wait time.Duration, fn func() error) (err error) {
	if err := l.TryAcquire(ctx, wait); err != nil {
		return err
	}
	defer func() {
		if releaseErr := l.Release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()
	return fn()
}
