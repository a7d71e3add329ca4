package lock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLock(dir, ".targets2config.lock")

	assert.Equal(t, filepath.Join(dir, ".targets2config.lock"), l.Path())
	require.NoError(t, l.TryAcquire(context.Background(), TimeoutImmediate))
	assert.True(t, l.held)

	// Acquiring again through the same handle is a no-op.
	require.NoError(t, l.TryAcquire(context.Background(), TimeoutImmediate))

	require.NoError(t, l.Release())
	assert.False(t, l.held)
	require.NoError(t, l.Release())
}

func TestTryAcquireHeldElsewhere(t *testing.T) {
	dir := t.TempDir()
	external := flock.New(filepath.Join(dir, "run.lock"))
	locked, err := external.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = external.Unlock() }()

	t.Run("immediate", func(t *testing.T) {
		l := NewRunLock(dir, "run.lock")
		err := l.TryAcquire(context.Background(), TimeoutImmediate)
		assert.ErrorIs(t, err, ErrLocked)
		assert.False(t, l.held)
	})

	t.Run("with wait", func(t *testing.T) {
		l := NewRunLock(dir, "run.lock")
		err := l.TryAcquire(context.Background(), 150*time.Millisecond)
		assert.ErrorIs(t, err, ErrLocked)
	})
}

func TestTryAcquireAfterRelease(t *testing.T) {
	dir := t.TempDir()
	first := NewRunLock(dir, "run.lock")
	second := NewRunLock(dir, "run.lock")

	require.NoError(t, first.TryAcquire(context.Background(), TimeoutImmediate))
	require.ErrorIs(t, second.TryAcquire(context.Background(), TimeoutImmediate), ErrLocked)

	require.NoError(t, first.Release())
	require.NoError(t, second.TryAcquire(context.Background(), TimeoutShort))
	require.NoError(t, second.Release())
}

func TestWithLock(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLock(dir, "run.lock")
	other := NewRunLock(dir, "run.lock")

	called := false
	err := l.WithLock(context.Background(), TimeoutImmediate, func() error {
		called = true
		assert.ErrorIs(t, other.TryAcquire(context.Background(), TimeoutImmediate), ErrLocked)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, l.held)

	want := errors.New("conversion failed")
	err = l.WithLock(context.Background(), TimeoutImmediate, func() error { return want })
	assert.ErrorIs(t, err, want)
	assert.False(t, l.held)
}

func TestWithLockHeldElsewhere(t *testing.T) {
	dir := t.TempDir()
	holder := NewRunLock(dir, "run.lock")
	require.NoError(t, holder.TryAcquire(context.Background(), TimeoutImmediate))
	defer func() { _ = holder.Release() }()

	called := false
	err := NewRunLock(dir, "run.lock").WithLock(context.Background(), TimeoutImmediate, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, called)
}

func TestWithLockReleasesOnPanic(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLock(dir, "run.lock")

	assert.Panics(t, func() {
		_ = l.WithLock(context.Background(), TimeoutImmediate, func() error { panic("boom") })
	})
	assert.False(t, l.held)
	require.NoError(t, NewRunLock(dir, "run.lock").TryAcquire(context.Background(), TimeoutImmediate))
}
