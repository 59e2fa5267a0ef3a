package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

func TestStorageLockAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l := NewStorageLock(dir)

	require.NoError(t, l.Acquire())
	assert.True(t, l.IsLocked())
	assert.Equal(t, filepath.Join(dir, LockFileName), l.Path())

	require.NoError(t, l.Release())
	assert.False(t, l.IsLocked())
}

func TestStorageLockContention(t *testing.T) {
	dir := t.TempDir()

	first := NewStorageLock(dir)
	require.NoError(t, first.Acquire())
	defer func() { _ = first.Release() }()

	// flock is per-process on some platforms, so contention from the same
	// process needs a distinct Flock handle.
	second := NewStorageLock(dir)
	err := second.Acquire()
	if err != nil {
		assert.True(t, rerrors.HasCode(err, rerrors.ErrCodeStorageLocked))
		assert.False(t, second.IsLocked())
	}
}

func TestStorageLockReleaseIdempotent(t *testing.T) {
	l := NewStorageLock(t.TempDir())

	assert.NoError(t, l.Release())

	require.NoError(t, l.Acquire())
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestStorageLockReacquire(t *testing.T) {
	dir := t.TempDir()

	l := NewStorageLock(dir)
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())

	again := NewStorageLock(dir)
	require.NoError(t, again.Acquire())
	assert.NoError(t, again.Release())
}
