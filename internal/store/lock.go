package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

// LockFileName guards the storage directory against concurrent writers.
const LockFileName = ".ragdex.lock"

// StorageLock provides cross-process exclusion for a storage directory using
// gofrs/flock. The metadata file and vector index are single-writer; a second
// process mutating them concurrently would corrupt both.
// Works on all platforms (Unix, Linux, macOS, Windows).
type StorageLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewStorageLock creates a lock for the given storage directory. The lock
// file lives at <dir>/.ragdex.lock.
func NewStorageLock(dir string) *StorageLock {
	lockPath := filepath.Join(dir, LockFileName)
	return &StorageLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Acquire takes the lock without blocking. A lock held by another process
// yields ERR_204_STORAGE_LOCKED so callers can report which directory is
// contended.
func (l *StorageLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire storage lock: %w", err)
	}
	if !acquired {
		return rerrors.New(rerrors.ErrCodeStorageLocked,
			"storage directory is in use by another process").
			WithDetail("path", filepath.Dir(l.path))
	}

	l.locked = true
	return nil
}

// Release drops the lock. Safe to call multiple times or when unheld.
func (l *StorageLock) Release() error {
	if !l.locked {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return fmt.Errorf("failed to release storage lock: %w", err)
	}

	l.locked = false
	return nil
}

// Path returns the lock file location.
func (l *StorageLock) Path() string {
	return l.path
}

// IsLocked reports whether this process holds the lock.
func (l *StorageLock) IsLocked() bool {
	return l.locked
}
