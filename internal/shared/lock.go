package shared

import (
	"fmt"

	"github.com/gofrs/flock"
)

// RunLock is an exclusive advisory lock held next to the database file while a command writes to it.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock returns an unacquired lock for the database at dbPath.
func NewRunLock(dbPath string) *RunLock {
	path := dbPath + ".lock"
	return &RunLock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking. Returns [ErrLocked] when another process holds it.
func (l *RunLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, l.path)
	}
	return nil
}

// Release unlocks the file. Safe to call when the lock was never acquired.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}
