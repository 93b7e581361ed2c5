// Package filelock serializes access to a file across processes with an exclusive lock file.
package filelock

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/sptty/internal/shared"
)

const (
	pollInterval = 10 * time.Millisecond

	// DefaultStaleAfter is the age after which a lock file is assumed to belong to a crashed process.
	DefaultStaleAfter = 2 * time.Minute
)

// FileLock guards path by creating path+".lock" with O_EXCL.
type FileLock struct {
	path       string
	staleAfter time.Duration
	file       *os.File
	acquired   bool
	mu         sync.Mutex
}

// New creates a lock for the file at path.
func New(path string) *FileLock {
	return &FileLock{
		path:       path + ".lock",
		staleAfter: DefaultStaleAfter,
	}
}

// Path returns the lock file location.
func (fl *FileLock) Path() string {
	return fl.path
}

// SetStaleAfter changes how old an abandoned lock file must be before it is broken. Zero never breaks locks.
func (fl *FileLock) SetStaleAfter(d time.Duration) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.staleAfter = d
}

// Lock acquires the lock, polling until timeout elapses.
func (fl *FileLock) Lock(timeout time.Duration) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.acquired {
		return fmt.Errorf("lock already acquired")
	}

	if err := shared.EnsureDir(fl.path, 0o700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		file, err := os.OpenFile(fl.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			_, _ = file.WriteString(strconv.Itoa(os.Getpid()))
			fl.file = file
			fl.acquired = true
			return nil
		}

		if !os.IsExist(err) {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}

		if fl.breakStale() {
			continue
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s after %v", shared.ErrLockTimeout, fl.path, timeout)
		}
		time.Sleep(pollInterval)
	}
}

// breakStale removes a lock file older than staleAfter and reports whether it did.
func (fl *FileLock) breakStale() bool {
	if fl.staleAfter <= 0 {
		return false
	}
	info, err := os.Stat(fl.path)
	if err != nil || time.Since(info.ModTime()) < fl.staleAfter {
		return false
	}
	return os.Remove(fl.path) == nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (fl *FileLock) Unlock() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if !fl.acquired {
		return nil
	}

	var err error
	if fl.file != nil {
		err = fl.file.Close()
		fl.file = nil
	}

	if removeErr := os.Remove(fl.path); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = fmt.Errorf("failed to remove lock file: %w", removeErr)
	}

	fl.acquired = false
	return err
}

// WithLock executes fn while holding the lock.
func (fl *FileLock) WithLock(timeout time.Duration, fn func() error) error {
	if err := fl.Lock(timeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}
