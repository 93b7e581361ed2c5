package auth

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/sptty/internal/filelock"
)

// DefaultLockTimeout bounds how long [TokenCache.Update] waits for another process.
const DefaultLockTimeout = 10 * time.Second

// TokenCache persists an [AccessTokenRecord] as JSON at a fixed path.
type TokenCache struct {
	path        string
	lock        *filelock.FileLock
	lockTimeout time.Duration
}

// NewTokenCache creates a cache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{
		path:        path,
		lock:        filelock.New(path),
		lockTimeout: DefaultLockTimeout,
	}
}

// SetStaleLockAge changes how old an abandoned lock file must be before [TokenCache.Update] breaks it.
// Zero waits for the holder however old the lock is.
func (c *TokenCache) SetStaleLockAge(d time.Duration) {
	c.lock.SetStaleAfter(d)
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads the cached record. A missing file yields nil with no error.
func (c *TokenCache) Load() (*AccessTokenRecord, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &CacheError{Path: c.path, Err: err}
	}

	var rec AccessTokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CacheError{Path: c.path, Err: err}
	}
	return &rec, nil
}

// Store replaces the cache file atomically with rec.
func (c *TokenCache) Store(rec *AccessTokenRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &CacheError{Path: c.path, Err: err}
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &CacheError{Path: c.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return &CacheError{Path: c.path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &CacheError{Path: c.path, Err: err}
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return &CacheError{Path: c.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &CacheError{Path: c.path, Err: err}
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return &CacheError{Path: c.path, Err: err}
	}
	return nil
}

// Update runs fn on the cached record while holding the cache lock.
//
// A nil record from fn leaves the file untouched.
func (c *TokenCache) Update(fn func(*AccessTokenRecord) (*AccessTokenRecord, error)) error {
	return c.lock.WithLock(c.lockTimeout, func() error {
		rec, err := c.Load()
		if err != nil {
			return err
		}

		next, err := fn(rec)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return c.Store(next)
	})
}

// Clear removes the cache file. Clearing an empty cache is not an error.
func (c *TokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &CacheError{Path: c.path, Err: err}
	}
	return nil
}
