package filelock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/sptty/internal/shared"
)

func TestFileLock(t *testing.T) {
	t.Run("Lock And Unlock", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "sub", "token")
		fl := New(target)

		if err := fl.Lock(time.Second); err != nil {
			t.Fatalf("expected lock to be acquired, got %v", err)
		}
		if _, err := os.Stat(fl.Path()); err != nil {
			t.Fatalf("expected lock file to exist: %v", err)
		}

		if err := fl.Unlock(); err != nil {
			t.Fatalf("expected unlock to succeed, got %v", err)
		}
		if _, err := os.Stat(fl.Path()); !os.IsNotExist(err) {
			t.Errorf("expected lock file to be removed, got %v", err)
		}

		if err := fl.Unlock(); err != nil {
			t.Errorf("expected second unlock to be a no-op, got %v", err)
		}
	})

	t.Run("Double Lock", func(t *testing.T) {
		fl := New(filepath.Join(t.TempDir(), "token"))
		if err := fl.Lock(time.Second); err != nil {
			t.Fatalf("expected lock to be acquired, got %v", err)
		}
		defer fl.Unlock()

		if err := fl.Lock(time.Second); err == nil {
			t.Error("expected error when locking twice")
		}
	})

	t.Run("Contention Times Out", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "token")
		holder := New(target)
		if err := holder.Lock(time.Second); err != nil {
			t.Fatalf("expected lock to be acquired, got %v", err)
		}
		defer holder.Unlock()

		contender := New(target)
		err := contender.Lock(50 * time.Millisecond)
		if !errors.Is(err, shared.ErrLockTimeout) {
			t.Errorf("expected ErrLockTimeout, got %v", err)
		}
	})

	t.Run("Breaks Stale Lock", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "token")
		fl := New(target)
		if err := os.WriteFile(fl.Path(), []byte("999999"), 0o600); err != nil {
			t.Fatalf("failed to write lock file: %v", err)
		}
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(fl.Path(), old, old); err != nil {
			t.Fatalf("failed to age lock file: %v", err)
		}

		if err := fl.Lock(50 * time.Millisecond); err != nil {
			t.Fatalf("expected stale lock to be broken, got %v", err)
		}
		fl.Unlock()
	})

	t.Run("WithLock", func(t *testing.T) {
		fl := New(filepath.Join(t.TempDir(), "token"))
		called := false

		err := fl.WithLock(time.Second, func() error {
			called = true
			if _, err := os.Stat(fl.Path()); err != nil {
				t.Errorf("expected lock file while fn runs: %v", err)
			}
			return errors.New("boom")
		})

		if !called {
			t.Error("expected fn to be called")
		}
		if err == nil || err.Error() != "boom" {
			t.Errorf("expected fn error to propagate, got %v", err)
		}
		if _, err := os.Stat(fl.Path()); !os.IsNotExist(err) {
			t.Errorf("expected lock to be released after fn, got %v", err)
		}
	})
}
