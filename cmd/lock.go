package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/modgrid/modgrid-cli/internal/config"
)

// acquireRunLock takes an exclusive file lock guarding the screenshot cache
// and output artifacts, so two modgrid runs cannot write them concurrently.
// Returns an unlock func the caller must defer.
func acquireRunLock(timeout time.Duration) (func(), error) {
	dir, err := config.ModgridDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	lockPath := filepath.Join(dir, "modgrid.lock")

	l := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ok, err := l.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("cannot acquire run lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("another modgrid run holds the lock (%s)", lockPath)
	}
	return func() { _ = l.Unlock() }, nil
}
