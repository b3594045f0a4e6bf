package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	DefaultLockFile = ".job-router.lock"
	lockRetryDelay  = 250 * time.Millisecond
)

var ErrLocked = errors.New("another run holds the lock")

// Lock serializes runs against the same sink.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock at path, waiting until ctx is done. With a
// zero wait it gives up immediately.
func AcquireLock(ctx context.Context, path string, wait time.Duration) (*Lock, error) {
	if path == "" {
		path = DefaultLockFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating lock dir: %w", err)
		}
	}

	fl := flock.New(path)

	var (
		locked bool
		err    error
	)
	if wait <= 0 {
		locked, err = fl.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		locked, err = fl.TryLockContext(waitCtx, lockRetryDelay)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
