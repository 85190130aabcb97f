// Package lock guards against two server processes sharing one lock file.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout is returned when another process holds the lock for
	// longer than the timeout.
	ErrLockTimeout = errors.New("timeout acquiring lock")
	// ErrPathRequired is returned when the lock path is empty.
	ErrPathRequired = errors.New("lock path is required")
)

const (
	// shortPollInterval is the interval to sleep when polling for a lock.
	shortPollInterval = 10 * time.Millisecond
)

// InstanceLock is an exclusive OS-level lock held for the life of the process.
type InstanceLock struct {
	Path  string
	flock *flock.Flock
}

// AcquireInstanceLock takes an exclusive lock on path, waiting up to timeout.
func AcquireInstanceLock(path string, timeout time.Duration) (*InstanceLock, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fileLock := flock.New(path)
	locked, err := fileLock.TryLockContext(ctx, shortPollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
		}
		return nil, fmt.Errorf("error acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
	}

	return &InstanceLock{Path: path, flock: fileLock}, nil
}

// Release unlocks the file. It is safe to call more than once.
func (l *InstanceLock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.Path, err)
	}
	return nil
}
