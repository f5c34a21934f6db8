// Package lock provides the host-wide advisory lock that serializes
// buffering-device selection across concurrent hotplug invocations.
//
// The lock is an flock(2) on a well-known file under the runtime
// directory. It guards only the free-device scan and the claim-record
// write: once a claim is recorded, the caller owns its device pair
// exclusively and needs no further exclusion.
//
// The lock is advisory and trusted. It is not enforced by the kernel
// against processes that bypass this package.
package lock

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Run acquires the lock at path, executes fn, then releases. Release
// is implicit in closing the file descriptor, so it cannot be
// forgotten or doubled.
//
// Acquisition polls LOCK_EX|LOCK_NB with exponential backoff and
// honours ctx cancellation; callers bound the wait by passing a
// context with a deadline. A deadline expiry surfaces as ctx.Err().
func Run(ctx context.Context, path string, fn func(context.Context) error) error {
	f, err := acquire(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(ctx)
}

// acquire opens the lock file and obtains an exclusive lock.
func acquire(ctx context.Context, path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	backoff := 25 * time.Millisecond
	const maxBackoff = 500 * time.Millisecond

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return f, nil
		}
		if err != unix.EWOULDBLOCK {
			f.Close()
			return nil, fmt.Errorf("flock %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, fmt.Errorf("waiting for lock %s: %w", path, ctx.Err())
		case <-time.After(backoff):
		}

		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}
