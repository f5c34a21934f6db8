// Package store defines the coordination store shared by all netbuf
// invocations on a host.
//
// The store is a hierarchical key/value namespace. Keys are
// slash-separated paths scoped by the owning VM and device index
// (e.g. "/vif/7/0/ifb"). It offers no transactions; the only
// cross-invocation exclusion in the system is the allocation lock, and
// writes for a given interface path are performed only by the
// invocation currently responsible for that interface's lifecycle.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store provides typed access to the coordination namespace.
// Implementations must be safe for concurrent use from multiple
// processes or goroutines.
type Store interface {
	// Read returns the value at key. Returns an error wrapping
	// ErrNotFound if the key does not exist.
	Read(ctx context.Context, key string) (string, error)

	// Write sets the value at key, creating it if necessary.
	Write(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys with the given path prefix, sorted. An
	// empty prefix lists every key.
	List(ctx context.Context, prefix string) ([]string, error)
}
