package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RuntimeDirs holds the runtime paths shared by all netbuf invocations
// on a host:
//
//	{base}/             - runtime root
//	{base}/db/          - coordination store database
//	{base}/.lock        - host-wide allocation lock file
//
// RuntimeDirs is immutable after construction. Fields are unexported
// to prevent construction of invalid instances.
type RuntimeDirs struct {
	base string
	db   string
	lock string
}

// DefaultRuntimeDirs returns RuntimeDirs with production defaults.
// Panics if the default path is somehow invalid (should never happen).
func DefaultRuntimeDirs() RuntimeDirs {
	dirs, err := NewRuntimeDirs("/run/netbuf")
	if err != nil {
		panic(fmt.Sprintf("DefaultRuntimeDirs: %v", err))
	}
	return dirs
}

// NewRuntimeDirs creates RuntimeDirs rooted at the given base path.
// Returns an error if base is empty or not an absolute path.
func NewRuntimeDirs(base string) (RuntimeDirs, error) {
	if base == "" {
		return RuntimeDirs{}, fmt.Errorf("base path cannot be empty")
	}
	if !filepath.IsAbs(base) {
		return RuntimeDirs{}, fmt.Errorf("base path must be absolute, got %q", base)
	}
	return RuntimeDirs{
		base: base,
		db:   filepath.Join(base, "db"),
		lock: filepath.Join(base, ".lock"),
	}, nil
}

// Base returns the runtime root directory.
func (d RuntimeDirs) Base() string { return d.base }

// DB returns the database directory.
func (d RuntimeDirs) DB() string { return d.db }

// StateDB returns the path of the coordination store database file.
func (d RuntimeDirs) StateDB() string { return filepath.Join(d.db, "state.db") }

// LockFile returns the path of the allocation lock file.
func (d RuntimeDirs) LockFile() string { return d.lock }

// Ensure creates the runtime directories if they do not exist.
func (d RuntimeDirs) Ensure() error {
	for _, dir := range []string{d.base, d.db} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
