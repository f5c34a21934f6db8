package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remuskit/netbuf/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "ifb", cfg.Pool.DevicePrefix)
	assert.Equal(t, uint32(10000000), cfg.Pool.QueueCapacityBytes)
	assert.Equal(t, 10*time.Second, cfg.Lock.AcquireTimeout.Std())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "ifb", cfg.Pool.DevicePrefix)
}

func TestLoadOverlaysFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netbuf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[pool]
device_prefix = "nbuf"

[lock]
acquire_timeout = "250ms"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nbuf", cfg.Pool.DevicePrefix)
	assert.Equal(t, 250*time.Millisecond, cfg.Lock.AcquireTimeout.Std())
	// Unspecified fields keep their defaults.
	assert.Equal(t, uint32(10000000), cfg.Pool.QueueCapacityBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadInvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netbuf.toml")
	require.NoError(t, os.WriteFile(path, []byte("not toml ["), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pool.DevicePrefix = ""
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Lock.AcquireTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestRuntimeDirs(t *testing.T) {
	_, err := config.NewRuntimeDirs("")
	assert.Error(t, err)

	_, err = config.NewRuntimeDirs("relative/path")
	assert.Error(t, err)

	base := t.TempDir()
	dirs, err := config.NewRuntimeDirs(base)
	require.NoError(t, err)

	assert.Equal(t, base, dirs.Base())
	assert.Equal(t, filepath.Join(base, "db"), dirs.DB())
	assert.Equal(t, filepath.Join(base, "db", "state.db"), dirs.StateDB())
	assert.Equal(t, filepath.Join(base, ".lock"), dirs.LockFile())

	require.NoError(t, dirs.Ensure())
	info, err := os.Stat(dirs.DB())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
