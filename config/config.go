// Package config handles netbuf configuration.
//
// Configuration is loaded with overlay semantics:
//
//  1. Start with built-in defaults (embedded via go:embed from default.toml)
//  2. Overlay with config file values (if the file exists)
//  3. CLI flags and environment variables override at runtime (CLI layer)
//
// The TOML decoder only sets fields present in the file, leaving
// unspecified fields at their default values. A missing config file is
// not an error; an invalid one is.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultConfigTOML string

// DefaultConfigPath is the default path to the netbuf config file.
const DefaultConfigPath = "/etc/netbuf/netbuf.toml"

// Config is the top-level netbuf configuration.
type Config struct {
	Pool    PoolConfig    `toml:"pool"`
	Lock    LockConfig    `toml:"lock"`
	Logging LoggingConfig `toml:"logging"`
}

// PoolConfig describes the buffering-device pool.
type PoolConfig struct {
	// DevicePrefix is the naming prefix of pool devices (e.g. "ifb"
	// matches ifb0, ifb1, ...). Devices are discovered by name, never
	// created by netbuf.
	DevicePrefix string `toml:"device_prefix"`

	// QueueCapacityBytes is the requested byte limit for the holding
	// qdisc installed on a claimed device.
	QueueCapacityBytes uint32 `toml:"queue_capacity_bytes"`
}

// LockConfig controls the host-wide allocation lock.
type LockConfig struct {
	// AcquireTimeout bounds the wait for the lock. A hotplug event
	// must fail rather than block indefinitely.
	AcquireTimeout Duration `toml:"acquire_timeout"`
}

// LoggingConfig controls logging behaviour.
type LoggingConfig struct {
	// Level is the log spec (e.g. "info" or "info,manager=debug").
	Level string `toml:"level"`
	// Format is the output format: "text" or "json".
	Format string `toml:"format"`
}

// Duration is a time.Duration that unmarshals from TOML strings such
// as "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the configuration from the embedded
// default.toml. This provides a valid baseline that is always
// available.
func DefaultConfig() Config {
	var cfg Config
	if _, err := toml.Decode(defaultConfigTOML, &cfg); err != nil {
		// default.toml is embedded at build time; if it cannot be
		// decoded, fall back to a minimal safe config.
		return Config{
			Pool:    PoolConfig{DevicePrefix: "ifb", QueueCapacityBytes: 10000000},
			Lock:    LockConfig{AcquireTimeout: Duration(10 * time.Second)},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}
	return cfg
}

// Load reads configuration from a file path with overlay semantics.
//
// Behaviour:
//   - File missing: returns default configuration (no error)
//   - File exists and valid: overlays file values onto defaults
//   - File exists but invalid: returns error (fail fast)
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Pool.DevicePrefix == "" {
		return fmt.Errorf("pool.device_prefix must not be empty")
	}
	if c.Lock.AcquireTimeout <= 0 {
		return fmt.Errorf("lock.acquire_timeout must be positive")
	}
	return nil
}
