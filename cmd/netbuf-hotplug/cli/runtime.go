package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/remuskit/netbuf/config"
	"github.com/remuskit/netbuf/logging"
	"github.com/remuskit/netbuf/manager"
	"github.com/remuskit/netbuf/netcfg"
	"github.com/remuskit/netbuf/store/sqlite"
)

// runtime bundles the wired components a command needs.
type runtime struct {
	cfg    config.Config
	dirs   config.RuntimeDirs
	logger *slog.Logger
	store  *sqlite.Store
	mgr    *manager.Manager
}

// newRuntime loads configuration, opens the shared store and wires the
// manager against the host's netlink interface.
func (c *CLI) newRuntime() (*runtime, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		CLISpec:    c.Log,
		EnvSpec:    os.Getenv(logging.EnvVar),
		ConfigSpec: cfg.Logging.Level,
		Format:     format,
	})
	if err != nil {
		return nil, err
	}

	dirs, err := config.NewRuntimeDirs(c.RunDir)
	if err != nil {
		return nil, err
	}
	if err := dirs.Ensure(); err != nil {
		return nil, err
	}

	st, err := sqlite.New(dirs.StateDB())
	if err != nil {
		return nil, fmt.Errorf("open coordination store: %w", err)
	}

	net := netcfg.NewNetlink(logger)
	return &runtime{
		cfg:    cfg,
		dirs:   dirs,
		logger: logger,
		store:  st,
		mgr:    manager.New(cfg, dirs, st, net, logger),
	}, nil
}

// Close releases runtime resources.
func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("failed to close store", "error", err)
	}
}
