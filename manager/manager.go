// Package manager orchestrates the buffering-device lifecycle.
//
// # Setup
//
// A setup request acquires the host-wide allocation lock, selects a
// free device, records the claim and brings the device up, releases
// the lock, then installs interception + redirection on the source
// interface and the holding qdisc on the device. Failures after the
// claim roll back the kernel steps taken in the same request but
// deliberately leave the claim in place: only teardown has the full
// procedure to free a device consistently.
//
// # Teardown
//
// Teardown needs no lock. It is driven entirely by observed state,
// safe to invoke any number of times, and never fails loudly: each
// step is attempted independently and failures are logged, because
// teardown is the last line of cleanup and must not become a new
// failure mode.
package manager

import (
	"log/slog"

	"github.com/remuskit/netbuf/config"
	"github.com/remuskit/netbuf/netcfg"
	"github.com/remuskit/netbuf/store"
)

// Manager coordinates the coordination store, the allocation lock and
// the kernel configuration surface.
type Manager struct {
	cfg    config.Config
	dirs   config.RuntimeDirs
	store  store.Store
	net    netcfg.Configurator
	logger *slog.Logger
}

// New creates a Manager.
func New(cfg config.Config, dirs config.RuntimeDirs, st store.Store, net netcfg.Configurator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		dirs:   dirs,
		store:  st,
		net:    net,
		logger: logger.With("component", "manager"),
	}
}
