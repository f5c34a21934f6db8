package manager

import (
	"context"
	"fmt"

	"github.com/remuskit/netbuf"
	"github.com/remuskit/netbuf/lock"
)

// Setup claims a free buffering device for iface and wires guest
// egress into it. On success the claimed device name is returned and
// the interface's status key reads "connected".
//
// Failure handling depends on how far setup got:
//   - before a claim exists (lock timeout, pool exhausted): nothing to
//     roll back;
//   - after the claim: kernel steps taken in this request are rolled
//     back in reverse order, but the claim and the device stay owned.
//     Only an explicit teardown frees them.
//
// Fatal errors are also recorded under the interface's error key for
// the control plane.
func (m *Manager) Setup(ctx context.Context, iface, storePath string) (string, error) {
	device, err := m.allocateUnderLock(ctx, storePath)
	if err != nil {
		m.recordError(ctx, storePath, err)
		return "", err
	}

	logger := m.logger.With("iface", iface, "device", device)

	var undo undoStack
	if err := m.installRedirection(ctx, iface, device, &undo); err != nil {
		undo.rollback(ctx, logger)
		m.recordError(ctx, storePath, err)
		return "", err
	}

	if err := m.installQueue(ctx, device, &undo); err != nil {
		undo.rollback(ctx, logger)
		m.recordError(ctx, storePath, err)
		return "", err
	}

	if err := m.store.Delete(ctx, netbuf.ErrorKey(storePath)); err != nil {
		logger.Warn("failed to clear stale error key", "error", err)
	}
	if err := m.store.Write(ctx, netbuf.StatusKey(storePath), netbuf.StatusConnected); err != nil {
		logger.Warn("failed to write status key", "error", err)
	}

	logger.Info("egress buffering active", "path", storePath)
	return device, nil
}

// allocateUnderLock runs allocation inside the host-wide lock with the
// configured acquisition bound.
func (m *Manager) allocateUnderLock(ctx context.Context, storePath string) (string, error) {
	lockCtx, cancel := context.WithTimeout(ctx, m.cfg.Lock.AcquireTimeout.Std())
	defer cancel()

	var device string
	err := lock.Run(lockCtx, m.dirs.LockFile(), func(ctx context.Context) error {
		d, err := m.allocate(ctx, storePath)
		if err != nil {
			return err
		}
		device = d
		return nil
	})
	if err != nil {
		return "", err
	}
	return device, nil
}

// installRedirection attaches the interception point to iface and a
// redirect filter into device. If the filter fails the interception
// point is removed before the error surfaces; the interface must not
// be left half-configured and dropping traffic.
func (m *Manager) installRedirection(ctx context.Context, iface, device string, undo *undoStack) error {
	if err := m.net.AddIngress(ctx, iface); err != nil {
		return fmt.Errorf("install interception on %s: %w", iface, err)
	}
	undo.push(func(ctx context.Context) error {
		return m.net.RemoveIngress(ctx, iface)
	})

	if err := m.net.AddRedirect(ctx, iface, device); err != nil {
		return fmt.Errorf("install redirection %s -> %s: %w", iface, device, err)
	}
	undo.push(func(ctx context.Context) error {
		return m.net.RemoveRedirect(ctx, iface)
	})

	m.logger.Debug("redirection installed", "iface", iface, "device", device)
	return nil
}

// installQueue installs the holding qdisc on device and requests the
// configured capacity. The base install is required; the capacity
// tuning is best-effort, since the qdisc functions with its default
// limit.
func (m *Manager) installQueue(ctx context.Context, device string, undo *undoStack) error {
	if err := m.net.AddPlug(ctx, device); err != nil {
		return fmt.Errorf("install holding qdisc on %s: %w", device, err)
	}
	undo.push(func(ctx context.Context) error {
		return m.net.RemovePlug(ctx, device)
	})

	limit := m.cfg.Pool.QueueCapacityBytes
	if err := m.net.SetPlugLimit(ctx, device, limit); err != nil {
		m.logger.Warn("queue capacity tuning failed, using qdisc default",
			"device", device, "limit", limit, "error", err)
	}

	m.logger.Debug("holding qdisc installed", "device", device, "limit", limit)
	return nil
}

// recordError writes the fatal setup error to the interface's error
// key. Best-effort: the error is surfacing to the caller regardless.
func (m *Manager) recordError(ctx context.Context, storePath string, cause error) {
	if err := m.store.Write(ctx, netbuf.ErrorKey(storePath), cause.Error()); err != nil {
		m.logger.Warn("failed to record error key", "path", storePath, "error", err)
	}
}
