package manager

import (
	"context"
	"errors"

	"github.com/remuskit/netbuf"
	"github.com/remuskit/netbuf/store"
)

// Teardown releases everything setup installed for (iface, device).
// It tolerates partial prior state and repeated invocation: every step
// is attempted independently and failures are logged, never returned.
//
// The device is only released when the claim record for storePath
// still names exactly the given device. A mismatch means a later
// claimant now owns this interface path, and its device must not be
// touched. The interception point belongs to the interface, not the
// device, so its removal is attempted regardless.
func (m *Manager) Teardown(ctx context.Context, iface, storePath, device string) {
	logger := m.logger.With("iface", iface, "device", device)

	claimKey := netbuf.ClaimKey(storePath)
	claimed, err := m.store.Read(ctx, claimKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Info("no claim record, skipping device release", "path", storePath)
	case err != nil:
		logger.Warn("cannot read claim record, skipping device release", "error", err)
	case claimed != device:
		logger.Warn("claim record names a different device, skipping device release",
			"claimed", claimed)
	default:
		if err := m.net.SetLinkDown(ctx, device); err != nil {
			logger.Warn("failed to bring device down", "error", err)
		}
		if err := m.net.RemovePlug(ctx, device); err != nil {
			logger.Warn("failed to remove holding qdisc", "error", err)
		}
		if err := m.store.Delete(ctx, claimKey); err != nil {
			logger.Warn("failed to delete claim record", "error", err)
		} else {
			logger.Info("released buffering device", "path", storePath)
		}
	}

	if err := m.net.RemoveIngress(ctx, iface); err != nil {
		logger.Warn("failed to remove interception point", "error", err)
	}

	for _, key := range []string{netbuf.StatusKey(storePath), netbuf.ErrorKey(storePath)} {
		if err := m.store.Delete(ctx, key); err != nil {
			logger.Warn("failed to clear status key", "key", key, "error", err)
		}
	}
}
