package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/remuskit/netbuf"
	"github.com/remuskit/netbuf/store"
)

// allocate selects a free buffering device, writes the claim record
// for storePath and brings the device up. It must run under the
// allocation lock: two concurrent setups scanning the same free list
// could otherwise both select a device before either records its
// claim. The claim write and link-up happen before the lock is
// released so the next contender's scan observes them.
func (m *Manager) allocate(ctx context.Context, storePath string) (string, error) {
	devices, err := m.net.ListPoolDevices(ctx, m.cfg.Pool.DevicePrefix)
	if err != nil {
		return "", fmt.Errorf("enumerate device pool: %w", err)
	}

	device, err := m.selectFreeDevice(ctx, storePath, devices)
	if err != nil {
		return "", err
	}

	claimKey := netbuf.ClaimKey(storePath)
	if err := m.store.Write(ctx, claimKey, device); err != nil {
		return "", fmt.Errorf("write claim record: %w", err)
	}

	if err := m.net.SetLinkUp(ctx, device); err != nil {
		// Still under the lock and nothing else is installed yet, so
		// the claim can be unwound here.
		if derr := m.store.Delete(ctx, claimKey); derr != nil {
			m.logger.Error("failed to unwind claim record", "key", claimKey, "error", derr)
		}
		return "", fmt.Errorf("bring %s up: %w", device, err)
	}

	m.logger.Info("claimed buffering device", "device", device, "path", storePath)
	return device, nil
}

// selectFreeDevice returns the first candidate that neither the kernel
// nor any live claim record says is in use.
//
// The kernel check covers devices claimed outside this coordination
// mechanism or left configured by a crashed owner; the claim scan
// covers devices claimed but not yet configured. A device with no
// installed qdisc is taken as unused without further liveness
// verification.
func (m *Manager) selectFreeDevice(ctx context.Context, storePath string, devices []string) (string, error) {
	claimed, err := m.claimedDevices(ctx, storePath)
	if err != nil {
		return "", err
	}

	for _, device := range devices {
		busy, err := m.net.DeviceBusy(ctx, device)
		if err != nil {
			m.logger.Warn("cannot inspect device, skipping", "device", device, "error", err)
			continue
		}
		if busy {
			m.logger.Debug("device has a qdisc installed, skipping", "device", device)
			continue
		}
		if owner, ok := claimed[device]; ok {
			m.logger.Debug("device named by a claim record, skipping", "device", device, "owner", owner)
			continue
		}
		return device, nil
	}

	return "", netbuf.PoolExhaustedError{
		Prefix:     m.cfg.Pool.DevicePrefix,
		Candidates: len(devices),
	}
}

// claimedDevices scans every peer interface's claim record and returns
// device -> owning path. The caller's own path is excluded so a
// re-run after a partial failure can re-select its previous device.
func (m *Manager) claimedDevices(ctx context.Context, storePath string) (map[string]string, error) {
	keys, err := m.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("scan claim records: %w", err)
	}

	own := netbuf.ClaimKey(storePath)
	claimed := make(map[string]string)
	for _, key := range keys {
		if !netbuf.IsClaimKey(key) || key == own {
			continue
		}
		device, err := m.store.Read(ctx, key)
		if err != nil {
			// Deleted between list and read; no longer a claim.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("read claim record %s: %w", key, err)
		}
		claimed[device] = netbuf.OwnerPath(key)
	}
	return claimed, nil
}
