package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/remuskit/netbuf"
	"github.com/remuskit/netbuf/store"
)

// DeviceStatus describes one pool device.
type DeviceStatus struct {
	// Name is the device name.
	Name string
	// Busy reports whether the kernel shows a qdisc installed.
	Busy bool
	// Owner is the coordination path whose claim record names this
	// device, empty if unclaimed.
	Owner string
}

// Report is an operator's view of the pool.
type Report struct {
	Devices []DeviceStatus
	// Orphans are claim records naming devices not present in the
	// pool (renamed, removed, or claimed on another naming scheme).
	Orphans map[string]string // owner path -> device
}

// Status reports every pool device with its kernel busy state and
// claim owner. Reads are unlocked; the report is a snapshot, not a
// serialized view.
func (m *Manager) Status(ctx context.Context) (Report, error) {
	devices, err := m.net.ListPoolDevices(ctx, m.cfg.Pool.DevicePrefix)
	if err != nil {
		return Report{}, fmt.Errorf("enumerate device pool: %w", err)
	}

	owners, err := m.claimOwners(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Orphans: make(map[string]string)}
	inPool := make(map[string]bool, len(devices))
	for _, device := range devices {
		inPool[device] = true
		busy, err := m.net.DeviceBusy(ctx, device)
		if err != nil {
			m.logger.Warn("cannot inspect device", "device", device, "error", err)
		}
		report.Devices = append(report.Devices, DeviceStatus{
			Name:  device,
			Busy:  busy,
			Owner: owners[device],
		})
	}

	for device, owner := range owners {
		if !inPool[device] {
			report.Orphans[owner] = device
		}
	}
	return report, nil
}

// claimOwners returns device -> owning coordination path for every
// live claim record.
func (m *Manager) claimOwners(ctx context.Context) (map[string]string, error) {
	keys, err := m.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("scan claim records: %w", err)
	}

	owners := make(map[string]string)
	for _, key := range keys {
		if !netbuf.IsClaimKey(key) {
			continue
		}
		device, err := m.store.Read(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("read claim record %s: %w", key, err)
		}
		owners[device] = netbuf.OwnerPath(key)
	}
	return owners, nil
}
