package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/remuskit/netbuf"
	"github.com/remuskit/netbuf/lock"
	"github.com/remuskit/netbuf/store"
)

// Severity indicates the severity of a doctor finding.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Finding describes a single coherency check result.
type Finding struct {
	Severity    Severity
	Category    string
	Description string
}

// DoctorReport contains the results of a coherency check.
type DoctorReport struct {
	Findings []Finding
	// Fixed lists claim keys that were deleted (fix mode only).
	Fixed []string
}

// HasWarnings reports whether any finding has warning severity or
// worse.
func (r DoctorReport) HasWarnings() bool {
	for _, f := range r.Findings {
		if f.Severity >= SeverityWarning {
			return true
		}
	}
	return false
}

// Doctor cross-checks claim records against kernel device state.
//
// A claim whose device carries no qdisc is stale: the owner recorded
// the claim but crashed or was killed before (or after partially)
// configuring the device, and teardown never ran. Stale claims shrink
// the usable pool until cleared. With fix set, stale claims are
// re-verified and deleted under the allocation lock so the check
// cannot race a setup that is between claiming and plugging.
func (m *Manager) Doctor(ctx context.Context, fix bool) (DoctorReport, error) {
	var report DoctorReport

	stale, findings, err := m.findStaleClaims(ctx)
	if err != nil {
		return report, err
	}
	report.Findings = findings

	if !fix || len(stale) == 0 {
		if len(report.Findings) == 0 {
			report.Findings = append(report.Findings, Finding{
				Severity:    SeverityOK,
				Category:    "claims",
				Description: "all claim records match kernel state",
			})
		}
		return report, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, m.cfg.Lock.AcquireTimeout.Std())
	defer cancel()

	err = lock.Run(lockCtx, m.dirs.LockFile(), func(ctx context.Context) error {
		for _, key := range stale {
			// Re-verify under the lock; the owner may have progressed.
			confirmed, err := m.claimStale(ctx, key)
			if err != nil {
				return err
			}
			if !confirmed {
				continue
			}
			if err := m.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete stale claim %s: %w", key, err)
			}
			m.logger.Info("cleared stale claim record", "key", key)
			report.Fixed = append(report.Fixed, key)
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

// findStaleClaims returns the keys of claims referencing idle or
// missing devices, plus findings describing them.
func (m *Manager) findStaleClaims(ctx context.Context) ([]string, []Finding, error) {
	keys, err := m.store.List(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("scan claim records: %w", err)
	}

	var stale []string
	var findings []Finding
	for _, key := range keys {
		if !netbuf.IsClaimKey(key) {
			continue
		}
		isStale, err := m.claimStale(ctx, key)
		if err != nil {
			return nil, nil, err
		}
		if !isStale {
			continue
		}
		device, _ := m.store.Read(ctx, key)
		stale = append(stale, key)
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: "stale-claim",
			Description: fmt.Sprintf("%s claims %s but the device has no qdisc installed",
				netbuf.OwnerPath(key), device),
		})
	}
	return stale, findings, nil
}

// claimStale reports whether the claim at key names a device the
// kernel considers unused. A vanished claim is not stale; it is gone.
func (m *Manager) claimStale(ctx context.Context, key string) (bool, error) {
	device, err := m.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read claim record %s: %w", key, err)
	}

	busy, err := m.net.DeviceBusy(ctx, device)
	if err != nil {
		// Device missing entirely also means the claim is dead weight,
		// but leave that to the operator; only idle devices are safe
		// to reclaim automatically.
		m.logger.Warn("cannot inspect claimed device", "device", device, "error", err)
		return false, nil
	}
	return !busy, nil
}
