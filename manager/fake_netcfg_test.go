package manager_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// netOp records an operation performed on the fake kernel surface.
type netOp struct {
	Op     string // e.g. "link-up", "add-ingress", "add-redirect", "add-plug"
	Iface  string
	Device string
}

// fakeNet implements netcfg.Configurator for testing. It tracks the
// state a real kernel would hold (link state, qdiscs, filters) without
// any syscalls, records every operation, and supports error injection
// keyed by operation name or "operation:target".
type fakeNet struct {
	mu        sync.Mutex
	pool      []string
	busy      map[string]bool   // device has a qdisc installed
	up        map[string]bool   // device admin state
	ingress   map[string]bool   // iface has the interception qdisc
	redirect  map[string]string // iface -> redirect target device
	plugLimit map[string]uint32

	ops    []netOp
	failOn map[string]error
}

func newFakeNet(pool ...string) *fakeNet {
	return &fakeNet{
		pool:      pool,
		busy:      make(map[string]bool),
		up:        make(map[string]bool),
		ingress:   make(map[string]bool),
		redirect:  make(map[string]string),
		plugLimit: make(map[string]uint32),
		failOn:    make(map[string]error),
	}
}

// FailOn injects an error for an operation. The key is either the
// operation name ("add-plug") or operation:target ("link-up:ifb1").
func (f *fakeNet) FailOn(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[key] = err
}

func (f *fakeNet) injected(op, target string) error {
	if err, ok := f.failOn[op+":"+target]; ok {
		return err
	}
	return f.failOn[op]
}

func (f *fakeNet) record(op, iface, device string) {
	f.ops = append(f.ops, netOp{Op: op, Iface: iface, Device: device})
}

// Ops returns a copy of the recorded operations.
func (f *fakeNet) Ops() []netOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]netOp, len(f.ops))
	copy(ops, f.ops)
	return ops
}

// OpNames returns just the operation names, in order.
func (f *fakeNet) OpNames() []string {
	ops := f.Ops()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Op
	}
	return names
}

func (f *fakeNet) ListPoolDevices(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected("list-pool", ""); err != nil {
		return nil, err
	}
	var devices []string
	for _, d := range f.pool {
		if strings.HasPrefix(d, prefix) {
			devices = append(devices, d)
		}
	}
	sort.Strings(devices)
	return devices, nil
}

func (f *fakeNet) DeviceBusy(_ context.Context, device string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected("device-busy", device); err != nil {
		return false, err
	}
	return f.busy[device], nil
}

func (f *fakeNet) SetLinkUp(_ context.Context, device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("link-up", "", device)
	if err := f.injected("link-up", device); err != nil {
		return err
	}
	f.up[device] = true
	return nil
}

func (f *fakeNet) SetLinkDown(_ context.Context, device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("link-down", "", device)
	if err := f.injected("link-down", device); err != nil {
		return err
	}
	f.up[device] = false
	return nil
}

func (f *fakeNet) AddIngress(_ context.Context, iface string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add-ingress", iface, "")
	if err := f.injected("add-ingress", iface); err != nil {
		return err
	}
	if f.ingress[iface] {
		return fmt.Errorf("ingress qdisc already present on %s", iface)
	}
	f.ingress[iface] = true
	return nil
}

func (f *fakeNet) RemoveIngress(_ context.Context, iface string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove-ingress", iface, "")
	if err := f.injected("remove-ingress", iface); err != nil {
		return err
	}
	delete(f.ingress, iface)
	delete(f.redirect, iface)
	return nil
}

func (f *fakeNet) AddRedirect(_ context.Context, iface, device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add-redirect", iface, device)
	if err := f.injected("add-redirect", iface); err != nil {
		return err
	}
	if !f.ingress[iface] {
		return fmt.Errorf("no ingress qdisc on %s", iface)
	}
	f.redirect[iface] = device
	return nil
}

func (f *fakeNet) RemoveRedirect(_ context.Context, iface string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove-redirect", iface, "")
	if err := f.injected("remove-redirect", iface); err != nil {
		return err
	}
	delete(f.redirect, iface)
	return nil
}

func (f *fakeNet) AddPlug(_ context.Context, device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add-plug", "", device)
	if err := f.injected("add-plug", device); err != nil {
		return err
	}
	f.busy[device] = true
	return nil
}

func (f *fakeNet) SetPlugLimit(_ context.Context, device string, limitBytes uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set-plug-limit", "", device)
	if err := f.injected("set-plug-limit", device); err != nil {
		return err
	}
	f.plugLimit[device] = limitBytes
	return nil
}

func (f *fakeNet) RemovePlug(_ context.Context, device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove-plug", "", device)
	if err := f.injected("remove-plug", device); err != nil {
		return err
	}
	delete(f.busy, device)
	delete(f.plugLimit, device)
	return nil
}

// State inspection helpers for assertions.

func (f *fakeNet) HasIngress(iface string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ingress[iface]
}

func (f *fakeNet) RedirectTarget(iface string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect[iface]
}

func (f *fakeNet) IsUp(device string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.up[device]
}

func (f *fakeNet) IsBusy(device string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy[device]
}

func (f *fakeNet) PlugLimit(device string) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plugLimit[device]
}

// MarkBusy simulates a qdisc installed outside this coordination
// mechanism.
func (f *fakeNet) MarkBusy(device string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy[device] = true
}
