// Package netcfg is the kernel configuration surface netbuf drives:
// link state, ingress interception, mirred redirection and the plug
// holding qdisc. The package only issues configuration commands; it
// never touches packets.
//
// Configurator is an interface so the orchestration layer can be
// exercised against a fake in tests.
package netcfg

import "context"

// Configurator configures interception, redirection and buffering on
// kernel network devices.
type Configurator interface {
	// ListPoolDevices enumerates the buffering devices whose names
	// start with prefix, sorted by name. Pool devices pre-exist on the
	// host; none are created here.
	ListPoolDevices(ctx context.Context, prefix string) ([]string, error)

	// DeviceBusy reports whether the kernel shows a qdisc explicitly
	// installed on the device. Presence of any such qdisc marks the
	// device as in use, whether or not a claim record names it.
	DeviceBusy(ctx context.Context, device string) (bool, error)

	// SetLinkUp brings the device administratively up.
	SetLinkUp(ctx context.Context, device string) error

	// SetLinkDown brings the device administratively down.
	SetLinkDown(ctx context.Context, device string) error

	// AddIngress attaches the ingress interception qdisc to iface.
	// Guest egress arrives on the host side of the interface as
	// ingress traffic, which is where it can be redirected.
	AddIngress(ctx context.Context, iface string) error

	// RemoveIngress detaches the ingress qdisc from iface, dropping
	// any filters attached under it. Removing an absent qdisc is not
	// an error.
	RemoveIngress(ctx context.Context, iface string) error

	// AddRedirect installs a match-all filter on iface's ingress
	// interception point whose action mirrors and redirects matched
	// traffic into device.
	AddRedirect(ctx context.Context, iface, device string) error

	// RemoveRedirect removes the redirect filter from iface's ingress
	// interception point. Removing an absent filter is not an error.
	RemoveRedirect(ctx context.Context, iface string) error

	// AddPlug installs the plug holding qdisc as the root qdisc of
	// device. Packets entering the device are buffered until the
	// control plane releases them.
	AddPlug(ctx context.Context, device string) error

	// SetPlugLimit requests a byte capacity for device's plug qdisc.
	SetPlugLimit(ctx context.Context, device string, limitBytes uint32) error

	// RemovePlug removes the plug qdisc from device. Removing an
	// absent qdisc is not an error.
	RemovePlug(ctx context.Context, device string) error
}
