package netcfg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// TC object placement. The interception point is the ingress qdisc
// (ffff:) on the source interface; the redirect filter hangs off it at
// a fixed priority. The plug qdisc is the root qdisc (1:) of the
// claimed device.
const (
	redirectPriority = 10
	plugMajor        = 1
)

var (
	ingressHandle = netlink.MakeHandle(0xffff, 0)
	plugHandle    = netlink.MakeHandle(plugMajor, 0)
)

// implicitQdiscKinds are the qdiscs the kernel attaches on its own.
// Their presence says nothing about whether anyone is using the
// device.
var implicitQdiscKinds = map[string]bool{
	"noop":       true,
	"noqueue":    true,
	"pfifo_fast": true,
}

// Netlink implements Configurator against the host's rtnetlink
// interface.
type Netlink struct {
	logger *slog.Logger
}

// NewNetlink creates a netlink-backed Configurator.
func NewNetlink(logger *slog.Logger) *Netlink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Netlink{logger: logger.With("component", "netcfg")}
}

// ListPoolDevices enumerates devices whose names start with prefix,
// sorted by name.
func (n *Netlink) ListPoolDevices(_ context.Context, prefix string) ([]string, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	var devices []string
	for _, link := range links {
		if name := link.Attrs().Name; strings.HasPrefix(name, prefix) {
			devices = append(devices, name)
		}
	}
	sort.Strings(devices)
	return devices, nil
}

// DeviceBusy reports whether any explicitly installed qdisc is present
// on the device.
func (n *Netlink) DeviceBusy(_ context.Context, device string) (bool, error) {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", device, err)
	}

	qdiscs, err := netlink.QdiscList(link)
	if err != nil {
		return false, fmt.Errorf("list qdiscs on %s: %w", device, err)
	}
	for _, q := range qdiscs {
		if !implicitQdiscKinds[q.Type()] {
			return true, nil
		}
	}
	return false, nil
}

// SetLinkUp brings the device administratively up.
func (n *Netlink) SetLinkUp(_ context.Context, device string) error {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", device, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("set %s up: %w", device, err)
	}
	return nil
}

// SetLinkDown brings the device administratively down.
func (n *Netlink) SetLinkDown(_ context.Context, device string) error {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", device, err)
	}
	if err := netlink.LinkSetDown(link); err != nil {
		return fmt.Errorf("set %s down: %w", device, err)
	}
	return nil
}

// AddIngress attaches the ingress interception qdisc to iface.
func (n *Netlink) AddIngress(_ context.Context, iface string) error {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", iface, err)
	}

	qdisc := &netlink.Ingress{
		QdiscAttrs: netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Handle:    ingressHandle,
			Parent:    netlink.HANDLE_INGRESS,
		},
	}
	if err := netlink.QdiscAdd(qdisc); err != nil {
		return fmt.Errorf("add ingress qdisc to %s: %w", iface, err)
	}
	return nil
}

// RemoveIngress detaches the ingress qdisc from iface. The interface
// or qdisc being gone already is not an error.
func (n *Netlink) RemoveIngress(_ context.Context, iface string) error {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		if isLinkNotFound(err) {
			return nil
		}
		return fmt.Errorf("lookup %s: %w", iface, err)
	}

	qdisc := &netlink.Ingress{
		QdiscAttrs: netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Handle:    ingressHandle,
			Parent:    netlink.HANDLE_INGRESS,
		},
	}
	if err := netlink.QdiscDel(qdisc); err != nil && !isAbsent(err) {
		return fmt.Errorf("del ingress qdisc on %s: %w", iface, err)
	}
	return nil
}

// AddRedirect installs a match-all u32 filter on iface's interception
// point with a mirred action redirecting matched traffic into device.
func (n *Netlink) AddRedirect(_ context.Context, iface, device string) error {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", iface, err)
	}
	target, err := netlink.LinkByName(device)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", device, err)
	}

	filter := &netlink.U32{
		FilterAttrs: netlink.FilterAttrs{
			LinkIndex: link.Attrs().Index,
			Parent:    ingressHandle,
			Priority:  redirectPriority,
			Protocol:  unix.ETH_P_ALL,
		},
		Actions: []netlink.Action{
			netlink.NewMirredAction(target.Attrs().Index),
		},
	}
	if err := netlink.FilterAdd(filter); err != nil {
		return fmt.Errorf("add redirect filter %s -> %s: %w", iface, device, err)
	}
	return nil
}

// RemoveRedirect removes the redirect filter from iface's interception
// point. vishvananda/netlink FilterAdd does not echo back the
// kernel-assigned handle, so the filter is found by listing the parent
// and matching the fixed priority.
func (n *Netlink) RemoveRedirect(_ context.Context, iface string) error {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		if isLinkNotFound(err) {
			return nil
		}
		return fmt.Errorf("lookup %s: %w", iface, err)
	}

	filters, err := netlink.FilterList(link, ingressHandle)
	if err != nil {
		if isAbsent(err) {
			return nil
		}
		return fmt.Errorf("list filters on %s: %w", iface, err)
	}
	for _, f := range filters {
		if f.Attrs().Priority != redirectPriority {
			continue
		}
		if err := netlink.FilterDel(f); err != nil && !isAbsent(err) {
			return fmt.Errorf("del redirect filter on %s: %w", iface, err)
		}
	}
	return nil
}

// AddPlug installs the plug holding qdisc as device's root qdisc.
// There is no typed plug qdisc in vishvananda/netlink; adding by kind
// is sufficient since sch_plug takes no mandatory options.
func (n *Netlink) AddPlug(_ context.Context, device string) error {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", device, err)
	}

	qdisc := &netlink.GenericQdisc{
		QdiscAttrs: netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Handle:    plugHandle,
			Parent:    netlink.HANDLE_ROOT,
		},
		QdiscType: "plug",
	}
	if err := netlink.QdiscAdd(qdisc); err != nil {
		return fmt.Errorf("add plug qdisc to %s: %w", device, err)
	}
	return nil
}

// RemovePlug removes the plug qdisc from device. The device or qdisc
// being gone already is not an error.
func (n *Netlink) RemovePlug(_ context.Context, device string) error {
	link, err := netlink.LinkByName(device)
	if err != nil {
		if isLinkNotFound(err) {
			return nil
		}
		return fmt.Errorf("lookup %s: %w", device, err)
	}

	qdisc := &netlink.GenericQdisc{
		QdiscAttrs: netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Handle:    plugHandle,
			Parent:    netlink.HANDLE_ROOT,
		},
		QdiscType: "plug",
	}
	if err := netlink.QdiscDel(qdisc); err != nil && !isAbsent(err) {
		return fmt.Errorf("del plug qdisc on %s: %w", device, err)
	}
	return nil
}

// isLinkNotFound reports whether err is a missing-interface lookup
// failure.
func isLinkNotFound(err error) bool {
	var lnf netlink.LinkNotFoundError
	return errors.As(err, &lnf)
}

// isAbsent reports whether err indicates the TC object was already
// gone. The kernel answers ENOENT or EINVAL depending on which part of
// the hierarchy is missing.
func isAbsent(err error) bool {
	return errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EINVAL)
}
