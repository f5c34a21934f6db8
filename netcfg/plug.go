package netcfg

import (
	"context"
	"fmt"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
	"golang.org/x/sys/unix"
)

// sch_plug control actions carried in tc_plug_qopt.action.
const (
	tcqPlugBuffer            = 0
	tcqPlugReleaseOne        = 1
	tcqPlugReleaseIndefinite = 2
	tcqPlugLimit             = 3
)

// SetPlugLimit issues a qdisc-change request carrying a tc_plug_qopt
// with the requested byte limit. vishvananda/netlink has no typed plug
// qdisc, so the request is assembled directly with its nl primitives,
// the same way the library builds its own qdisc messages.
func (n *Netlink) SetPlugLimit(_ context.Context, device string, limitBytes uint32) error {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", device, err)
	}

	req := nl.NewNetlinkRequest(unix.RTM_NEWQDISC, unix.NLM_F_ACK)
	req.AddData(&nl.TcMsg{
		Family:  nl.FAMILY_ALL,
		Ifindex: int32(link.Attrs().Index),
		Handle:  plugHandle,
		Parent:  netlink.HANDLE_ROOT,
	})
	req.AddData(nl.NewRtAttr(nl.TCA_KIND, nl.ZeroTerminated("plug")))
	req.AddData(nl.NewRtAttr(nl.TCA_OPTIONS, plugOption(tcqPlugLimit, limitBytes)))

	if _, err := req.Execute(unix.NETLINK_ROUTE, 0); err != nil {
		return fmt.Errorf("set plug limit %d on %s: %w", limitBytes, device, err)
	}
	return nil
}

// plugOption encodes a struct tc_plug_qopt { int action; __u32 limit; }
// in the host's native byte order.
func plugOption(action int32, limit uint32) []byte {
	native := nl.NativeEndian()
	buf := make([]byte, 8)
	native.PutUint32(buf[0:4], uint32(action))
	native.PutUint32(buf[4:8], limit)
	return buf
}
