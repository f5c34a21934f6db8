package cli

import (
	"context"
	"fmt"
)

// SetupCmd claims a buffering device for an interface and starts
// holding its egress traffic.
type SetupCmd struct {
	Interface string `arg:"" help:"Guest-facing interface name (e.g. vif7.0)." env:"NETBUF_VIF"`
	StorePath string `arg:"" name:"store-path" help:"Coordination-store path for this interface's lifecycle record."`
}

// Run executes setup. The claimed device name is printed on stdout for
// the control plane to record.
func (c *SetupCmd) Run(root *CLI) error {
	rt, err := root.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	device, err := rt.mgr.Setup(context.Background(), c.Interface, c.StorePath)
	if err != nil {
		return err
	}

	fmt.Println(device)
	return nil
}
