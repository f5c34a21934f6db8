package cli

import (
	"context"
)

// TeardownCmd releases the buffering device previously claimed for an
// interface and removes its traffic interception.
type TeardownCmd struct {
	Interface string `arg:"" help:"Guest-facing interface name (e.g. vif7.0)." env:"NETBUF_VIF"`
	StorePath string `arg:"" name:"store-path" help:"Coordination-store path for this interface's lifecycle record."`
	Device    string `arg:"" help:"Buffering device claimed at setup." env:"NETBUF_IFB"`
}

// Run executes teardown. Cleanup is best-effort: individual step
// failures are logged, and the command exits zero so the control plane
// can call it any number of times.
func (c *TeardownCmd) Run(root *CLI) error {
	rt, err := root.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.mgr.Teardown(context.Background(), c.Interface, c.StorePath, c.Device)
	return nil
}
