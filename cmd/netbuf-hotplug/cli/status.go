package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// StatusCmd shows every pool device with its kernel state and claim
// owner.
type StatusCmd struct{}

// Run prints the pool report.
func (c *StatusCmd) Run(root *CLI) error {
	rt, err := root.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.mgr.Status(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tBUSY\tOWNER")
	for _, d := range report.Devices {
		owner := d.Owner
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", d.Name, d.Busy, owner)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for owner, device := range report.Orphans {
		fmt.Printf("orphan claim: %s -> %s (device not in pool)\n", owner, device)
	}
	return nil
}
