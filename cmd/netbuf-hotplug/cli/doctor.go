package cli

import (
	"context"
	"fmt"
)

// DoctorCmd cross-checks claim records against kernel device state and
// reports claims left dangling by skipped teardowns.
type DoctorCmd struct {
	Fix bool `help:"Delete stale claim records (re-verified under the allocation lock)."`
}

// Run prints findings, and with --fix clears confirmed-stale claims.
func (c *DoctorCmd) Run(root *CLI) error {
	rt, err := root.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.mgr.Doctor(context.Background(), c.Fix)
	if err != nil {
		return err
	}

	for _, f := range report.Findings {
		fmt.Printf("[%s] %s: %s\n", f.Severity, f.Category, f.Description)
	}
	for _, key := range report.Fixed {
		fmt.Printf("cleared %s\n", key)
	}
	if report.HasWarnings() && !c.Fix {
		fmt.Println("run with --fix to clear stale claims")
	}
	return nil
}
