package netbuf

import "fmt"

// PoolExhaustedError is returned when every candidate buffering device
// is either in use according to the kernel or named by a live claim
// record. No partial state exists when this error is returned.
type PoolExhaustedError struct {
	// Prefix is the device naming pattern that was enumerated.
	Prefix string
	// Candidates is the number of pool devices that were considered.
	Candidates int
}

func (e PoolExhaustedError) Error() string {
	if e.Candidates == 0 {
		return fmt.Sprintf("no %q devices present on this host", e.Prefix+"*")
	}
	return fmt.Sprintf("all %d %q devices are in use", e.Candidates, e.Prefix+"*")
}
