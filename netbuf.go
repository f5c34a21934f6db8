// Package netbuf coordinates a host-wide pool of IFB-style buffering
// devices used to hold a VM interface's egress traffic between
// replication checkpoints.
//
// Each hotplug event runs as its own short-lived process. Setup claims
// a free device from the pool, redirects the interface's guest egress
// into it, and installs a plug qdisc that holds traffic until the
// control plane releases it. Teardown reverses all of that and is safe
// to invoke any number of times.
//
// The only shared state between invocations is the coordination store
// (which interface owns which device) and the kernel's own qdisc
// tables (whether a device is actually in use). The store is the
// source of truth for ownership; the kernel is the source of truth for
// liveness.
package netbuf

import "path"

// Leaf names under an interface's coordination-store path.
const (
	claimLeaf  = "ifb"
	statusLeaf = "hotplug-status"
	errorLeaf  = "hotplug-error"
)

// StatusConnected is written to the status key once setup completes.
const StatusConnected = "connected"

// ClaimKey returns the store key holding the name of the buffering
// device claimed for the interface at storePath.
func ClaimKey(storePath string) string {
	return path.Join(storePath, claimLeaf)
}

// StatusKey returns the store key the control plane watches for
// hotplug completion.
func StatusKey(storePath string) string {
	return path.Join(storePath, statusLeaf)
}

// ErrorKey returns the store key recording the last fatal setup error
// for the interface at storePath.
func ErrorKey(storePath string) string {
	return path.Join(storePath, errorLeaf)
}

// IsClaimKey reports whether key is a claim record. Claim records are
// the only keys whose leaf is "ifb"; the allocator scans for them to
// learn which devices peers already own.
func IsClaimKey(key string) bool {
	return path.Base(key) == claimLeaf
}

// OwnerPath returns the interface coordination path that owns the
// given claim key.
func OwnerPath(claimKey string) string {
	return path.Dir(claimKey)
}
