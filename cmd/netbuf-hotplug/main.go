// netbuf-hotplug wires a VM interface's egress traffic into a claimed
// buffering device (setup) and releases it again (teardown). It is
// invoked by the hotplug control plane, once per interface event.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/remuskit/netbuf/cmd/netbuf-hotplug/cli"
)

// Exit codes: 0 success, 1 fatal operation error, 2 invalid invocation.
const (
	exitFatal = 1
	exitUsage = 2
)

func main() {
	var c cli.CLI
	parser := kong.Must(&c, cli.KongOptions()...)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "netbuf-hotplug: %v\n", err)
		os.Exit(exitUsage)
	}

	if err := kctx.Run(&c); err != nil {
		fmt.Fprintf(os.Stderr, "netbuf-hotplug: %v\n", err)
		os.Exit(exitFatal)
	}
}
