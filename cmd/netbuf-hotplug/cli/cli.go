// Package cli defines the netbuf-hotplug command tree.
package cli

import (
	"github.com/alecthomas/kong"
)

// CLI is the root command structure for netbuf-hotplug.
type CLI struct {
	Config string `name:"config" help:"Config file path." default:"${default_config_path}"`
	RunDir string `name:"run-dir" help:"Runtime state directory." default:"${default_run_dir}"`
	Log    string `name:"log" help:"Log spec (e.g. 'info,manager=debug')." env:"NETBUF_LOG"`

	Setup    SetupCmd    `cmd:"" help:"Claim a buffering device and start holding egress traffic."`
	Teardown TeardownCmd `cmd:"" help:"Release the buffering device and remove interception."`
	Status   StatusCmd   `cmd:"" help:"Show pool devices and claim records."`
	Doctor   DoctorCmd   `cmd:"" help:"Detect (and optionally clear) stale claim records."`
}

// KongOptions returns the Kong configuration options for the CLI.
func KongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("netbuf-hotplug"),
		kong.Description("Buffering-device allocator for checkpoint-replicated VM interfaces."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"default_config_path": "/etc/netbuf/netbuf.toml",
			"default_run_dir":     "/run/netbuf",
		},
	}
}
