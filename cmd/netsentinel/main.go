// Command netsentinel monitors a home network for new and risky devices.
package main

import "github.com/anstrom/netsentinel/cmd/cli"

// Set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
