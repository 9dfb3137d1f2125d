// omnisend CLI - sends one request over HTTP, MQTT, MQTT-SN or CoAP
package main

import "github.com/getmockd/omnisend/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
