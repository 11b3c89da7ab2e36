// Command devhost manages local development routes: Apache VirtualHost
// blocks in one vhost file plus matching hosts file entries.
package main

import (
	"os"

	"github.com/ksyq12/devhost/internal/cli"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	cli.SetVersion(version)
	os.Exit(cli.Execute())
}
