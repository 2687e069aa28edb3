package main

import (
	"fmt"
	"os"

	"github.com/mwantia/mediacat/cmd/mediacat/cli"
	"github.com/mwantia/mediacat/cmd/mediacat/cli/catalog"
	"github.com/mwantia/mediacat/cmd/mediacat/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(catalog.NewCatalogCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
