// Package main is the entry point for the eggo CLI.
//
// eggo provisions a Cloudera cluster on EC2 for genomics work: a
// CloudFormation network stack, a launcher instance running Cloudera
// Director, and the cluster Director bootstraps from it. It then configures
// the cluster with a JDK, build tools and genomics packages.
//
// For detailed usage information, run:
//
//	eggo --help
package main

import (
	"fmt"
	"os"

	"github.com/heuermh/eggo/cmd/eggo/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
