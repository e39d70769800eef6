package cmd

import (
	"github.com/klever-hub/kleverblockchain-certificates/cli"
)

var versionCmd = cli.NewVersionCommand("certree")

func init() {
	RootCmd.AddCommand(versionCmd)
}
