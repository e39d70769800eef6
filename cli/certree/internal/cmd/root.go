// Package cmd implements the CLI commands of certree.
package cmd

import (
	"github.com/klever-hub/kleverblockchain-certificates/application"
	"github.com/klever-hub/kleverblockchain-certificates/cli"
	"github.com/spf13/cobra"
)

// RootCmd represents the base "certree" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("certree",
	"Selective-disclosure certificates backed by Merkle proofs",
	`certree seals each certificate into a salted Merkle tree, anchors
its root on a ledger and lets holders prove single fields without
revealing the others.`)

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "config.toml", "Path to the configuration file")
}

// openApp loads the configuration named by the --config flag and
// opens the services it describes.
func openApp(cmd *cobra.Command) (*application.App, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	conf, err := application.LoadConfig(path, application.EncodingFromPath(path))
	if err != nil {
		return nil, err
	}
	return application.OpenApp(conf)
}
