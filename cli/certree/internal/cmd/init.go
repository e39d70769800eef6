package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klever-hub/kleverblockchain-certificates/application"
	"github.com/klever-hub/kleverblockchain-certificates/cli"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("certree", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	initCmd.Flags().StringP("encoding", "e", "toml", "Configuration encoding (toml or yaml)")
}

func initRunFunc(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	encoding, _ := cmd.Flags().GetString("encoding")
	if encoding != "toml" && encoding != "yaml" {
		return fmt.Errorf("unsupported encoding %q", encoding)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	file := filepath.Join(dir, "config."+encoding)
	conf := application.NewConfig(file, encoding)
	conf.Logger.Path = "certree.log"
	if err := conf.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", file)
	return nil
}
