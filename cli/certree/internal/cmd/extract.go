package cmd

import (
	"fmt"

	"github.com/klever-hub/kleverblockchain-certificates/metadata"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.meta.json>",
	Short: "Print the certificate data embedded in a metadata file.",
	Args:  cobra.ExactArgs(1),
	RunE:  extractRunFunc,
}

func init() {
	RootCmd.AddCommand(extractCmd)
}

func extractRunFunc(cmd *cobra.Command, args []string) error {
	props, err := metadata.LoadFile(args[0])
	if err != nil {
		return err
	}
	e, err := metadata.Extract(props)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "id:        ", e.ID)
	fmt.Fprintln(out, "root:      ", e.RootHex)
	fmt.Fprintln(out, "salt:      ", e.Salt.Display())
	fmt.Fprintln(out, "hasher:    ", e.HasherID)
	if e.VerifyURL != "" {
		fmt.Fprintln(out, "verify at: ", e.VerifyURL)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(out, "  %-18s %s\n", f.Name, f.Value)
	}
	if _, err := e.Restore(); err != nil {
		failColor.Fprintln(out, "Embedded data does not match the embedded root")
		return err
	}
	okColor.Fprintln(out, "Embedded data matches the embedded root")
	return nil
}
