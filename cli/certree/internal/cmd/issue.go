package cmd

import (
	"fmt"
	"os"

	"github.com/klever-hub/kleverblockchain-certificates/ingest"
	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue <participants.csv>",
	Short: "Issue one certificate per CSV row.",
	Long: `Issue one certificate per CSV row.

The header row names the certificate fields. Fields without a column
take the course-wide defaults of the configuration. Each certificate
is sealed with a fresh salt, stored, anchored and, if an output
directory is configured, given a metadata file.`,
	Args: cobra.ExactArgs(1),
	RunE: issueRunFunc,
}

func init() {
	RootCmd.AddCommand(issueCmd)
}

func issueRunFunc(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := ingest.ReadCSV(f, app.Schema, app.Config.Defaults)
	if err != nil {
		return err
	}
	sealed, err := app.Issuer.IssueAll(cmd.Context(), rows)
	out := cmd.OutOrStdout()
	for _, s := range sealed {
		fmt.Fprintf(out, "%s\t%s\t%s\n", s.ID(), s.RootHex(), s.Salt().Display())
	}
	if err != nil {
		return err
	}
	okColor.Fprintf(out, "Issued %d certificates\n", len(sealed))
	return nil
}
