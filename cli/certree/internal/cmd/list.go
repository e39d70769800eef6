package cmd

import (
	"fmt"

	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued certificates.",
	Args:  cobra.NoArgs,
	RunE:  listRunFunc,
}

func init() {
	RootCmd.AddCommand(listCmd)
	listCmd.Flags().String("field", "", "Only list certificates whose field has --value")
	listCmd.Flags().String("value", "", "Value searched with --field")
}

func listRunFunc(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	if field, _ := cmd.Flags().GetString("field"); field != "" {
		value, _ := cmd.Flags().GetString("value")
		ids, err := app.Verifier.FindByField(cmd.Context(), field, value)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	records, err := recordkv.ListRecords(app.DB)
	if err != nil {
		return err
	}
	for _, s := range records {
		fmt.Fprintf(out, "%s\t%s\t%s\n", s.ID(), s.HasherID(), s.RootHex())
	}
	return nil
}
