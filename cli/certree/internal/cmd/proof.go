package cmd

import (
	"github.com/klever-hub/kleverblockchain-certificates/application"
	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
	"github.com/spf13/cobra"
)

var proofCmd = &cobra.Command{
	Use:   "proof <id> <field>",
	Short: "Print the disclosure package of a certificate field.",
	Long: `Print the disclosure package of a certificate field.

The package is a verification claim holding the field's value, the
record salt and the inclusion proof. A holder hands it to a verifier
to disclose this field and nothing else.`,
	Args: cobra.ExactArgs(2),
	RunE: proofRunFunc,
}

func init() {
	RootCmd.AddCommand(proofCmd)
}

func proofRunFunc(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	s, err := recordkv.LoadRecord(app.DB, args[0])
	if err != nil {
		return err
	}
	p, err := s.Proof(args[1])
	if err != nil {
		return err
	}
	value, _ := s.Fields().Get(args[1])
	return printJSON(cmd.OutOrStdout(), application.Claim{
		ID:     s.ID(),
		Root:   s.RootHex(),
		Salt:   s.Salt().String(),
		Hasher: s.HasherID(),
		Field:  args[1],
		Value:  value,
		Proof:  p,
	})
}
