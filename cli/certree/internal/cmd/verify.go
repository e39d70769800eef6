package cmd

import (
	"github.com/klever-hub/kleverblockchain-certificates/application"
	"github.com/klever-hub/kleverblockchain-certificates/metadata"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <id> <field> <value>",
	Short: "Verify that a certificate field has a value.",
	Long: `Verify that a certificate field has a value.

The proof and salt are read from the record store, or from a metadata
file given with --metadata, in which case <id> is omitted. The trusted
root always comes from the ledger.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: verifyRunFunc,
}

func init() {
	RootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringP("metadata", "m", "", "Metadata file of the certificate")
}

func verifyRunFunc(cmd *cobra.Command, args []string) error {
	metaPath, _ := cmd.Flags().GetString("metadata")
	if metaPath == "" && len(args) != 3 {
		return cmd.Usage()
	}
	if metaPath != "" && len(args) != 2 {
		return cmd.Usage()
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	claim := &application.Claim{}
	if metaPath == "" {
		claim.ID, claim.Field, claim.Value = args[0], args[1], args[2]
	} else {
		claim.Field, claim.Value = args[0], args[1]
		props, err := metadata.LoadFile(metaPath)
		if err != nil {
			return err
		}
		e, err := metadata.Extract(props)
		if err != nil {
			return err
		}
		s, err := e.Restore()
		if err != nil {
			return err
		}
		claim.ID = s.ID()
		claim.Salt = s.Salt().String()
		claim.Hasher = s.HasherID()
		if claim.Proof, err = s.Proof(claim.Field); err != nil {
			return err
		}
	}

	res, err := app.Verifier.VerifyClaim(cmd.Context(), claim)
	if err != nil {
		return err
	}
	printVerdict(cmd.OutOrStdout(), claim.Field, claim.Value, res)
	return nil
}
