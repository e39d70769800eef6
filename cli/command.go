// Package cli provides builders for the cobra commands shared by the
// certificate executables.
package cli

import (
	"fmt"
	"os"

	"github.com/klever-hub/kleverblockchain-certificates/internal"
	"github.com/spf13/cobra"
)

// RunFunc implements a command. A returned error is printed by
// ExecuteRoot.
type RunFunc func(cmd *cobra.Command, args []string) error

// NewRootCommand returns the root command of an executable. Errors of
// subcommands are reported once, by ExecuteRoot, without usage text.
func NewRootCommand(use, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// NewInitCommand returns the "init" command, which writes a fresh
// configuration for appName using runFunc.
func NewInitCommand(appName string, runFunc RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file for " + appName + ".",
		Args:  cobra.NoArgs,
		RunE:  runFunc,
	}
}

// NewRunCommand returns a command invoked as use which runs a
// long-lived appName instance, such as a server.
func NewRunCommand(use, appName string, runFunc RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: "Run a " + appName + " instance.",
		Long: `Run a ` + appName + ` instance.

The configuration is read from the file given with --config.`,
		Args: cobra.NoArgs,
		RunE: runFunc,
	}
}

// NewVersionCommand returns the "version" command of appName.
func NewVersionCommand(appName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of " + appName + ".",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", appName, internal.Version)
		},
	}
}

// ExecuteRoot runs rootCmd and exits with a non-zero status if the
// selected subcommand fails.
func ExecuteRoot(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
