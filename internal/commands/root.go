// Package commands wires the ledger engine into the lettbooks CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "lettbooks",
		Short:   "Lettings agency bookkeeping",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newTenantCommand())
	rootCmd.AddCommand(newLandlordCommand())
	rootCmd.AddCommand(newPropertyCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newSuggestCommand())
	rootCmd.AddCommand(newAllocateCommand())
	rootCmd.AddCommand(newSplitCommand())
	rootCmd.AddCommand(newUncodeCommand())
	rootCmd.AddCommand(newPayoutCommand())
	rootCmd.AddCommand(newChargeCommand())
	rootCmd.AddCommand(newRecalcCommand())

	return rootCmd
}
