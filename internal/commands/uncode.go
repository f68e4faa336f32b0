package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
)

func newUncodeCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "uncode <transaction-id>",
		Short: "Reverse a transaction's allocation",
		Long: `Uncode reverses every ledger effect of an allocated transaction,
deletes any split children, and returns it to the uncoded state. A
transaction covered by a later landlord payout cannot be uncoded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing transaction id %q: %w", args[0], err)
			}

			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			alloc := ledger.NewAllocator(rt.store, rt.sys, rt.log)
			if err := alloc.Uncode(txID); err != nil {
				return err
			}

			fmt.Printf("Uncoded transaction %d\n", txID)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")

	return cmd
}
