package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/recalc"
)

func newRecalcCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "recalc [account-id]",
		Short: "Rebuild account balances from the transaction log",
		Long: `Recalc re-derives account balances from the transaction log,
repairing any drift in cached balances. With no argument every account
is recalculated; the bank account always goes last.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var accountID int64
			if len(args) == 1 {
				var err error
				accountID, err = strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("parsing account id %q: %w", args[0], err)
				}
			}

			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			rc := recalc.New(rt.store, rt.sys, rt.log)
			if err := rc.Recalculate(accountID); err != nil {
				return err
			}

			if accountID == 0 {
				fmt.Println("Recalculated all account balances")
			} else {
				fmt.Printf("Recalculated account %d\n", accountID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")

	return cmd
}
