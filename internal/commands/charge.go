package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/rentcharge"
)

func newChargeCommand() *cobra.Command {
	chargeCmd := &cobra.Command{
		Use:   "charge",
		Short: "Manage monthly rent charges",
	}
	chargeCmd.AddCommand(newChargeGenerateCommand())
	chargeCmd.AddCommand(newChargeRollbackCommand())
	return chargeCmd
}

func newChargeGenerateCommand() *cobra.Command {
	var repoDir, month string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate rent charges for a month",
		Long: `Generate creates one rent charge per placed tenant for the given
month, due on each tenancy's start day. Tenants already charged for the
month are skipped. All charges share a batch so the run can be rolled
back as a unit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			chargeDate := time.Now().UTC()
			if month != "" {
				d, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("parsing month: %w", err)
				}
				chargeDate = d
			}

			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			alloc := ledger.NewAllocator(rt.store, rt.sys, rt.log)
			svc := rentcharge.New(rt.store, alloc, nil, rt.log)

			res, err := svc.Generate(chargeDate)
			if err != nil {
				return err
			}

			fmt.Printf("Batch %d: charged %d tenants, skipped %d\n", res.BatchID, res.Charged, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringVar(&month, "month", "", "month to charge, YYYY-MM (default: current month)")

	return cmd
}

func newChargeRollbackCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "rollback <batch-id>",
		Short: "Roll back a rent charge batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing batch id %q: %w", args[0], err)
			}

			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			alloc := ledger.NewAllocator(rt.store, rt.sys, rt.log)
			svc := rentcharge.New(rt.store, alloc, nil, rt.log)

			if err := svc.Rollback(batchID); err != nil {
				return err
			}

			fmt.Printf("Rolled back batch %d\n", batchID)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")

	return cmd
}
