package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

func newAllocateCommand() *cobra.Command {
	var repoDir, category string
	var tenantID, landlordID int64

	cmd := &cobra.Command{
		Use:   "allocate <transaction-id>",
		Short: "Code a transaction and post it to the ledger",
		Long: `Allocate codes an uncoded transaction with a category and
counterparty, then posts its ledger effects. A transaction that is
already coded is allocated as-is.`,
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

			return rt.store.Update(func(tx *store.Tx) error {
				tr, ok, err := tx.GetTransaction(txID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("transaction %d: %w", txID, ledger.ErrNotFound)
				}

				if category != "" {
					cat, err := parseCategory(category)
					if err != nil {
						return err
					}
					tr.Status = model.StatusCoded
					tr.Category = cat
					tr.TenantID = tenantID
					tr.LandlordID = landlordID
				}

				if err := alloc.Apply(tx, &tr); err != nil {
					return err
				}
				fmt.Printf("Allocated transaction %d (%s %s)\n", tr.ID, tr.Category, tr.Amount.StringFixed(2))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringVar(&category, "category", "", "transaction category (rent, expense, payment, ...)")
	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant ID for rent categories")
	cmd.Flags().Int64Var(&landlordID, "landlord", 0, "landlord ID for expense and payment categories")

	return cmd
}

func parseCategory(s string) (model.TxCategory, error) {
	cat := model.TxCategory(s)
	switch cat {
	case model.CategoryRent, model.CategoryRentCharge, model.CategoryExpense,
		model.CategoryPayment, model.CategoryPayout, model.CategoryOther:
		return cat, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}
