package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/payout"
)

func newPayoutCommand() *cobra.Command {
	var repoDir, start, end, vat string
	var landlordID int64

	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Process a landlord payout for a period",
		Long: `Payout aggregates a landlord's rent income and expenses over a
period, deducts commission and VAT on commission, and posts the payout
transaction set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("parsing start date: %w", err)
			}
			endDate, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("parsing end date: %w", err)
			}

			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			vatRate, err := rt.cfg.VATRate()
			if err != nil {
				return err
			}
			if vat != "" {
				vatRate, err = decimal.NewFromString(vat)
				if err != nil {
					return fmt.Errorf("parsing vat rate: %w", err)
				}
			}

			engine := payout.New(rt.store, rt.sys, nil, rt.log)
			res, err := engine.Process(landlordID, startDate, endDate, vatRate)
			if err != nil {
				return err
			}

			fmt.Printf("Payout for landlord %d (%s to %s)\n", res.LandlordID, start, end)
			fmt.Printf("  Rent income:   %s\n", res.RentIncome.StringFixed(2))
			fmt.Printf("  Expenses:      %s\n", res.TotalExpenses.StringFixed(2))
			fmt.Printf("  Commission:    %s\n", res.Commission.StringFixed(2))
			fmt.Printf("  VAT:           %s\n", res.VAT.StringFixed(2))
			fmt.Printf("  Payout amount: %s\n", res.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().Int64Var(&landlordID, "landlord", 0, "landlord ID (required)")
	_ = cmd.MarkFlagRequired("landlord")
	cmd.Flags().StringVar(&start, "start", "", "period start date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("start")
	cmd.Flags().StringVar(&end, "end", "", "period end date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("end")
	cmd.Flags().StringVar(&vat, "vat", "", "VAT rate on commission (defaults from config)")

	return cmd
}
