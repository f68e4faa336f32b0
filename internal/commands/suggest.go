package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/match"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

func newSuggestCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest codings for uncoded transactions",
		Long: `Suggest runs the counterparty matcher over every uncoded
transaction and prints what it would code them as, without changing
anything. Use allocate to apply a coding.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			matcher := match.New(float64(rt.cfg.Ledger.MatchThreshold))

			return rt.store.View(func(tx *store.Tx) error {
				uncoded, err := tx.TransactionsByStatus(model.StatusUncoded)
				if err != nil {
					return err
				}
				if len(uncoded) == 0 {
					fmt.Println("No uncoded transactions")
					return nil
				}
				tenants, err := tx.AllTenants()
				if err != nil {
					return err
				}
				landlords, err := tx.AllLandlords()
				if err != nil {
					return err
				}

				for _, tr := range uncoded {
					res := matcher.Match(tr, tenants, landlords)
					line := fmt.Sprintf("%d  %s  %s  %s",
						tr.ID, tr.Date.Format("2006-01-02"), tr.Amount.StringFixed(2), tr.Description)
					if res.Matched {
						fmt.Printf("%s  ->  %s %d (%s)\n", line, res.Party, res.PartyID, res.Category)
					} else {
						fmt.Printf("%s  ->  no match\n", line)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")

	return cmd
}
