package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
)

func newSplitCommand() *cobra.Command {
	var repoDir string
	var components []string

	cmd := &cobra.Command{
		Use:   "split <transaction-id>",
		Short: "Split a bulk transaction into components",
		Long: `Split breaks a bulk transaction into separately-allocated
components. Each --component takes the form

    amount|category|party|description

where party is tenant=<id>, landlord=<id>, or - for none. The component
amounts must sum to the parent amount.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing transaction id %q: %w", args[0], err)
			}

			parsed := make([]ledger.SplitComponent, 0, len(components))
			for _, raw := range components {
				c, err := parseComponent(raw)
				if err != nil {
					return err
				}
				parsed = append(parsed, c)
			}

			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			alloc := ledger.NewAllocator(rt.store, rt.sys, rt.log)
			if err := alloc.Split(txID, parsed); err != nil {
				return err
			}

			fmt.Printf("Split transaction %d into %d components\n", txID, len(parsed))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringArrayVar(&components, "component", nil,
		"component as amount|category|party|description (repeatable, required)")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func parseComponent(raw string) (ledger.SplitComponent, error) {
	parts := strings.SplitN(raw, "|", 4)
	if len(parts) != 4 {
		return ledger.SplitComponent{}, fmt.Errorf("component %q: want amount|category|party|description", raw)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return ledger.SplitComponent{}, fmt.Errorf("component %q: parsing amount: %w", raw, err)
	}
	cat, err := parseCategory(strings.TrimSpace(parts[1]))
	if err != nil {
		return ledger.SplitComponent{}, fmt.Errorf("component %q: %w", raw, err)
	}

	c := ledger.SplitComponent{
		Amount:      amount,
		Category:    cat,
		Description: parts[3],
	}

	party := strings.TrimSpace(parts[2])
	switch {
	case party == "-" || party == "":
	case strings.HasPrefix(party, "tenant="):
		c.TenantID, err = strconv.ParseInt(strings.TrimPrefix(party, "tenant="), 10, 64)
	case strings.HasPrefix(party, "landlord="):
		c.LandlordID, err = strconv.ParseInt(strings.TrimPrefix(party, "landlord="), 10, 64)
	default:
		return ledger.SplitComponent{}, fmt.Errorf("component %q: party must be tenant=<id>, landlord=<id>, or -", raw)
	}
	if err != nil {
		return ledger.SplitComponent{}, fmt.Errorf("component %q: parsing party id: %w", raw, err)
	}
	return c, nil
}
