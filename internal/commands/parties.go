package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

func newTenantCommand() *cobra.Command {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	tenantCmd.AddCommand(newTenantAddCommand())
	return tenantCmd
}

func newTenantAddCommand() *cobra.Command {
	var repoDir, name, reference, startDate string
	var propertyID int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a tenant and open their ledger account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			tenant := model.Tenant{
				Name:       name,
				Reference:  reference,
				PropertyID: propertyID,
			}
			if startDate != "" {
				d, err := time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("parsing start date: %w", err)
				}
				tenant.StartDate = d
			}

			err = rt.store.Update(func(tx *store.Tx) error {
				if err := tx.CreateTenant(&tenant); err != nil {
					return err
				}
				acct := model.Account{
					Name:     fmt.Sprintf("%s Account", tenant.Name),
					Type:     model.AccountTypeTenant,
					TenantID: tenant.ID,
				}
				return tx.CreateAccount(&acct)
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added tenant %d: %s\n", tenant.ID, tenant.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringVar(&name, "name", "", "tenant name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&reference, "reference", "", "bank reference code")
	cmd.Flags().StringVar(&startDate, "start-date", "", "tenancy start date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&propertyID, "property", 0, "property ID")

	return cmd
}

func newLandlordCommand() *cobra.Command {
	landlordCmd := &cobra.Command{
		Use:   "landlord",
		Short: "Manage landlords",
	}
	landlordCmd.AddCommand(newLandlordAddCommand())
	return landlordCmd
}

func newLandlordAddCommand() *cobra.Command {
	var repoDir, name, reference, commission string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a landlord and open their ledger account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			rate, err := rt.cfg.CommissionRate()
			if err != nil {
				return err
			}
			if commission != "" {
				rate, err = decimal.NewFromString(commission)
				if err != nil {
					return fmt.Errorf("parsing commission rate: %w", err)
				}
			}

			landlord := model.Landlord{
				Name:           name,
				Reference:      reference,
				CommissionRate: rate,
			}

			err = rt.store.Update(func(tx *store.Tx) error {
				if err := tx.CreateLandlord(&landlord); err != nil {
					return err
				}
				acct := model.Account{
					Name:       fmt.Sprintf("%s Account", landlord.Name),
					Type:       model.AccountTypeLandlord,
					LandlordID: landlord.ID,
				}
				return tx.CreateAccount(&acct)
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added landlord %d: %s\n", landlord.ID, landlord.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringVar(&name, "name", "", "landlord name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&reference, "reference", "", "bank reference code")
	cmd.Flags().StringVar(&commission, "commission", "", "commission rate, e.g. 0.1 (defaults from config)")

	return cmd
}

func newPropertyCommand() *cobra.Command {
	propertyCmd := &cobra.Command{
		Use:   "property",
		Short: "Manage properties",
	}
	propertyCmd.AddCommand(newPropertyAddCommand())
	return propertyCmd
}

func newPropertyAddCommand() *cobra.Command {
	var repoDir, address, rent, portion string
	var landlordID, utilityAccountID int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a property for a landlord",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			rentAmount, err := decimal.NewFromString(rent)
			if err != nil {
				return fmt.Errorf("parsing rent amount: %w", err)
			}
			landlordPortion := decimal.Zero
			if portion != "" {
				landlordPortion, err = decimal.NewFromString(portion)
				if err != nil {
					return fmt.Errorf("parsing landlord portion: %w", err)
				}
			}

			prop := model.Property{
				Address:          address,
				RentAmount:       rentAmount,
				LandlordID:       landlordID,
				LandlordPortion:  landlordPortion,
				UtilityAccountID: utilityAccountID,
			}

			err = rt.store.Update(func(tx *store.Tx) error {
				if _, ok, err := tx.GetLandlord(landlordID); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("landlord %d does not exist", landlordID)
				}
				return tx.CreateProperty(&prop)
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added property %d: %s\n", prop.ID, prop.Address)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringVar(&address, "address", "", "property address (required)")
	_ = cmd.MarkFlagRequired("address")
	cmd.Flags().StringVar(&rent, "rent", "0", "monthly rent amount")
	cmd.Flags().Int64Var(&landlordID, "landlord", 0, "landlord ID (required)")
	_ = cmd.MarkFlagRequired("landlord")
	cmd.Flags().StringVar(&portion, "portion", "", "landlord portion of rent when a utility split applies, e.g. 0.8")
	cmd.Flags().Int64Var(&utilityAccountID, "utility-account", 0, "utility account ID for the split remainder")

	return cmd
}
