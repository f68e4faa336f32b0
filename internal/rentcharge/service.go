// Package rentcharge generates the monthly rent-charge transactions and
// supports rolling back a whole generation batch.
package rentcharge

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// Service creates and rolls back rent charge batches.
type Service struct {
	store *store.Store
	alloc *ledger.Allocator
	now   func() time.Time
	log   zerolog.Logger
}

// New creates a rent charge Service. A nil clock uses time.Now.
func New(st *store.Store, alloc *ledger.Allocator, now func() time.Time, log zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, alloc: alloc, now: now, log: log}
}

// GenerateResult summarizes one generation run.
type GenerateResult struct {
	BatchID int64
	Charged int
	Skipped int
}

// Generate creates one rent charge per placed tenant for the month of
// chargeDate, grouped in a new batch. The charge day comes from the
// tenancy start date, clamped to the length of the month; tenants already
// charged for that month are skipped. The whole run is one unit of work.
func (s *Service) Generate(chargeDate time.Time) (GenerateResult, error) {
	var res GenerateResult
	err := s.store.Update(func(tx *store.Tx) error {
		batch := model.RentChargeBatch{
			CreatedAt:   s.now().UTC(),
			Description: fmt.Sprintf("Monthly rent charges for %s", chargeDate.Format("2006-01")),
		}
		if err := tx.CreateBatch(&batch); err != nil {
			return err
		}
		res.BatchID = batch.ID

		tenants, err := tx.PlacedTenants()
		if err != nil {
			return err
		}
		for _, tenant := range tenants {
			charged, err := s.chargeTenant(tx, tenant, batch.ID, chargeDate)
			if err != nil {
				return err
			}
			if charged {
				res.Charged++
			} else {
				res.Skipped++
			}
		}

		return tx.AppendAudit(model.AuditEntry{
			Action:  "generate_rent_charges",
			Details: fmt.Sprintf("batch %d: charged %d tenants, skipped %d", batch.ID, res.Charged, res.Skipped),
		})
	})
	if err != nil {
		return GenerateResult{}, err
	}

	s.log.Info().
		Int64("batch", res.BatchID).
		Int("charged", res.Charged).
		Int("skipped", res.Skipped).
		Msg("generated rent charges")
	return res, nil
}

func (s *Service) chargeTenant(tx *store.Tx, tenant model.Tenant, batchID int64, chargeDate time.Time) (bool, error) {
	exists, err := tx.RentChargeExists(tenant.ID, chargeDate.Year(), chargeDate.Month())
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	prop, ok, err := tx.GetProperty(tenant.PropertyID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("property %d: %w", tenant.PropertyID, ledger.ErrNotFound)
	}

	charge := model.Transaction{
		Date:        ChargeDate(tenant, chargeDate.Year(), chargeDate.Month()),
		Amount:      prop.RentAmount,
		Description: fmt.Sprintf("Monthly rent charge for %s", prop.Address),
		Status:      model.StatusCoded,
		Category:    model.CategoryRentCharge,
		TenantID:    tenant.ID,
		BatchID:     batchID,
	}
	if err := tx.CreateTransaction(&charge); err != nil {
		return false, err
	}
	if err := s.alloc.Apply(tx, &charge); err != nil {
		return false, err
	}
	return true, nil
}

// ChargeDate returns the date a tenant's rent falls due in a month: the
// tenancy start day, clamped to the last day of short months, or the 1st
// when no start date is known.
func ChargeDate(tenant model.Tenant, year int, month time.Month) time.Time {
	day := 1
	if !tenant.StartDate.IsZero() {
		day = tenant.StartDate.Day()
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Rollback reverses every rent charge in a batch, crediting each tenant's
// account back, deleting the charges and then the batch itself.
func (s *Service) Rollback(batchID int64) error {
	err := s.store.Update(func(tx *store.Tx) error {
		_, ok, err := tx.GetBatch(batchID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("batch %d: %w", batchID, ledger.ErrNotFound)
		}

		charges, err := tx.TransactionsByBatch(batchID)
		if err != nil {
			return err
		}
		for _, charge := range charges {
			if charge.Category == model.CategoryRentCharge && charge.TenantID != 0 &&
				charge.Status == model.StatusAllocated {
				acct, ok, err := tx.AccountByTenant(charge.TenantID)
				if err != nil {
					return err
				}
				if ok {
					if err := tx.AddToBalance(acct.ID, charge.Amount.Abs()); err != nil {
						return err
					}
				}
			}
			if err := tx.DeleteTransaction(charge.ID); err != nil {
				return err
			}
		}

		if err := tx.DeleteBatch(batchID); err != nil {
			return err
		}
		return tx.AppendAudit(model.AuditEntry{
			Action:  "rollback_rent_charges",
			Details: fmt.Sprintf("batch %d: rolled back %d charges", batchID, len(charges)),
		})
	})
	if err != nil {
		return err
	}
	s.log.Info().Int64("batch", batchID).Msg("rolled back rent charge batch")
	return nil
}
