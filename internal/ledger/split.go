package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// SplitComponent is one piece of a manual bulk split.
type SplitComponent struct {
	Amount      decimal.Decimal
	Description string
	Category    model.TxCategory
	TenantID    int64
	LandlordID  int64
}

// splitTolerance is how far the component sum may drift from the parent
// amount before the split is rejected.
var splitTolerance = decimal.RequireFromString("0.01")

// Split breaks a bulk transaction into components. Each component becomes a
// coded child transaction and is allocated independently; the parent is
// marked split. The whole operation is one unit of work: on any failure,
// including a component sum mismatch, nothing is persisted.
func (a *Allocator) Split(parentID int64, components []SplitComponent) error {
	if len(components) == 0 {
		return fmt.Errorf("no split components: %w", ErrIntegrity)
	}

	return a.store.Update(func(tx *store.Tx) error {
		parent, ok, err := tx.GetTransaction(parentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transaction %d: %w", parentID, ErrNotFound)
		}
		if !parent.IsBulk {
			return fmt.Errorf("transaction %d is not marked bulk: %w", parentID, ErrIntegrity)
		}

		existing, err := tx.ChildrenOf(parent.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("transaction %d already split: %w", parentID, ErrIntegrity)
		}

		sum := decimal.Zero
		for _, c := range components {
			sum = sum.Add(c.Amount)
		}
		if sum.Sub(parent.Amount).Abs().GreaterThan(splitTolerance) {
			return fmt.Errorf("split components sum to %s, parent amount is %s: %w",
				sum.StringFixed(2), parent.Amount.StringFixed(2), ErrIntegrity)
		}

		for _, c := range components {
			child := model.Transaction{
				Date:        parent.Date,
				Amount:      c.Amount,
				Description: c.Description,
				Reference:   parent.Reference,
				Status:      model.StatusCoded,
				Category:    c.Category,
				TenantID:    c.TenantID,
				LandlordID:  c.LandlordID,
				AccountID:   parent.AccountID, // same bank account; cash moved once, via the parent
				ParentID:    parent.ID,
			}
			if err := tx.CreateTransaction(&child); err != nil {
				return err
			}
			if err := a.Apply(tx, &child); err != nil {
				return err
			}
		}

		parent.Status = model.StatusSplit
		if err := tx.UpdateTransaction(&parent); err != nil {
			return err
		}

		a.log.Info().Int64("tx", parent.ID).Int("components", len(components)).Msg("split bulk transaction")
		return tx.AppendAudit(model.AuditEntry{
			Action:  "split",
			Details: fmt.Sprintf("split into %d components", len(components)),
			TxID:    parent.ID,
		})
	})
}
