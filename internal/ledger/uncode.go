package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// Uncode reverses a transaction's allocation: every child's balance effect
// is undone and the child deleted, the parent's own postings are undone,
// and the parent returns to uncoded with its coding cleared. Passing a
// child's ID uncodes its parent. Fails with ErrClosedPeriod if a payout has
// been processed for an affected landlord on or after the transaction date.
func (a *Allocator) Uncode(txID int64) error {
	return a.store.Update(func(tx *store.Tx) error {
		tr, ok, err := tx.GetTransaction(txID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transaction %d: %w", txID, ErrNotFound)
		}
		if tr.ParentID != 0 {
			parent, ok, err := tx.GetTransaction(tr.ParentID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("parent transaction %d: %w", tr.ParentID, ErrNotFound)
			}
			tr = parent
		}
		if tr.Status == model.StatusUncoded {
			return fmt.Errorf("transaction %d is not allocated: %w", tr.ID, ErrIntegrity)
		}

		affected, err := a.affectedLandlords(tx, tr)
		if err != nil {
			return err
		}
		for _, llID := range affected {
			closed, err := tx.PayoutExistsOnOrAfter(llID, tr.Date)
			if err != nil {
				return err
			}
			if closed {
				return fmt.Errorf("landlord %d paid out on or after %s: %w",
					llID, tr.Date.Format("2006-01-02"), ErrClosedPeriod)
			}
		}

		if err := a.reverseChildren(tx, tr.ID); err != nil {
			return err
		}
		// A transaction still in coded state has only been linked to the
		// bank; its category effects were never posted.
		if tr.Status != model.StatusCoded {
			if err := a.reverseOwnEffects(tx, tr); err != nil {
				return err
			}
		}

		// Unlink from the bank account and give back the cash posting, so a
		// later re-allocation counts it exactly once again.
		if tr.AccountID == a.sys.BankID {
			if err := tx.AddToBalance(a.sys.BankID, tr.Amount.Neg()); err != nil {
				return err
			}
		}

		tr.Status = model.StatusUncoded
		tr.Category = ""
		tr.TenantID = 0
		tr.LandlordID = 0
		tr.AccountID = 0
		if err := tx.UpdateTransaction(&tr); err != nil {
			return err
		}

		a.log.Info().Int64("tx", tr.ID).Msg("uncoded transaction")
		return tx.AppendAudit(model.AuditEntry{
			Action:  "uncode",
			Details: "reversed allocation and reset to uncoded",
			TxID:    tr.ID,
		})
	})
}

// reverseChildren undoes and deletes all descendants, depth first.
func (a *Allocator) reverseChildren(tx *store.Tx, parentID int64) error {
	children, err := tx.ChildrenOf(parentID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := a.reverseChildren(tx, child.ID); err != nil {
			return err
		}
		if err := a.reverseOne(tx, child); err != nil {
			return err
		}
		if err := tx.DeleteTransaction(child.ID); err != nil {
			return err
		}
	}
	return nil
}

// reverseOne undoes the balance effect of a single child transaction.
func (a *Allocator) reverseOne(tx *store.Tx, tr model.Transaction) error {
	// Share, fee and utility children are posted straight to their target
	// account; reversing that one posting covers them fully. A landlord
	// account adjusted here must not be adjusted again via the landlord
	// link below.
	if tr.AccountID != 0 && tr.AccountID != a.sys.BankID {
		return tx.AddToBalance(tr.AccountID, tr.Amount.Neg())
	}
	return a.reverseOwnEffects(tx, tr)
}

// reverseOwnEffects undoes the effects a transaction applied through the
// allocation branches (tenant credit, direct landlord postings).
func (a *Allocator) reverseOwnEffects(tx *store.Tx, tr model.Transaction) error {
	switch tr.Category {
	case model.CategoryRentCharge:
		if tr.TenantID == 0 {
			return nil
		}
		acct, ok, err := tx.AccountByTenant(tr.TenantID)
		if err != nil || !ok {
			return err
		}
		return tx.AddToBalance(acct.ID, tr.Amount.Abs())

	case model.CategoryRent:
		if tr.TenantID != 0 {
			acct, ok, err := tx.AccountByTenant(tr.TenantID)
			if err != nil {
				return err
			}
			if ok {
				if err := tx.AddToBalance(acct.ID, tr.Amount.Neg()); err != nil {
					return err
				}
			}
		}
		// A landlord link on a rent transaction means it was credited in
		// full without a split.
		if tr.LandlordID != 0 {
			return a.addToLandlord(tx, tr.LandlordID, tr.Amount.Neg())
		}
		return nil

	case model.CategoryExpense:
		if tr.LandlordID == 0 {
			return nil
		}
		return a.addToLandlord(tx, tr.LandlordID, tr.Amount.Neg())

	case model.CategoryPayment:
		if tr.LandlordID == 0 {
			return nil
		}
		return a.addToLandlord(tx, tr.LandlordID, tr.Amount.Abs())

	case model.CategoryPayout:
		if tr.LandlordID == 0 {
			return nil
		}
		return a.addToLandlord(tx, tr.LandlordID, tr.Amount.Neg())
	}
	return nil
}

func (a *Allocator) addToLandlord(tx *store.Tx, landlordID int64, delta decimal.Decimal) error {
	llAcct, ok, err := tx.AccountByLandlord(landlordID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("landlord %d account: %w", landlordID, ErrNotFound)
	}
	return tx.AddToBalance(llAcct.ID, delta)
}

// affectedLandlords collects every landlord whose position the transaction
// or its children touched.
func (a *Allocator) affectedLandlords(tx *store.Tx, tr model.Transaction) ([]int64, error) {
	seen := map[int64]bool{}
	var out []int64
	add := func(id int64) {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	add(tr.LandlordID)

	children, err := tx.ChildrenOf(tr.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		add(c.LandlordID)
	}

	// A split rent transaction carries no landlord link itself; resolve it
	// through the tenant's property.
	if tr.Category == model.CategoryRent && tr.TenantID != 0 {
		tenant, ok, err := tx.GetTenant(tr.TenantID)
		if err != nil {
			return nil, err
		}
		if ok && tenant.PropertyID != 0 {
			prop, ok, err := tx.GetProperty(tenant.PropertyID)
			if err != nil {
				return nil, err
			}
			if ok {
				add(prop.LandlordID)
			}
		}
	}
	return out, nil
}
