package ledger

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// Allocator posts a transaction's ledger effects. The system account
// registry is resolved once at startup and injected, never looked up by
// name at allocation time.
type Allocator struct {
	store *store.Store
	sys   store.SystemAccounts
	log   zerolog.Logger
}

// NewAllocator creates an Allocator.
func NewAllocator(st *store.Store, sys store.SystemAccounts, log zerolog.Logger) *Allocator {
	return &Allocator{store: st, sys: sys, log: log}
}

// Allocate loads a transaction and applies its ledger effects in one unit
// of work. Callers invoke it exactly once per status transition;
// re-allocating an allocated or split transaction fails with ErrIntegrity.
func (a *Allocator) Allocate(txID int64) error {
	return a.store.Update(func(tx *store.Tx) error {
		tr, ok, err := tx.GetTransaction(txID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transaction %d: %w", txID, ErrNotFound)
		}
		return a.Apply(tx, &tr)
	})
}

// Apply allocates a transaction inside an existing unit of work. The split
// and rent-charge services reuse it so their child allocations share the
// caller's transactional boundary.
func (a *Allocator) Apply(tx *store.Tx, tr *model.Transaction) error {
	if !a.sys.Complete() {
		return ErrMissingSystemAccount
	}
	if tr.Status == model.StatusAllocated || tr.Status == model.StatusSplit {
		return fmt.Errorf("transaction %d already allocated: %w", tr.ID, ErrIntegrity)
	}

	// Rent charges are accrual entries between agency and tenant: they
	// raise the tenant's debt and never touch the bank account.
	if tr.Category == model.CategoryRentCharge && tr.TenantID != 0 {
		return a.applyRentCharge(tx, tr)
	}

	// Every cash transaction is linked to the bank account the first time
	// it enters the ledger.
	if tr.AccountID == 0 {
		tr.AccountID = a.sys.BankID
		if err := tx.AddToBalance(a.sys.BankID, tr.Amount); err != nil {
			return err
		}
	}

	if tr.Status != model.StatusCoded {
		// Not yet coded: it stays visible on the bank account.
		return tx.UpdateTransaction(tr)
	}

	if tr.IsBulk {
		// Awaiting a manual split into components.
		tr.Status = model.StatusSplit
		if err := tx.UpdateTransaction(tr); err != nil {
			return err
		}
		return a.audit(tx, tr, "marked bulk transaction for splitting")
	}

	var err error
	switch {
	case tr.Category == model.CategoryRent && tr.TenantID != 0:
		err = a.applyRent(tx, tr)
	case tr.Category == model.CategoryExpense && tr.LandlordID != 0:
		err = a.applyLandlordDelta(tx, tr, tr.Amount)
	case tr.Category == model.CategoryPayment && tr.LandlordID != 0:
		err = a.applyLandlordDelta(tx, tr, tr.Amount.Abs().Neg())
	case tr.Category == model.CategoryPayout && tr.LandlordID != 0:
		err = a.applyLandlordDelta(tx, tr, tr.Amount)
	default:
		tr.Status = model.StatusAllocated
		err = tx.UpdateTransaction(tr)
	}
	if err != nil {
		return err
	}

	a.log.Info().
		Int64("tx", tr.ID).
		Str("category", string(tr.Category)).
		Str("status", string(tr.Status)).
		Msg("allocated transaction")
	return a.audit(tx, tr, fmt.Sprintf("allocated as %s", tr.Category))
}

func (a *Allocator) applyRentCharge(tx *store.Tx, tr *model.Transaction) error {
	acct, ok, err := tx.AccountByTenant(tr.TenantID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("tenant %d account: %w", tr.TenantID, ErrNotFound)
	}
	if err := tx.AddToBalance(acct.ID, tr.Amount.Abs().Neg()); err != nil {
		return err
	}
	tr.Status = model.StatusAllocated
	if err := tx.UpdateTransaction(tr); err != nil {
		return err
	}
	return a.audit(tx, tr, "charged rent to tenant account")
}

// applyRent credits the tenant the full paid amount, then splits the
// proceeds between landlord and utility account or between landlord and
// agency commission.
func (a *Allocator) applyRent(tx *store.Tx, tr *model.Transaction) error {
	tenant, ok, err := tx.GetTenant(tr.TenantID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("tenant %d: %w", tr.TenantID, ErrNotFound)
	}
	tenantAcct, ok, err := tx.AccountByTenant(tenant.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("tenant %d account: %w", tenant.ID, ErrNotFound)
	}

	// The tenant is always credited the full amount to clear their debt.
	if err := tx.AddToBalance(tenantAcct.ID, tr.Amount); err != nil {
		return err
	}

	if tenant.PropertyID == 0 {
		return fmt.Errorf("tenant %d has no property: %w", tenant.ID, ErrNotFound)
	}
	prop, ok, err := tx.GetProperty(tenant.PropertyID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("property %d: %w", tenant.PropertyID, ErrNotFound)
	}
	landlord, ok, err := tx.GetLandlord(prop.LandlordID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("landlord %d: %w", prop.LandlordID, ErrNotFound)
	}
	llAcct, ok, err := tx.AccountByLandlord(landlord.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("landlord %d account: %w", landlord.ID, ErrNotFound)
	}

	one := decimal.NewFromInt(1)
	if tr.Amount.IsPositive() && prop.LandlordPortion.IsPositive() &&
		prop.LandlordPortion.LessThan(one) && prop.UtilityAccountID != 0 {
		return a.splitRentUtility(tx, tr, tenant, prop, landlord, llAcct)
	}
	if landlord.CommissionRate.IsPositive() {
		return a.splitRentCommission(tx, tr, tenant, landlord, llAcct)
	}

	// No commission: the landlord takes the full amount, no split.
	if err := tx.AddToBalance(llAcct.ID, tr.Amount); err != nil {
		return err
	}
	tr.LandlordID = landlord.ID
	tr.Status = model.StatusAllocated
	return tx.UpdateTransaction(tr)
}

// splitRentUtility divides rent between the landlord's portion and the
// property's utility account, emitting a child transaction for each share.
func (a *Allocator) splitRentUtility(tx *store.Tx, tr *model.Transaction, tenant model.Tenant,
	prop model.Property, landlord model.Landlord, llAcct model.Account) error {

	utilAcct, ok, err := tx.GetAccount(prop.UtilityAccountID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("utility account %d: %w", prop.UtilityAccountID, ErrNotFound)
	}

	landlordShare := tr.Amount.Mul(prop.LandlordPortion)
	utilityShare := tr.Amount.Sub(landlordShare) // conservation by construction

	if err := tx.AddToBalance(llAcct.ID, landlordShare); err != nil {
		return err
	}
	if err := tx.AddToBalance(utilAcct.ID, utilityShare); err != nil {
		return err
	}

	children := []model.Transaction{
		{
			Date:        tr.Date,
			Amount:      landlordShare,
			Description: fmt.Sprintf("Landlord share of rent from %s", tenant.Name),
			Reference:   tr.Reference,
			Status:      model.StatusAllocated,
			Category:    model.CategoryRentLandlordShare,
			LandlordID:  landlord.ID,
			AccountID:   llAcct.ID,
			ParentID:    tr.ID,
		},
		{
			Date:        tr.Date,
			Amount:      utilityShare,
			Description: fmt.Sprintf("Utility share of rent from %s", tenant.Name),
			Reference:   tr.Reference,
			Status:      model.StatusAllocated,
			Category:    model.CategoryRentUtilityShare,
			AccountID:   utilAcct.ID,
			ParentID:    tr.ID,
		},
	}
	for i := range children {
		if err := tx.CreateTransaction(&children[i]); err != nil {
			return err
		}
	}

	tr.Status = model.StatusSplit
	return tx.UpdateTransaction(tr)
}

// splitRentCommission takes the agency's commission out of the rent and
// credits the landlord the remainder, emitting a child transaction for each.
func (a *Allocator) splitRentCommission(tx *store.Tx, tr *model.Transaction, tenant model.Tenant,
	landlord model.Landlord, llAcct model.Account) error {

	commission := tr.Amount.Mul(landlord.CommissionRate)
	landlordShare := tr.Amount.Sub(commission)

	if err := tx.AddToBalance(llAcct.ID, landlordShare); err != nil {
		return err
	}
	if err := tx.AddToBalance(a.sys.AgencyIncomeID, commission); err != nil {
		return err
	}

	children := []model.Transaction{
		{
			Date:        tr.Date,
			Amount:      landlordShare,
			Description: fmt.Sprintf("Landlord share of rent from %s", tenant.Name),
			Reference:   tr.Reference,
			Status:      model.StatusAllocated,
			Category:    model.CategoryRentLandlordShare,
			LandlordID:  landlord.ID,
			AccountID:   llAcct.ID,
			ParentID:    tr.ID,
		},
		{
			Date:        tr.Date,
			Amount:      commission,
			Description: fmt.Sprintf("Commission from %s's rent", tenant.Name),
			Reference:   tr.Reference,
			Status:      model.StatusAllocated,
			Category:    model.CategoryFee,
			AccountID:   a.sys.AgencyIncomeID,
			ParentID:    tr.ID,
		},
	}
	for i := range children {
		if err := tx.CreateTransaction(&children[i]); err != nil {
			return err
		}
	}

	tr.Status = model.StatusSplit
	return tx.UpdateTransaction(tr)
}

// applyLandlordDelta posts an expense, payment or payout against the
// landlord's account and marks the transaction allocated.
func (a *Allocator) applyLandlordDelta(tx *store.Tx, tr *model.Transaction, delta decimal.Decimal) error {
	llAcct, ok, err := tx.AccountByLandlord(tr.LandlordID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("landlord %d account: %w", tr.LandlordID, ErrNotFound)
	}
	if err := tx.AddToBalance(llAcct.ID, delta); err != nil {
		return err
	}
	tr.Status = model.StatusAllocated
	return tx.UpdateTransaction(tr)
}

func (a *Allocator) audit(tx *store.Tx, tr *model.Transaction, details string) error {
	return tx.AppendAudit(model.AuditEntry{
		Action:  "allocate",
		Details: details,
		TxID:    tr.ID,
	})
}
