// Package payout aggregates a landlord's period activity and posts the
// commission, VAT and net payout transaction set.
package payout

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// Engine computes and posts landlord payouts. The clock is injected so the
// payout date stamp is deterministic under test.
type Engine struct {
	store *store.Store
	sys   store.SystemAccounts
	now   func() time.Time
	log   zerolog.Logger
}

// New creates a payout Engine. A nil clock uses time.Now.
func New(st *store.Store, sys store.SystemAccounts, now func() time.Time, log zerolog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: st, sys: sys, now: now, log: log}
}

// Result summarizes one processed payout.
type Result struct {
	LandlordID    int64
	RentIncome    decimal.Decimal // commission base
	Commission    decimal.Decimal
	VAT           decimal.Decimal
	TotalExpenses decimal.Decimal // negative
	Amount        decimal.Decimal // net payout to the landlord
}

// Process computes and posts a landlord's payout for [start, end]. The
// aggregation reads and the postings share one unit of work, so a
// concurrent allocation can be neither missed nor double counted.
func (e *Engine) Process(landlordID int64, start, end time.Time, vatRate decimal.Decimal) (Result, error) {
	if !e.sys.Complete() {
		return Result{}, ledger.ErrMissingSystemAccount
	}

	var res Result
	err := e.store.Update(func(tx *store.Tx) error {
		landlord, ok, err := tx.GetLandlord(landlordID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("landlord %d: %w", landlordID, ledger.ErrNotFound)
		}
		llAcct, ok, err := tx.AccountByLandlord(landlord.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("landlord %d account: %w", landlord.ID, ledger.ErrNotFound)
		}

		txs, err := tx.LandlordTransactionsInRange(landlord.ID, start, end)
		if err != nil {
			return err
		}
		tenantIDs, err := tx.TenantIDsForLandlord(landlord.ID)
		if err != nil {
			return err
		}
		rentTxs, err := tx.TenantRentInRange(tenantIDs, start, end)
		if err != nil {
			return err
		}
		// An unsplit rent carries both tenant and landlord links and shows
		// up in both queries; count it once.
		seen := make(map[int64]bool, len(txs))
		for _, t := range txs {
			seen[t.ID] = true
		}
		for _, t := range rentTxs {
			if !seen[t.ID] {
				txs = append(txs, t)
			}
		}

		// Commission base: the landlord's true rent take. Split rent
		// parents are excluded because their landlord-share children
		// already carry the amount.
		rentIncome := decimal.Zero
		totalExpenses := decimal.Zero
		for _, t := range txs {
			switch {
			case t.Category == model.CategoryRent && t.Status != model.StatusSplit:
				rentIncome = rentIncome.Add(t.Amount)
			case t.Category == model.CategoryRentLandlordShare:
				rentIncome = rentIncome.Add(t.Amount)
			case t.Category == model.CategoryExpense:
				totalExpenses = totalExpenses.Add(t.Amount)
			}
		}

		commission := rentIncome.Mul(landlord.CommissionRate)
		vat := commission.Mul(vatRate)
		amount := rentIncome.Add(totalExpenses).Sub(commission).Sub(vat)

		today := e.now()
		postings := []struct {
			accountID  int64
			amount     decimal.Decimal
			desc       string
			category   model.TxCategory
			landlordID int64
		}{
			{llAcct.ID, commission.Neg(), "Agency commission", model.CategoryFee, landlord.ID},
			{llAcct.ID, vat.Neg(), "VAT on commission", model.CategoryVAT, landlord.ID},
			{llAcct.ID, amount.Neg(), fmt.Sprintf("Payout to %s", landlord.Name), model.CategoryPayout, landlord.ID},
			{e.sys.AgencyIncomeID, commission, "Agency commission", model.CategoryFee, 0},
			{e.sys.VATID, vat, "VAT on commission", model.CategoryVAT, 0},
			// Contra posting so the payout does not double count against
			// the landlord account in reports.
			{e.sys.LandlordPaymentsID, amount.Neg(), fmt.Sprintf("Payout to %s", landlord.Name), model.CategoryPayout, 0},
		}

		for _, p := range postings {
			posted := model.Transaction{
				Date:        today,
				Amount:      p.amount,
				Description: p.desc,
				Status:      model.StatusAllocated,
				Category:    p.category,
				LandlordID:  p.landlordID,
				AccountID:   p.accountID,
			}
			if err := tx.CreateTransaction(&posted); err != nil {
				return err
			}
			if err := tx.AddToBalance(p.accountID, p.amount); err != nil {
				return err
			}
		}

		if err := tx.AppendAudit(model.AuditEntry{
			Action: "payout",
			Details: fmt.Sprintf("landlord %d: rent %s, commission %s, vat %s, payout %s",
				landlord.ID, rentIncome.StringFixed(2), commission.StringFixed(2),
				vat.StringFixed(2), amount.StringFixed(2)),
		}); err != nil {
			return err
		}

		res = Result{
			LandlordID:    landlord.ID,
			RentIncome:    rentIncome,
			Commission:    commission,
			VAT:           vat,
			TotalExpenses: totalExpenses,
			Amount:        amount,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	e.log.Info().
		Int64("landlord", res.LandlordID).
		Str("commission", res.Commission.StringFixed(2)).
		Str("vat", res.VAT.StringFixed(2)).
		Str("amount", res.Amount.StringFixed(2)).
		Msg("processed payout")
	return res, nil
}
