// Package recalc rebuilds cached account balances from the transactions
// themselves. It exists to repair drift caused by partial allocations or
// manual edits; running it twice in a row changes nothing.
package recalc

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// Recalculator derives account balances by summing transactions.
type Recalculator struct {
	store *store.Store
	sys   store.SystemAccounts
	log   zerolog.Logger
}

// New creates a Recalculator.
func New(st *store.Store, sys store.SystemAccounts, log zerolog.Logger) *Recalculator {
	return &Recalculator{store: st, sys: sys, log: log}
}

// Recalculate rebuilds the cached balance of one account, or of every
// account when accountID is 0. The bank account is always recalculated
// last and independently.
func (r *Recalculator) Recalculate(accountID int64) error {
	return r.store.Update(func(tx *store.Tx) error {
		if accountID != 0 {
			acct, ok, err := tx.GetAccount(accountID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("account %d: %w", accountID, ledger.ErrNotFound)
			}
			return r.recalcOne(tx, acct)
		}

		accts, err := tx.AllAccounts()
		if err != nil {
			return err
		}
		for _, acct := range accts {
			if acct.ID == r.sys.BankID {
				continue
			}
			if err := r.recalcOne(tx, acct); err != nil {
				return err
			}
		}
		if r.sys.BankID != 0 {
			bank, ok, err := tx.GetAccount(r.sys.BankID)
			if err != nil {
				return err
			}
			if ok {
				if err := r.recalcOne(tx, bank); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *Recalculator) recalcOne(tx *store.Tx, acct model.Account) error {
	balance, err := r.derive(tx, acct)
	if err != nil {
		return err
	}
	if err := tx.SetBalance(acct.ID, balance); err != nil {
		return err
	}
	r.log.Debug().
		Int64("account", acct.ID).
		Str("name", acct.Name).
		Str("balance", balance.StringFixed(2)).
		Msg("recalculated balance")
	return nil
}

func (r *Recalculator) derive(tx *store.Tx, acct model.Account) (decimal.Decimal, error) {
	switch {
	case acct.ID == r.sys.BankID:
		// Cash position: every top-level transaction that flowed through
		// the bank, children excluded since they only redistribute.
		return tx.SumBankCash(acct.ID)

	case acct.TenantID != 0:
		// What the tenant has paid minus what they have been charged.
		rent, err := tx.SumByTenantCategory(acct.TenantID, model.CategoryRent)
		if err != nil {
			return decimal.Zero, err
		}
		charges, err := tx.SumByTenantCategory(acct.TenantID, model.CategoryRentCharge)
		if err != nil {
			return decimal.Zero, err
		}
		return rent.Sub(charges.Abs()), nil

	case acct.Type == model.AccountTypeLandlord && acct.LandlordID != 0:
		return tx.SumByLandlord(acct.LandlordID)

	default:
		return tx.SumByAccount(acct.ID)
	}
}
