// Package ledger implements the allocation engine: moving transactions from
// uncoded through coded to allocated or split, posting their effects to
// accounts, and reversing those effects on uncoding.
package ledger

import "errors"

// Sentinel errors for the failure taxonomy. Callers test with errors.Is;
// none of these are swallowed inside the engine.
var (
	// ErrMissingSystemAccount means a required system account (bank,
	// agency income, VAT, landlord payments) does not exist. Fatal to the
	// operation; nothing is posted.
	ErrMissingSystemAccount = errors.New("required system account missing")

	// ErrNotFound means a referenced tenant, landlord, property, account
	// or transaction is absent.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity means an invariant would be violated: split components
	// not summing to the parent amount, or re-allocating an already
	// allocated transaction.
	ErrIntegrity = errors.New("integrity violation")

	// ErrClosedPeriod means uncoding was requested for a transaction in a
	// period a landlord payout has already closed.
	ErrClosedPeriod = errors.New("period closed by payout")
)
