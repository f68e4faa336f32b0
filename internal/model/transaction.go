package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxStatus represents the lifecycle state of a transaction.
type TxStatus string

const (
	StatusUncoded   TxStatus = "uncoded"
	StatusCoded     TxStatus = "coded"
	StatusAllocated TxStatus = "allocated"
	StatusSplit     TxStatus = "split"
)

// TxCategory classifies what a transaction represents.
type TxCategory string

const (
	CategoryRent              TxCategory = "rent"
	CategoryRentCharge        TxCategory = "rent_charge"
	CategoryRentLandlordShare TxCategory = "rent_landlord_share"
	CategoryRentUtilityShare  TxCategory = "rent_utility_share"
	CategoryExpense           TxCategory = "expense"
	CategoryPayment           TxCategory = "payment"
	CategoryPayout            TxCategory = "payout"
	CategoryFee               TxCategory = "fee"
	CategoryVAT               TxCategory = "vat"
	CategoryOther             TxCategory = "other"
)

// Transaction is an atomic money movement. Positive amounts are inflows to
// the linked account, negative amounts are outflows. A transaction produced
// by splitting another carries the parent's ID in ParentID; once children
// exist they replace the parent's effect on downstream owners.
type Transaction struct {
	ID          int64
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Reference   string
	Status      TxStatus
	Category    TxCategory
	TenantID    int64 // 0 = no tenant link
	LandlordID  int64 // 0 = no landlord link
	AccountID   int64 // 0 = not yet posted to an account
	BatchID     int64 // rent charge batch, 0 = none
	ParentID    int64 // 0 = top-level
	IsBulk      bool
	Reviewed    bool
}

// RentChargeBatch groups the rent-charge transactions created in one
// generation run so they can be rolled back together.
type RentChargeBatch struct {
	ID          int64
	CreatedAt   time.Time
	Description string
}

// AuditEntry is one append-only record of a ledger action.
type AuditEntry struct {
	ID        int64
	Timestamp time.Time
	Action    string
	Details   string
	TxID      int64 // 0 = not tied to a single transaction
}
