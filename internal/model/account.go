package model

import "github.com/shopspring/decimal"

// AccountType classifies ledger accounts.
type AccountType string

const (
	AccountTypeAsset         AccountType = "asset"
	AccountTypeTenant        AccountType = "tenant"
	AccountTypeLandlord      AccountType = "landlord"
	AccountTypeAgencyIncome  AccountType = "agency_income"
	AccountTypeAgencyExpense AccountType = "agency_expense"
	AccountTypeSuspense      AccountType = "suspense"
	AccountTypeLiability     AccountType = "liability"
	AccountTypeUtility       AccountType = "utility"
	AccountTypeVATPayable    AccountType = "vat_payable"
)

// Account is a named ledger bucket. Balance is a cache derived from the
// account's transactions; the recalculator can rebuild it from scratch.
type Account struct {
	ID         int64
	Name       string
	Type       AccountType
	Balance    decimal.Decimal
	TenantID   int64 // 0 = not tenant-owned
	LandlordID int64 // 0 = not landlord-owned
}
