package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant rents at most one property and pays rent against a tenant account.
type Tenant struct {
	ID         int64
	Name       string
	Email      string
	Phone      string
	StartDate  time.Time // zero = unknown; also sets the monthly charge day
	Reference  string    // bank reference code used for exact matching
	PropertyID int64     // 0 = not placed
}

// Landlord owns properties and receives payouts net of commission and VAT.
type Landlord struct {
	ID             int64
	Name           string
	Email          string
	Phone          string
	Address        string
	Reference      string
	CommissionRate decimal.Decimal // agency cut of rent, e.g. 0.1
}

// Property belongs to one landlord. When LandlordPortion is set below 1.0
// and a utility account is linked, rent is split between the landlord and
// the utility account instead of taking commission.
type Property struct {
	ID               int64
	Address          string
	RentAmount       decimal.Decimal
	LandlordID       int64
	LandlordPortion  decimal.Decimal // zero = no utility split
	UtilityAccountID int64           // 0 = none
}
