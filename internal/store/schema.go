package store

import (
	"database/sql"
	"fmt"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

// Schema defines the ledger tables. Money amounts are stored as exact
// decimal strings and summed in Go, never as SQLite floats.
const Schema = `
CREATE TABLE IF NOT EXISTS account (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    balance TEXT NOT NULL DEFAULT '0',
    tenant_id INTEGER NOT NULL DEFAULT 0,
    landlord_id INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_account_tenant ON account(tenant_id);
CREATE INDEX IF NOT EXISTS idx_account_landlord ON account(landlord_id);
CREATE INDEX IF NOT EXISTS idx_account_type ON account(type);

CREATE TABLE IF NOT EXISTS tx (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,                -- YYYY-MM-DD
    amount TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    reference TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'uncoded',
    category TEXT NOT NULL DEFAULT '',
    tenant_id INTEGER NOT NULL DEFAULT 0,
    landlord_id INTEGER NOT NULL DEFAULT 0,
    account_id INTEGER NOT NULL DEFAULT 0,
    batch_id INTEGER NOT NULL DEFAULT 0,
    parent_id INTEGER NOT NULL DEFAULT 0,
    is_bulk INTEGER NOT NULL DEFAULT 0,
    reviewed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tx_account ON tx(account_id);
CREATE INDEX IF NOT EXISTS idx_tx_tenant ON tx(tenant_id);
CREATE INDEX IF NOT EXISTS idx_tx_landlord ON tx(landlord_id);
CREATE INDEX IF NOT EXISTS idx_tx_parent ON tx(parent_id);
CREATE INDEX IF NOT EXISTS idx_tx_date ON tx(date);
CREATE INDEX IF NOT EXISTS idx_tx_status ON tx(status);
CREATE INDEX IF NOT EXISTS idx_tx_category ON tx(category);
CREATE INDEX IF NOT EXISTS idx_tx_batch ON tx(batch_id);

CREATE TABLE IF NOT EXISTS tenant (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL DEFAULT '',
    reference TEXT NOT NULL DEFAULT '',
    property_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS landlord (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    reference TEXT NOT NULL DEFAULT '',
    commission_rate TEXT NOT NULL DEFAULT '0.1'
);

CREATE TABLE IF NOT EXISTS property (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    address TEXT NOT NULL,
    rent_amount TEXT NOT NULL DEFAULT '0',
    landlord_id INTEGER NOT NULL DEFAULT 0,
    landlord_portion TEXT NOT NULL DEFAULT '0',
    utility_account_id INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_property_landlord ON property(landlord_id);

CREATE TABLE IF NOT EXISTS rent_charge_batch (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    tx_id INTEGER NOT NULL DEFAULT 0
);
`

// System account names. These are the singleton buckets the allocator and
// payout engine post against; Bootstrap guarantees they exist.
const (
	NameBank             = "Master Bank Account"
	NameSuspense         = "Suspense Account"
	NameAgencyIncome     = "Agency Income"
	NameAgencyExpense    = "Agency Expense"
	NameVAT              = "VAT Account"
	NameLandlordPayments = "Landlord Payments"
	NameUtility          = "Utility Account"
)

// SystemAccounts holds the resolved IDs of the fixed system accounts. It is
// loaded once at startup and injected into the services that need it.
type SystemAccounts struct {
	BankID             int64
	SuspenseID         int64
	AgencyIncomeID     int64
	AgencyExpenseID    int64
	VATID              int64
	LandlordPaymentsID int64
	UtilityID          int64
}

// Complete reports whether every required system account was resolved.
func (sa SystemAccounts) Complete() bool {
	return sa.BankID != 0 && sa.SuspenseID != 0 && sa.AgencyIncomeID != 0 &&
		sa.AgencyExpenseID != 0 && sa.VATID != 0 && sa.LandlordPaymentsID != 0
}

var systemChart = []struct {
	name string
	typ  model.AccountType
}{
	{NameBank, model.AccountTypeAsset},
	{NameSuspense, model.AccountTypeSuspense},
	{NameAgencyIncome, model.AccountTypeAgencyIncome},
	{NameAgencyExpense, model.AccountTypeAgencyExpense},
	{NameVAT, model.AccountTypeVATPayable},
	{NameLandlordPayments, model.AccountTypeLiability},
	{NameUtility, model.AccountTypeUtility},
}

// Bootstrap creates any missing system accounts. Idempotent.
func (t *Tx) Bootstrap() error {
	for _, sys := range systemChart {
		_, err := t.accountByName(sys.name)
		if err == sql.ErrNoRows {
			a := model.Account{Name: sys.name, Type: sys.typ}
			if err := t.CreateAccount(&a); err != nil {
				return fmt.Errorf("creating %s: %w", sys.name, err)
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// System resolves the system account registry. Missing accounts come back as
// zero IDs; callers decide whether that is fatal.
func (t *Tx) System() (SystemAccounts, error) {
	var sa SystemAccounts
	targets := []struct {
		name string
		id   *int64
	}{
		{NameBank, &sa.BankID},
		{NameSuspense, &sa.SuspenseID},
		{NameAgencyIncome, &sa.AgencyIncomeID},
		{NameAgencyExpense, &sa.AgencyExpenseID},
		{NameVAT, &sa.VATID},
		{NameLandlordPayments, &sa.LandlordPaymentsID},
		{NameUtility, &sa.UtilityID},
	}
	for _, tgt := range targets {
		a, err := t.accountByName(tgt.name)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return SystemAccounts{}, err
		}
		*tgt.id = a.ID
	}
	return sa, nil
}
