package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

const accountCols = "id, name, type, balance, tenant_id, landlord_id"

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	var balance string
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &balance, &a.TenantID, &a.LandlordID); err != nil {
		return model.Account{}, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", balance, err)
	}
	a.Balance = b
	return a, nil
}

// CreateAccount inserts an account and sets its ID.
func (t *Tx) CreateAccount(a *model.Account) error {
	res, err := t.tx.Exec(
		`INSERT INTO account (name, type, balance, tenant_id, landlord_id) VALUES (?, ?, ?, ?, ?)`,
		a.Name, string(a.Type), a.Balance.String(), a.TenantID, a.LandlordID,
	)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("account insert id: %w", err)
	}
	a.ID = id
	return nil
}

// GetAccount returns an account by ID.
func (t *Tx) GetAccount(id int64) (model.Account, bool, error) {
	row := t.tx.QueryRow(`SELECT `+accountCols+` FROM account WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("getting account %d: %w", id, err)
	}
	return a, true, nil
}

func (t *Tx) accountByName(name string) (model.Account, error) {
	row := t.tx.QueryRow(`SELECT `+accountCols+` FROM account WHERE name = ? ORDER BY id LIMIT 1`, name)
	return scanAccount(row)
}

// AccountByTenant returns the account owned by a tenant.
func (t *Tx) AccountByTenant(tenantID int64) (model.Account, bool, error) {
	row := t.tx.QueryRow(`SELECT `+accountCols+` FROM account WHERE tenant_id = ? ORDER BY id LIMIT 1`, tenantID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("getting tenant %d account: %w", tenantID, err)
	}
	return a, true, nil
}

// AccountByLandlord returns the account owned by a landlord.
func (t *Tx) AccountByLandlord(landlordID int64) (model.Account, bool, error) {
	row := t.tx.QueryRow(`SELECT `+accountCols+` FROM account WHERE landlord_id = ? AND type = ? ORDER BY id LIMIT 1`,
		landlordID, string(model.AccountTypeLandlord))
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("getting landlord %d account: %w", landlordID, err)
	}
	return a, true, nil
}

// AllAccounts returns every account ordered by ID.
func (t *Tx) AllAccounts() ([]model.Account, error) {
	rows, err := t.tx.Query(`SELECT ` + accountCols + ` FROM account ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

// AddToBalance applies a signed delta to an account's cached balance. The
// read-modify-write happens inside the surrounding write transaction, so
// concurrent mutations of the same account serialize.
func (t *Tx) AddToBalance(accountID int64, delta decimal.Decimal) error {
	row := t.tx.QueryRow(`SELECT balance FROM account WHERE id = ?`, accountID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		return fmt.Errorf("reading balance of account %d: %w", accountID, err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parsing balance %q: %w", raw, err)
	}
	return t.SetBalance(accountID, balance.Add(delta))
}

// SetBalance overwrites an account's cached balance.
func (t *Tx) SetBalance(accountID int64, balance decimal.Decimal) error {
	res, err := t.tx.Exec(`UPDATE account SET balance = ? WHERE id = ?`, balance.String(), accountID)
	if err != nil {
		return fmt.Errorf("updating balance of account %d: %w", accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", accountID, sql.ErrNoRows)
	}
	return nil
}
