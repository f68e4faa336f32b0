package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

const dateFormat = "2006-01-02"

const txCols = "id, date, amount, description, reference, status, category, tenant_id, landlord_id, account_id, batch_id, parent_id, is_bulk, reviewed"

func scanTx(row interface{ Scan(...any) error }) (model.Transaction, error) {
	var tr model.Transaction
	var date, amount string
	err := row.Scan(&tr.ID, &date, &amount, &tr.Description, &tr.Reference, &tr.Status,
		&tr.Category, &tr.TenantID, &tr.LandlordID, &tr.AccountID, &tr.BatchID,
		&tr.ParentID, &tr.IsBulk, &tr.Reviewed)
	if err != nil {
		return model.Transaction{}, err
	}
	tr.Date, err = time.Parse(dateFormat, date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", date, err)
	}
	tr.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	return tr, nil
}

// CreateTransaction inserts a transaction and sets its ID.
func (t *Tx) CreateTransaction(tr *model.Transaction) error {
	res, err := t.tx.Exec(
		`INSERT INTO tx (date, amount, description, reference, status, category, tenant_id, landlord_id, account_id, batch_id, parent_id, is_bulk, reviewed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.Date.Format(dateFormat), tr.Amount.String(), tr.Description, tr.Reference,
		string(tr.Status), string(tr.Category), tr.TenantID, tr.LandlordID,
		tr.AccountID, tr.BatchID, tr.ParentID, tr.IsBulk, tr.Reviewed,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction insert id: %w", err)
	}
	tr.ID = id
	return nil
}

// UpdateTransaction rewrites a transaction's mutable fields.
func (t *Tx) UpdateTransaction(tr *model.Transaction) error {
	_, err := t.tx.Exec(
		`UPDATE tx SET date = ?, amount = ?, description = ?, reference = ?, status = ?, category = ?,
		 tenant_id = ?, landlord_id = ?, account_id = ?, batch_id = ?, parent_id = ?, is_bulk = ?, reviewed = ?
		 WHERE id = ?`,
		tr.Date.Format(dateFormat), tr.Amount.String(), tr.Description, tr.Reference,
		string(tr.Status), string(tr.Category), tr.TenantID, tr.LandlordID,
		tr.AccountID, tr.BatchID, tr.ParentID, tr.IsBulk, tr.Reviewed, tr.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", tr.ID, err)
	}
	return nil
}

// GetTransaction returns a transaction by ID.
func (t *Tx) GetTransaction(id int64) (model.Transaction, bool, error) {
	row := t.tx.QueryRow(`SELECT `+txCols+` FROM tx WHERE id = ?`, id)
	tr, err := scanTx(row)
	if err == sql.ErrNoRows {
		return model.Transaction{}, false, nil
	}
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("getting transaction %d: %w", id, err)
	}
	return tr, true, nil
}

// DeleteTransaction removes a transaction row.
func (t *Tx) DeleteTransaction(id int64) error {
	if _, err := t.tx.Exec(`DELETE FROM tx WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	return nil
}

func (t *Tx) queryTxs(query string, args ...any) ([]model.Transaction, error) {
	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		tr, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tr)
	}
	return txs, rows.Err()
}

// ChildrenOf returns the child transactions of a parent, ordered by ID.
func (t *Tx) ChildrenOf(parentID int64) ([]model.Transaction, error) {
	return t.queryTxs(`SELECT `+txCols+` FROM tx WHERE parent_id = ? ORDER BY id`, parentID)
}

// TransactionsByAccount returns all transactions posted to an account.
func (t *Tx) TransactionsByAccount(accountID int64) ([]model.Transaction, error) {
	return t.queryTxs(`SELECT `+txCols+` FROM tx WHERE account_id = ? ORDER BY date, id`, accountID)
}

// TransactionsByStatus returns all transactions in a lifecycle state.
func (t *Tx) TransactionsByStatus(status model.TxStatus) ([]model.Transaction, error) {
	return t.queryTxs(`SELECT `+txCols+` FROM tx WHERE status = ? ORDER BY date, id`, string(status))
}

// TransactionsByBatch returns the rent charges created in one batch.
func (t *Tx) TransactionsByBatch(batchID int64) ([]model.Transaction, error) {
	return t.queryTxs(`SELECT `+txCols+` FROM tx WHERE batch_id = ? ORDER BY id`, batchID)
}

// LandlordTransactionsInRange returns transactions linked to a landlord
// with dates in [start, end].
func (t *Tx) LandlordTransactionsInRange(landlordID int64, start, end time.Time) ([]model.Transaction, error) {
	return t.queryTxs(
		`SELECT `+txCols+` FROM tx WHERE landlord_id = ? AND date >= ? AND date <= ? ORDER BY date, id`,
		landlordID, start.Format(dateFormat), end.Format(dateFormat),
	)
}

// TenantRentInRange returns rent-category transactions for a set of tenants
// with dates in [start, end].
func (t *Tx) TenantRentInRange(tenantIDs []int64, start, end time.Time) ([]model.Transaction, error) {
	if len(tenantIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + txCols + ` FROM tx WHERE category = ? AND date >= ? AND date <= ? AND tenant_id IN (`
	args := []any{string(model.CategoryRent), start.Format(dateFormat), end.Format(dateFormat)}
	for i, id := range tenantIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += `) ORDER BY date, id`
	return t.queryTxs(query, args...)
}

func (t *Tx) sumAmounts(query string, args ...any) (decimal.Decimal, error) {
	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing transactions: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw, err)
		}
		sum = sum.Add(amount)
	}
	return sum, rows.Err()
}

// SumByTenantCategory sums amounts of a tenant's transactions in a category.
func (t *Tx) SumByTenantCategory(tenantID int64, category model.TxCategory) (decimal.Decimal, error) {
	return t.sumAmounts(`SELECT amount FROM tx WHERE tenant_id = ? AND category = ?`, tenantID, string(category))
}

// SumByLandlord sums amounts of all transactions linked to a landlord.
func (t *Tx) SumByLandlord(landlordID int64) (decimal.Decimal, error) {
	return t.sumAmounts(`SELECT amount FROM tx WHERE landlord_id = ?`, landlordID)
}

// SumByAccount sums amounts of all transactions posted to an account.
func (t *Tx) SumByAccount(accountID int64) (decimal.Decimal, error) {
	return t.sumAmounts(`SELECT amount FROM tx WHERE account_id = ?`, accountID)
}

// SumBankCash sums the top-level transactions posted to the bank account.
// Children are excluded: they redistribute a parent's cash, they do not
// move money through the bank twice.
func (t *Tx) SumBankCash(bankID int64) (decimal.Decimal, error) {
	return t.sumAmounts(`SELECT amount FROM tx WHERE account_id = ? AND parent_id = 0`, bankID)
}

// RentChargeExists reports whether a tenant already has a rent charge dated
// in the given month.
func (t *Tx) RentChargeExists(tenantID int64, year int, month time.Month) (bool, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	row := t.tx.QueryRow(
		`SELECT COUNT(*) FROM tx WHERE tenant_id = ? AND category = ? AND date >= ? AND date < ?`,
		tenantID, string(model.CategoryRentCharge), first.Format(dateFormat), next.Format(dateFormat),
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("checking rent charge: %w", err)
	}
	return n > 0, nil
}

// PayoutExistsOnOrAfter reports whether a payout has been processed for a
// landlord on or after the given date. A payout closes the books for the
// periods it covers.
func (t *Tx) PayoutExistsOnOrAfter(landlordID int64, date time.Time) (bool, error) {
	row := t.tx.QueryRow(
		`SELECT COUNT(*) FROM tx WHERE landlord_id = ? AND category = ? AND date >= ?`,
		landlordID, string(model.CategoryPayout), date.Format(dateFormat),
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("checking payouts: %w", err)
	}
	return n > 0, nil
}
