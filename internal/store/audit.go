package store

import (
	"fmt"
	"time"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

// AppendAudit writes one append-only audit record inside the current unit
// of work, so the record commits or rolls back with the ledger effects it
// describes.
func (t *Tx) AppendAudit(e model.AuditEntry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := t.tx.Exec(
		`INSERT INTO audit_log (timestamp, action, details, tx_id) VALUES (?, ?, ?, ?)`,
		ts.Format(time.RFC3339), e.Action, e.Details, e.TxID,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// AuditEntries returns all audit records, oldest first.
func (t *Tx) AuditEntries() ([]model.AuditEntry, error) {
	rows, err := t.tx.Query(`SELECT id, timestamp, action, details, tx_id FROM audit_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Action, &e.Details, &e.TxID); err != nil {
			return nil, err
		}
		e.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
