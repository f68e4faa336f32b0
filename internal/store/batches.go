package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

// CreateBatch inserts a rent charge batch and sets its ID.
func (t *Tx) CreateBatch(b *model.RentChargeBatch) error {
	res, err := t.tx.Exec(
		`INSERT INTO rent_charge_batch (created_at, description) VALUES (?, ?)`,
		b.CreatedAt.Format(time.RFC3339), b.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetBatch returns a rent charge batch by ID.
func (t *Tx) GetBatch(id int64) (model.RentChargeBatch, bool, error) {
	row := t.tx.QueryRow(`SELECT id, created_at, description FROM rent_charge_batch WHERE id = ?`, id)
	var b model.RentChargeBatch
	var created string
	err := row.Scan(&b.ID, &created, &b.Description)
	if err == sql.ErrNoRows {
		return model.RentChargeBatch{}, false, nil
	}
	if err != nil {
		return model.RentChargeBatch{}, false, fmt.Errorf("getting batch %d: %w", id, err)
	}
	b.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return model.RentChargeBatch{}, false, fmt.Errorf("parsing batch timestamp %q: %w", created, err)
	}
	return b, true, nil
}

// DeleteBatch removes a rent charge batch row.
func (t *Tx) DeleteBatch(id int64) error {
	if _, err := t.tx.Exec(`DELETE FROM rent_charge_batch WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting batch %d: %w", id, err)
	}
	return nil
}
