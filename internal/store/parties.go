package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

const tenantCols = "id, name, email, phone, start_date, reference, property_id"

func scanTenant(row interface{ Scan(...any) error }) (model.Tenant, error) {
	var tn model.Tenant
	var start string
	if err := row.Scan(&tn.ID, &tn.Name, &tn.Email, &tn.Phone, &start, &tn.Reference, &tn.PropertyID); err != nil {
		return model.Tenant{}, err
	}
	if start != "" {
		d, err := time.Parse(dateFormat, start)
		if err != nil {
			return model.Tenant{}, fmt.Errorf("parsing start date %q: %w", start, err)
		}
		tn.StartDate = d
	}
	return tn, nil
}

// CreateTenant inserts a tenant and sets its ID.
func (t *Tx) CreateTenant(tn *model.Tenant) error {
	start := ""
	if !tn.StartDate.IsZero() {
		start = tn.StartDate.Format(dateFormat)
	}
	res, err := t.tx.Exec(
		`INSERT INTO tenant (name, email, phone, start_date, reference, property_id) VALUES (?, ?, ?, ?, ?, ?)`,
		tn.Name, tn.Email, tn.Phone, start, tn.Reference, tn.PropertyID,
	)
	if err != nil {
		return fmt.Errorf("inserting tenant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tn.ID = id
	return nil
}

// GetTenant returns a tenant by ID.
func (t *Tx) GetTenant(id int64) (model.Tenant, bool, error) {
	row := t.tx.QueryRow(`SELECT `+tenantCols+` FROM tenant WHERE id = ?`, id)
	tn, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return model.Tenant{}, false, nil
	}
	if err != nil {
		return model.Tenant{}, false, fmt.Errorf("getting tenant %d: %w", id, err)
	}
	return tn, true, nil
}

// AllTenants returns every tenant ordered by ID. The matcher depends on
// this ordering for reproducible first-hit-wins matching.
func (t *Tx) AllTenants() ([]model.Tenant, error) {
	rows, err := t.tx.Query(`SELECT ` + tenantCols + ` FROM tenant ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		tn, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tn)
	}
	return tenants, rows.Err()
}

// PlacedTenants returns tenants linked to a property, ordered by ID.
func (t *Tx) PlacedTenants() ([]model.Tenant, error) {
	rows, err := t.tx.Query(`SELECT ` + tenantCols + ` FROM tenant WHERE property_id != 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing placed tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		tn, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tn)
	}
	return tenants, rows.Err()
}

const landlordCols = "id, name, email, phone, address, reference, commission_rate"

func scanLandlord(row interface{ Scan(...any) error }) (model.Landlord, error) {
	var ll model.Landlord
	var rate string
	if err := row.Scan(&ll.ID, &ll.Name, &ll.Email, &ll.Phone, &ll.Address, &ll.Reference, &rate); err != nil {
		return model.Landlord{}, err
	}
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return model.Landlord{}, fmt.Errorf("parsing commission rate %q: %w", rate, err)
	}
	ll.CommissionRate = r
	return ll, nil
}

// CreateLandlord inserts a landlord and sets its ID.
func (t *Tx) CreateLandlord(ll *model.Landlord) error {
	res, err := t.tx.Exec(
		`INSERT INTO landlord (name, email, phone, address, reference, commission_rate) VALUES (?, ?, ?, ?, ?, ?)`,
		ll.Name, ll.Email, ll.Phone, ll.Address, ll.Reference, ll.CommissionRate.String(),
	)
	if err != nil {
		return fmt.Errorf("inserting landlord: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ll.ID = id
	return nil
}

// GetLandlord returns a landlord by ID.
func (t *Tx) GetLandlord(id int64) (model.Landlord, bool, error) {
	row := t.tx.QueryRow(`SELECT `+landlordCols+` FROM landlord WHERE id = ?`, id)
	ll, err := scanLandlord(row)
	if err == sql.ErrNoRows {
		return model.Landlord{}, false, nil
	}
	if err != nil {
		return model.Landlord{}, false, fmt.Errorf("getting landlord %d: %w", id, err)
	}
	return ll, true, nil
}

// AllLandlords returns every landlord ordered by ID.
func (t *Tx) AllLandlords() ([]model.Landlord, error) {
	rows, err := t.tx.Query(`SELECT ` + landlordCols + ` FROM landlord ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing landlords: %w", err)
	}
	defer rows.Close()

	var landlords []model.Landlord
	for rows.Next() {
		ll, err := scanLandlord(rows)
		if err != nil {
			return nil, err
		}
		landlords = append(landlords, ll)
	}
	return landlords, rows.Err()
}

const propertyCols = "id, address, rent_amount, landlord_id, landlord_portion, utility_account_id"

func scanProperty(row interface{ Scan(...any) error }) (model.Property, error) {
	var p model.Property
	var rent, portion string
	if err := row.Scan(&p.ID, &p.Address, &rent, &p.LandlordID, &portion, &p.UtilityAccountID); err != nil {
		return model.Property{}, err
	}
	r, err := decimal.NewFromString(rent)
	if err != nil {
		return model.Property{}, fmt.Errorf("parsing rent amount %q: %w", rent, err)
	}
	p.RentAmount = r
	lp, err := decimal.NewFromString(portion)
	if err != nil {
		return model.Property{}, fmt.Errorf("parsing landlord portion %q: %w", portion, err)
	}
	p.LandlordPortion = lp
	return p, nil
}

// CreateProperty inserts a property and sets its ID.
func (t *Tx) CreateProperty(p *model.Property) error {
	res, err := t.tx.Exec(
		`INSERT INTO property (address, rent_amount, landlord_id, landlord_portion, utility_account_id) VALUES (?, ?, ?, ?, ?)`,
		p.Address, p.RentAmount.String(), p.LandlordID, p.LandlordPortion.String(), p.UtilityAccountID,
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// GetProperty returns a property by ID.
func (t *Tx) GetProperty(id int64) (model.Property, bool, error) {
	row := t.tx.QueryRow(`SELECT `+propertyCols+` FROM property WHERE id = ?`, id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return model.Property{}, false, nil
	}
	if err != nil {
		return model.Property{}, false, fmt.Errorf("getting property %d: %w", id, err)
	}
	return p, true, nil
}

// TenantIDsForLandlord returns the IDs of tenants placed in any of a
// landlord's properties, ordered by tenant ID.
func (t *Tx) TenantIDsForLandlord(landlordID int64) ([]int64, error) {
	rows, err := t.tx.Query(
		`SELECT tenant.id FROM tenant JOIN property ON tenant.property_id = property.id
		 WHERE property.landlord_id = ? ORDER BY tenant.id`, landlordID)
	if err != nil {
		return nil, fmt.Errorf("listing landlord %d tenants: %w", landlordID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
