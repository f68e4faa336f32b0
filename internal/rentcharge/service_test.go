package rentcharge

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store *store.Store
	sys   store.SystemAccounts
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st}
	err = st.Update(func(tx *store.Tx) error {
		if err := tx.Bootstrap(); err != nil {
			return err
		}
		f.sys, err = tx.System()
		return err
	})
	require.NoError(t, err)

	alloc := ledger.NewAllocator(st, f.sys, zerolog.Nop())
	clock := func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	f.svc = New(st, alloc, clock, zerolog.Nop())
	return f
}

// addTenancy creates a landlord, property and placed tenant, returning the
// tenant and their account.
func (f *fixture) addTenancy(t *testing.T, name, rent string, startDate time.Time) (model.Tenant, model.Account) {
	t.Helper()

	var tenant model.Tenant
	var acct model.Account
	err := f.store.Update(func(tx *store.Tx) error {
		ll := model.Landlord{Name: name + "'s Landlord", CommissionRate: dec("0.1")}
		if err := tx.CreateLandlord(&ll); err != nil {
			return err
		}
		llAcct := model.Account{Name: ll.Name + " Account", Type: model.AccountTypeLandlord, LandlordID: ll.ID}
		if err := tx.CreateAccount(&llAcct); err != nil {
			return err
		}
		prop := model.Property{Address: "Home of " + name, RentAmount: dec(rent), LandlordID: ll.ID}
		if err := tx.CreateProperty(&prop); err != nil {
			return err
		}
		tenant = model.Tenant{Name: name, StartDate: startDate, PropertyID: prop.ID}
		if err := tx.CreateTenant(&tenant); err != nil {
			return err
		}
		acct = model.Account{Name: name + " Account", Type: model.AccountTypeTenant, TenantID: tenant.ID}
		return tx.CreateAccount(&acct)
	})
	require.NoError(t, err)
	return tenant, acct
}

func (f *fixture) balance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()
	var b decimal.Decimal
	err := f.store.View(func(tx *store.Tx) error {
		acct, ok, err := tx.GetAccount(accountID)
		require.NoError(t, err)
		require.True(t, ok)
		b = acct.Balance
		return nil
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) batchTxs(t *testing.T, batchID int64) []model.Transaction {
	t.Helper()
	var txs []model.Transaction
	err := f.store.View(func(tx *store.Tx) error {
		var err error
		txs, err = tx.TransactionsByBatch(batchID)
		return err
	})
	require.NoError(t, err)
	return txs
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)
	t1, a1 := f.addTenancy(t, "Alice Smith", "750", date(2025, 6, 15))
	t2, a2 := f.addTenancy(t, "Bob Brown", "900", date(2025, 9, 1))

	res, err := f.svc.Generate(date(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Charged)
	assert.Equal(t, 0, res.Skipped)
	require.NotZero(t, res.BatchID)

	// Accruals: tenants owe their rent, the bank is untouched.
	assert.True(t, f.balance(t, a1.ID).Equal(dec("-750")))
	assert.True(t, f.balance(t, a2.ID).Equal(dec("-900")))
	assert.True(t, f.balance(t, f.sys.BankID).IsZero())

	txs := f.batchTxs(t, res.BatchID)
	require.Len(t, txs, 2)
	for _, tr := range txs {
		assert.Equal(t, model.CategoryRentCharge, tr.Category)
		assert.Equal(t, model.StatusAllocated, tr.Status)
		assert.Equal(t, res.BatchID, tr.BatchID)
		assert.Zero(t, tr.AccountID)
	}
	// Charge dates follow each tenancy's start day.
	assert.Equal(t, date(2026, 3, 15), txs[0].Date)
	assert.Equal(t, t1.ID, txs[0].TenantID)
	assert.Equal(t, date(2026, 3, 1), txs[1].Date)
	assert.Equal(t, t2.ID, txs[1].TenantID)
}

func TestGenerate_SkipsAlreadyCharged(t *testing.T) {
	f := newFixture(t)
	_, a1 := f.addTenancy(t, "Alice Smith", "750", date(2025, 6, 15))

	first, err := f.svc.Generate(date(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Charged)

	second, err := f.svc.Generate(date(2026, 3, 20))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Charged)
	assert.Equal(t, 1, second.Skipped)

	// Charged once, not twice.
	assert.True(t, f.balance(t, a1.ID).Equal(dec("-750")))
}

func TestGenerate_IgnoresUnplacedTenants(t *testing.T) {
	f := newFixture(t)
	err := f.store.Update(func(tx *store.Tx) error {
		loner := model.Tenant{Name: "Carol White"}
		if err := tx.CreateTenant(&loner); err != nil {
			return err
		}
		acct := model.Account{Name: "Carol White Account", Type: model.AccountTypeTenant, TenantID: loner.ID}
		return tx.CreateAccount(&acct)
	})
	require.NoError(t, err)

	res, err := f.svc.Generate(date(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Charged)
	assert.Equal(t, 0, res.Skipped)
}

func TestChargeDate_ClampsToShortMonth(t *testing.T) {
	tn := model.Tenant{StartDate: date(2025, 1, 31)}

	assert.Equal(t, date(2026, 2, 28), ChargeDate(tn, 2026, time.February))
	assert.Equal(t, date(2028, 2, 29), ChargeDate(tn, 2028, time.February), "leap year")
	assert.Equal(t, date(2026, 4, 30), ChargeDate(tn, 2026, time.April))
	assert.Equal(t, date(2026, 3, 31), ChargeDate(tn, 2026, time.March))
}

func TestChargeDate_NoStartDate(t *testing.T) {
	assert.Equal(t, date(2026, 5, 1), ChargeDate(model.Tenant{}, 2026, time.May))
}

func TestRollback(t *testing.T) {
	f := newFixture(t)
	_, a1 := f.addTenancy(t, "Alice Smith", "750", date(2025, 6, 15))

	res, err := f.svc.Generate(date(2026, 3, 1))
	require.NoError(t, err)
	require.True(t, f.balance(t, a1.ID).Equal(dec("-750")))

	require.NoError(t, f.svc.Rollback(res.BatchID))

	assert.True(t, f.balance(t, a1.ID).IsZero())
	assert.Empty(t, f.batchTxs(t, res.BatchID))

	err = f.store.View(func(tx *store.Tx) error {
		_, ok, err := tx.GetBatch(res.BatchID)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestRollback_ThenRegenerate(t *testing.T) {
	f := newFixture(t)
	_, a1 := f.addTenancy(t, "Alice Smith", "750", date(2025, 6, 15))

	res, err := f.svc.Generate(date(2026, 3, 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.Rollback(res.BatchID))

	// With the charges gone the month is chargeable again.
	again, err := f.svc.Generate(date(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Charged)
	assert.True(t, f.balance(t, a1.ID).Equal(dec("-750")))
}

func TestRollback_MissingBatch(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Rollback(404)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}
