package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixture is a bootstrapped ledger with one landlord, one property and one
// placed tenant.
type fixture struct {
	store      *store.Store
	sys        store.SystemAccounts
	alloc      *Allocator
	tenant     model.Tenant
	landlord   model.Landlord
	property   model.Property
	tenantAcct model.Account
	llAcct     model.Account
}

// newFixture builds the standard test ledger. commissionRate and
// landlordPortion control the rent split behavior; a non-zero portion also
// wires a utility account onto the property.
func newFixture(t *testing.T, commissionRate, landlordPortion string) *fixture {
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
		require.NoError(t, err)

		f.landlord = model.Landlord{Name: "Bob Jones", Reference: "BJONES", CommissionRate: dec(commissionRate)}
		require.NoError(t, tx.CreateLandlord(&f.landlord))
		f.llAcct = model.Account{Name: "Bob Jones Account", Type: model.AccountTypeLandlord, LandlordID: f.landlord.ID}
		require.NoError(t, tx.CreateAccount(&f.llAcct))

		f.property = model.Property{
			Address:         "1 High St",
			RentAmount:      dec("750"),
			LandlordID:      f.landlord.ID,
			LandlordPortion: dec(landlordPortion),
		}
		if landlordPortion != "0" {
			f.property.UtilityAccountID = f.sys.UtilityID
		}
		require.NoError(t, tx.CreateProperty(&f.property))

		f.tenant = model.Tenant{Name: "Alice Smith", Reference: "ASMITH", StartDate: date(2025, 6, 15), PropertyID: f.property.ID}
		require.NoError(t, tx.CreateTenant(&f.tenant))
		f.tenantAcct = model.Account{Name: "Alice Smith Account", Type: model.AccountTypeTenant, TenantID: f.tenant.ID}
		return tx.CreateAccount(&f.tenantAcct)
	})
	require.NoError(t, err)

	f.alloc = NewAllocator(st, f.sys, zerolog.Nop())
	return f
}

// createTx inserts a transaction outside the allocator.
func (f *fixture) createTx(t *testing.T, tr *model.Transaction) {
	t.Helper()
	err := f.store.Update(func(tx *store.Tx) error {
		return tx.CreateTransaction(tr)
	})
	require.NoError(t, err)
}

// balance reads an account's cached balance.
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

// getTx reloads a transaction.
func (f *fixture) getTx(t *testing.T, id int64) model.Transaction {
	t.Helper()
	var tr model.Transaction
	err := f.store.View(func(tx *store.Tx) error {
		var ok bool
		var err error
		tr, ok, err = tx.GetTransaction(id)
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	})
	require.NoError(t, err)
	return tr
}

// children lists a transaction's children.
func (f *fixture) children(t *testing.T, parentID int64) []model.Transaction {
	t.Helper()
	var kids []model.Transaction
	err := f.store.View(func(tx *store.Tx) error {
		var err error
		kids, err = tx.ChildrenOf(parentID)
		return err
	})
	require.NoError(t, err)
	return kids
}

func assertBalance(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "balance: want %s, got %s", want, got)
}
