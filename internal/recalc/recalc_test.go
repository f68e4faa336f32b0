package recalc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
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
	store      *store.Store
	sys        store.SystemAccounts
	alloc      *ledger.Allocator
	recalc     *Recalculator
	tenant     model.Tenant
	landlord   model.Landlord
	tenantAcct model.Account
	llAcct     model.Account
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
		require.NoError(t, err)

		f.landlord = model.Landlord{Name: "Bob Jones", CommissionRate: dec("0.1")}
		require.NoError(t, tx.CreateLandlord(&f.landlord))
		f.llAcct = model.Account{Name: "Bob Jones Account", Type: model.AccountTypeLandlord, LandlordID: f.landlord.ID}
		require.NoError(t, tx.CreateAccount(&f.llAcct))

		prop := model.Property{Address: "1 High St", RentAmount: dec("750"), LandlordID: f.landlord.ID}
		require.NoError(t, tx.CreateProperty(&prop))

		f.tenant = model.Tenant{Name: "Alice Smith", PropertyID: prop.ID}
		require.NoError(t, tx.CreateTenant(&f.tenant))
		f.tenantAcct = model.Account{Name: "Alice Smith Account", Type: model.AccountTypeTenant, TenantID: f.tenant.ID}
		return tx.CreateAccount(&f.tenantAcct)
	})
	require.NoError(t, err)

	f.alloc = ledger.NewAllocator(st, f.sys, zerolog.Nop())
	f.recalc = New(st, f.sys, zerolog.Nop())
	return f
}

func (f *fixture) allocate(t *testing.T, tr model.Transaction) {
	t.Helper()
	err := f.store.Update(func(tx *store.Tx) error {
		return tx.CreateTransaction(&tr)
	})
	require.NoError(t, err)
	require.NoError(t, f.alloc.Allocate(tr.ID))
}

func (f *fixture) balances(t *testing.T) map[int64]decimal.Decimal {
	t.Helper()
	out := map[int64]decimal.Decimal{}
	err := f.store.View(func(tx *store.Tx) error {
		accts, err := tx.AllAccounts()
		require.NoError(t, err)
		for _, a := range accts {
			out[a.ID] = a.Balance
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) corrupt(t *testing.T, accountID int64, balance string) {
	t.Helper()
	err := f.store.Update(func(tx *store.Tx) error {
		return tx.SetBalance(accountID, dec(balance))
	})
	require.NoError(t, err)
}

// seedActivity allocates a representative mix: a rent charge, the rent
// payment that clears it, and a landlord expense.
func seedActivity(t *testing.T, f *fixture) {
	f.allocate(t, model.Transaction{
		Date:     date(2026, 3, 1),
		Amount:   dec("750"),
		Status:   model.StatusCoded,
		Category: model.CategoryRentCharge,
		TenantID: f.tenant.ID,
	})
	f.allocate(t, model.Transaction{
		Date:     date(2026, 3, 3),
		Amount:   dec("750"),
		Status:   model.StatusCoded,
		Category: model.CategoryRent,
		TenantID: f.tenant.ID,
	})
	f.allocate(t, model.Transaction{
		Date:       date(2026, 3, 10),
		Amount:     dec("-120"),
		Status:     model.StatusCoded,
		Category:   model.CategoryExpense,
		LandlordID: f.landlord.ID,
	})
}

func TestRecalculate_Idempotent(t *testing.T) {
	f := newFixture(t)
	seedActivity(t, f)

	before := f.balances(t)
	require.NoError(t, f.recalc.Recalculate(0))
	after := f.balances(t)

	require.Equal(t, len(before), len(after))
	for id, want := range before {
		require.True(t, after[id].Equal(want), "account %d: %s became %s", id, want, after[id])
	}
}

func TestRecalculate_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	seedActivity(t, f)

	want := f.balances(t)
	f.corrupt(t, f.tenantAcct.ID, "999999")
	f.corrupt(t, f.llAcct.ID, "-5")
	f.corrupt(t, f.sys.BankID, "0.01")

	require.NoError(t, f.recalc.Recalculate(0))

	got := f.balances(t)
	for id, w := range want {
		require.True(t, got[id].Equal(w), "account %d: want %s, got %s", id, w, got[id])
	}
}

func TestRecalculate_SingleAccount(t *testing.T) {
	f := newFixture(t)
	seedActivity(t, f)

	want := f.balances(t)[f.tenantAcct.ID]
	f.corrupt(t, f.tenantAcct.ID, "123")
	f.corrupt(t, f.llAcct.ID, "456")

	require.NoError(t, f.recalc.Recalculate(f.tenantAcct.ID))

	got := f.balances(t)
	require.True(t, got[f.tenantAcct.ID].Equal(want))
	// Only the requested account was touched.
	require.True(t, got[f.llAcct.ID].Equal(dec("456")))
}

func TestRecalculate_BankExcludesSplitChildren(t *testing.T) {
	f := newFixture(t)
	seedActivity(t, f)

	// The commission split created children; the bank must still equal the
	// top-level cash flow only.
	require.NoError(t, f.recalc.Recalculate(f.sys.BankID))

	got := f.balances(t)
	require.True(t, got[f.sys.BankID].Equal(dec("630")), "got %s", got[f.sys.BankID])
}

func TestRecalculate_MissingAccount(t *testing.T) {
	f := newFixture(t)
	err := f.recalc.Recalculate(9999)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}
