package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettbooks-dev/lettbooks/internal/model"
)

// bulkPayment creates and bank-links a bulk transaction ready for splitting.
func bulkPayment(t *testing.T, f *fixture, amount string) model.Transaction {
	t.Helper()
	bulk := model.Transaction{
		Date:        date(2026, 4, 1),
		Amount:      dec(amount),
		Description: "COUNCIL BULK RENT",
		Status:      model.StatusCoded,
		IsBulk:      true,
	}
	f.createTx(t, &bulk)
	require.NoError(t, f.alloc.Allocate(bulk.ID))
	return f.getTx(t, bulk.ID)
}

func TestSplit_RentComponents(t *testing.T) {
	f := newFixture(t, "0", "0")
	bulk := bulkPayment(t, f, "1500")

	err := f.alloc.Split(bulk.ID, []SplitComponent{
		{Amount: dec("750"), Description: "Rent Alice Smith", Category: model.CategoryRent, TenantID: f.tenant.ID},
		{Amount: dec("750"), Description: "Other income", Category: model.CategoryOther},
	})
	require.NoError(t, err)

	// Cash moved once, via the parent.
	assertBalance(t, "1500", f.balance(t, f.sys.BankID))
	assertBalance(t, "750", f.balance(t, f.tenantAcct.ID))
	assertBalance(t, "750", f.balance(t, f.llAcct.ID))

	kids := f.children(t, bulk.ID)
	require.Len(t, kids, 2)
	for _, kid := range kids {
		assert.Equal(t, bulk.ID, kid.ParentID)
		assert.Equal(t, f.sys.BankID, kid.AccountID)
	}
	assert.Equal(t, model.StatusAllocated, kids[0].Status)
	assert.Equal(t, model.StatusSplit, f.getTx(t, bulk.ID).Status)
}

func TestSplit_SumMismatchRejected(t *testing.T) {
	f := newFixture(t, "0", "0")
	bulk := bulkPayment(t, f, "1500")

	err := f.alloc.Split(bulk.ID, []SplitComponent{
		{Amount: dec("750"), Description: "Rent Alice Smith", Category: model.CategoryRent, TenantID: f.tenant.ID},
		{Amount: dec("700"), Description: "Other income", Category: model.CategoryOther},
	})
	require.ErrorIs(t, err, ErrIntegrity)

	// All or nothing: no children, no balance movement beyond the parent's
	// original bank link.
	assert.Empty(t, f.children(t, bulk.ID))
	assertBalance(t, "0", f.balance(t, f.tenantAcct.ID))
	assert.Equal(t, model.StatusSplit, f.getTx(t, bulk.ID).Status)
}

func TestSplit_WithinTolerance(t *testing.T) {
	f := newFixture(t, "0", "0")
	bulk := bulkPayment(t, f, "100")

	// A penny of rounding drift is accepted.
	err := f.alloc.Split(bulk.ID, []SplitComponent{
		{Amount: dec("33.33"), Description: "One third", Category: model.CategoryOther},
		{Amount: dec("33.33"), Description: "One third", Category: model.CategoryOther},
		{Amount: dec("33.33"), Description: "One third", Category: model.CategoryOther},
	})
	require.NoError(t, err)
	require.Len(t, f.children(t, bulk.ID), 3)
}

func TestSplit_NoComponents(t *testing.T) {
	f := newFixture(t, "0", "0")
	bulk := bulkPayment(t, f, "1500")

	err := f.alloc.Split(bulk.ID, nil)
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestSplit_NotBulk(t *testing.T) {
	f := newFixture(t, "0", "0")

	plain := model.Transaction{Date: date(2026, 4, 1), Amount: dec("100"), Status: model.StatusCoded}
	f.createTx(t, &plain)

	err := f.alloc.Split(plain.ID, []SplitComponent{
		{Amount: dec("100"), Description: "All of it", Category: model.CategoryOther},
	})
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestSplit_AlreadySplit(t *testing.T) {
	f := newFixture(t, "0", "0")
	bulk := bulkPayment(t, f, "100")

	components := []SplitComponent{
		{Amount: dec("100"), Description: "All of it", Category: model.CategoryOther},
	}
	require.NoError(t, f.alloc.Split(bulk.ID, components))

	err := f.alloc.Split(bulk.ID, components)
	require.ErrorIs(t, err, ErrIntegrity)
	require.Len(t, f.children(t, bulk.ID), 1)
}

func TestSplit_MissingParent(t *testing.T) {
	f := newFixture(t, "0", "0")

	err := f.alloc.Split(424242, []SplitComponent{
		{Amount: dec("1"), Description: "x", Category: model.CategoryOther},
	})
	require.ErrorIs(t, err, ErrNotFound)
}
