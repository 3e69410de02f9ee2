package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duesbook/duesbook/internal/model"
)

func date(y, m, d int) time.Time {
	return model.Date(y, time.Month(m), d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addMember(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.AddMember(context.Background(), model.Member{
		BusinessName:   name,
		MembershipType: "Individual ($100)",
		JoinDate:       date(2024, 1, 15),
		RenewalDate:    date(2025, 1, 15),
		Status:         model.MemberActive,
	})
	require.NoError(t, err)
	return id
}

func addCategory(t *testing.T, s *Store, name string, typ model.CategoryType) int64 {
	t.Helper()
	id, err := s.AddCategory(context.Background(), model.Category{Name: name, Type: typ})
	require.NoError(t, err)
	return id
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	addMember(t, s, "Acme Hardware")
	require.NoError(t, s.Close())

	s2, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer s2.Close()

	members, err := s2.ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Acme Hardware", members[0].BusinessName)
}

func TestMembers_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id := addMember(t, s, "Blue Door Bakery")

	m, err := s.GetMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Blue Door Bakery", m.BusinessName)
	assert.Equal(t, date(2025, 1, 15), m.RenewalDate)
	assert.Equal(t, model.MemberActive, m.Status)

	m.Email = "owner@bluedoor.test"
	m.RenewalDate = time.Time{}
	n, err := s.UpdateMember(ctx, id, m)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "owner@bluedoor.test", got.Email)
	assert.False(t, got.HasRenewalDate())

	n, err = s.DeleteMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetMember(ctx, id)
	assert.True(t, model.IsNotFound(err))
}

func TestDeleteMember_Cascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	memberID := addMember(t, s, "Cascade Co")

	_, err := s.AddTransaction(ctx, model.Transaction{
		Date: date(2025, 3, 1), Amount: dec("100"), Type: model.Income, MemberID: memberID,
	})
	require.NoError(t, err)
	_, err = s.AddInvoice(ctx, model.Invoice{
		Number: "INV-0001", MemberID: memberID, IssueDate: date(2025, 3, 1),
		DueDate: date(2025, 3, 31), Amount: dec("100"), Status: model.InvoicePending,
	})
	require.NoError(t, err)

	_, err = s.DeleteMember(ctx, memberID)
	require.NoError(t, err)

	txns, err := s.ListTransactions(ctx, model.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
	invoices, err := s.ListInvoices(ctx, model.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	added, err := s.EnsureCategories(ctx, []model.Category{
		{Name: "Membership Dues", Type: model.CategoryIncome},
		{Name: "Rent", Type: model.CategoryExpense},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = s.EnsureCategories(ctx, []model.Category{
		{Name: "Membership Dues", Type: model.CategoryIncome},
		{Name: "Utilities", Type: model.CategoryExpense},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	dues, err := s.CategoryByName(ctx, "membership dues")
	require.NoError(t, err)
	assert.Equal(t, "Membership Dues", dues.Name)
	assert.True(t, dues.Active)

	_, err = s.CategoryByName(ctx, "Raffle")
	assert.True(t, model.IsNotFound(err))

	_, err = s.DeactivateCategory(ctx, dues.ID)
	require.NoError(t, err)

	active, err := s.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := s.ListCategories(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListTransactions_Filters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dues := addCategory(t, s, "Membership Dues", model.CategoryIncome)
	rent := addCategory(t, s, "Rent", model.CategoryExpense)

	for _, txn := range []model.Transaction{
		{Date: date(2025, 2, 28), Amount: dec("50"), Type: model.Income, CategoryID: dues},
		{Date: date(2025, 3, 1), Amount: dec("100"), Type: model.Income, CategoryID: dues},
		{Date: date(2025, 3, 15), Amount: dec("800"), Type: model.Expense, CategoryID: rent},
		{Date: date(2025, 3, 31), Amount: dec("12.34"), Type: model.Income},
		{Date: date(2025, 4, 1), Amount: dec("75"), Type: model.Expense},
	} {
		_, err := s.AddTransaction(ctx, txn)
		require.NoError(t, err)
	}

	march, err := s.ListTransactions(ctx, model.TransactionFilter{Start: date(2025, 3, 1), End: date(2025, 3, 31)})
	require.NoError(t, err)
	require.Len(t, march, 3)
	assert.Equal(t, date(2025, 3, 31), march[0].Date, "newest first")
	assert.Equal(t, date(2025, 3, 1), march[2].Date)

	income, err := s.ListTransactions(ctx, model.TransactionFilter{Type: model.Income})
	require.NoError(t, err)
	assert.Len(t, income, 3)

	uncategorized, err := s.ListTransactions(ctx, model.TransactionFilter{Uncategorized: true})
	require.NoError(t, err)
	assert.Len(t, uncategorized, 2)

	rentRows, err := s.ListTransactions(ctx, model.TransactionFilter{CategoryID: rent})
	require.NoError(t, err)
	require.Len(t, rentRows, 1)
	assert.Equal(t, "Rent", rentRows[0].CategoryName)
	assert.True(t, rentRows[0].Amount.Equal(dec("800")))

	totals, err := s.SummaryByType(ctx, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.True(t, totals.Income.Equal(dec("112.34")))
	assert.True(t, totals.Expenses.Equal(dec("800")))
	assert.True(t, totals.Net().Equal(dec("-687.66")))

	all, err := s.SummaryByType(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.True(t, all.Income.Equal(dec("162.34")))
	assert.True(t, all.Expenses.Equal(dec("875")))
}

func TestSaveTransaction_WithSplits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dues := addCategory(t, s, "Membership Dues", model.CategoryIncome)
	donations := addCategory(t, s, "Donations", model.CategoryIncome)
	memberID := addMember(t, s, "Split Shop")

	id, err := s.SaveTransaction(ctx, model.Transaction{
		Date: date(2025, 3, 10), Amount: dec("100.00"), Type: model.Income, Description: "Check 1044",
	}, []model.Split{
		{Amount: dec("60.00"), CategoryID: dues, MemberID: memberID},
		{Amount: dec("40.00"), CategoryID: donations},
	})
	require.NoError(t, err)

	txn, err := s.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, txn.SplitCount)

	splits, err := s.ListSplits(ctx, id)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, "Membership Dues", splits[0].CategoryName)
	assert.Equal(t, "Split Shop", splits[0].MemberName)
	assert.True(t, splits[1].Amount.Equal(dec("40")))

	// Saving without splits leaves the transaction unsplit.
	txn.Amount = dec("90")
	_, err = s.SaveTransaction(ctx, txn, nil)
	require.NoError(t, err)
	splits, err = s.ListSplits(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, splits)
}

func TestSaveTransaction_MissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveTransaction(context.Background(), model.Transaction{
		ID: 999, Date: date(2025, 1, 1), Amount: dec("1"), Type: model.Income,
	}, nil)
	assert.True(t, model.IsNotFound(err))
}

func TestSaveTransaction_SplitReplaceAtomicOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dues := addCategory(t, s, "Membership Dues", model.CategoryIncome)
	donations := addCategory(t, s, "Donations", model.CategoryIncome)

	id, err := s.SaveTransaction(ctx, model.Transaction{
		Date: date(2025, 3, 10), Amount: dec("100"), Type: model.Income,
	}, []model.Split{
		{Amount: dec("60"), CategoryID: dues},
		{Amount: dec("40"), CategoryID: donations},
	})
	require.NoError(t, err)

	// The third split references a category that does not exist.
	_, err = s.SaveTransaction(ctx, model.Transaction{
		ID: id, Date: date(2025, 3, 10), Amount: dec("100"), Type: model.Income,
	}, []model.Split{
		{Amount: dec("30"), CategoryID: dues},
		{Amount: dec("30"), CategoryID: donations},
		{Amount: dec("40"), CategoryID: 9999},
	})
	require.Error(t, err)

	splits, err := s.ListSplits(ctx, id)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splits[0].Amount.Equal(dec("60")))
	assert.True(t, splits[1].Amount.Equal(dec("40")))
}

func TestSaveTransaction_UpdateRollsBackParent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dues := addCategory(t, s, "Membership Dues", model.CategoryIncome)

	id, err := s.SaveTransaction(ctx, model.Transaction{
		Date: date(2025, 3, 10), Amount: dec("100"), Type: model.Income, Description: "original",
	}, []model.Split{{Amount: dec("100"), CategoryID: dues}})
	require.NoError(t, err)

	_, err = s.SaveTransaction(ctx, model.Transaction{
		ID: id, Date: date(2025, 3, 10), Amount: dec("150"), Type: model.Income, Description: "changed",
	}, []model.Split{
		{Amount: dec("100"), CategoryID: dues},
		{Amount: dec("50"), CategoryID: 4242},
	})
	require.Error(t, err)

	txn, err := s.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "original", txn.Description)
	assert.True(t, txn.Amount.Equal(dec("100")))
	assert.Equal(t, 1, txn.SplitCount)
}

func TestInvoices_StatusAndPromotion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	memberID := addMember(t, s, "Invoice Inn")

	pastDue, err := s.AddInvoice(ctx, model.Invoice{
		Number: "INV-0001", MemberID: memberID, IssueDate: date(2025, 1, 1),
		DueDate: date(2025, 1, 31), Amount: dec("100"), Status: model.InvoicePending,
	})
	require.NoError(t, err)
	current, err := s.AddInvoice(ctx, model.Invoice{
		Number: "INV-0002", MemberID: memberID, IssueDate: date(2025, 2, 1),
		DueDate: date(2025, 3, 3), Amount: dec("100"), Status: model.InvoicePending,
	})
	require.NoError(t, err)

	n, err := s.PromoteOverdue(ctx, date(2025, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "due today is not yet overdue")

	n, err = s.PromoteOverdue(ctx, date(2025, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	inv, err := s.GetInvoice(ctx, pastDue)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceOverdue, inv.Status)
	assert.Equal(t, "Invoice Inn", inv.BusinessName)

	n, err = s.UpdateInvoiceStatus(ctx, current, model.InvoicePending, model.InvoicePaid, date(2025, 3, 2), "check")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.UpdateInvoiceStatus(ctx, current, model.InvoicePending, model.InvoicePaid, date(2025, 3, 2), "check")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "stale from-status changes nothing")

	inv, err = s.GetInvoice(ctx, current)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, inv.Status)
	assert.Equal(t, date(2025, 3, 2), inv.PaidDate)
	assert.Equal(t, "check", inv.PaymentMethod)

	numbers, err := s.InvoiceNumbers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"INV-0001", "INV-0002"}, numbers)

	overdue, err := s.ListInvoices(ctx, model.InvoiceFilter{Status: model.InvoiceOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "INV-0001", overdue[0].Number)
}

func TestAddInvoice_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	memberID := addMember(t, s, "Dup Deli")

	inv := model.Invoice{
		Number: "INV-0001", MemberID: memberID, IssueDate: date(2025, 1, 1),
		DueDate: date(2025, 1, 31), Amount: dec("100"), Status: model.InvoicePending,
	}
	_, err := s.AddInvoice(ctx, inv)
	require.NoError(t, err)

	_, err = s.AddInvoice(ctx, inv)
	require.Error(t, err)
	var se model.StoreError
	assert.ErrorAs(t, err, &se)
}
