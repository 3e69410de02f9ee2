package invoices

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duesbook/duesbook/internal/categories"
	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/store"
)

func date(y, m, d int) time.Time {
	return model.Date(y, time.Month(m), d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var today = date(2025, 6, 15)

func clock() time.Time { return today.Add(14 * time.Hour) }

type fixture struct {
	ctx    context.Context
	store  *store.Store
	svc    *Service
	member int64
}

func setup(t *testing.T, seedCategories bool) fixture {
	t.Helper()
	ctx := logger.WithContext(context.Background(), zerolog.Nop())
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if seedCategories {
		_, err = st.EnsureCategories(ctx, categories.Defaults())
		require.NoError(t, err)
	}
	memberID, err := st.AddMember(ctx, model.Member{
		BusinessName:   "Main Street Books",
		MembershipType: "Business ($250)",
		Status:         model.MemberActive,
	})
	require.NoError(t, err)

	return fixture{ctx: ctx, store: st, svc: NewService(st, clock, 30), member: memberID}
}

func (f fixture) create(t *testing.T, amount string, due time.Time) model.Invoice {
	t.Helper()
	inv, err := f.svc.Create(f.ctx, CreateParams{MemberID: f.member, Amount: dec(amount), DueDate: due, Description: "Annual dues"})
	require.NoError(t, err)
	return inv
}

func (f fixture) transactions(t *testing.T) []model.Transaction {
	t.Helper()
	txns, err := f.store.ListTransactions(f.ctx, model.TransactionFilter{})
	require.NoError(t, err)
	return txns
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.InvoiceStatus
		want     bool
	}{
		{model.InvoicePending, model.InvoicePaid, true},
		{model.InvoicePending, model.InvoiceOverdue, true},
		{model.InvoicePending, model.InvoiceCancelled, true},
		{model.InvoiceOverdue, model.InvoicePaid, true},
		{model.InvoiceOverdue, model.InvoiceCancelled, true},
		{model.InvoiceOverdue, model.InvoicePending, false},
		{model.InvoicePaid, model.InvoiceCancelled, true},
		{model.InvoicePaid, model.InvoicePending, false},
		{model.InvoicePaid, model.InvoiceOverdue, false},
		{model.InvoiceCancelled, model.InvoicePaid, false},
		{model.InvoiceCancelled, model.InvoicePending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, IsTerminal(model.InvoicePaid))
	assert.True(t, IsTerminal(model.InvoiceCancelled))
	assert.False(t, IsTerminal(model.InvoiceOverdue))
}

func TestCreate_SequentialNumbers(t *testing.T) {
	f := setup(t, true)

	var prev string
	for i := 0; i < 5; i++ {
		inv := f.create(t, "100", time.Time{})
		if prev != "" {
			assert.Greater(t, inv.Number, prev)
		}
		prev = inv.Number
	}
	assert.Equal(t, "INV-0005", prev)
}

func TestCreate_ContinuesFromMaximum(t *testing.T) {
	f := setup(t, true)
	_, err := f.store.AddInvoice(f.ctx, model.Invoice{
		Number: "INV-0041", MemberID: f.member, IssueDate: today, DueDate: today,
		Amount: dec("10"), Status: model.InvoicePaid,
	})
	require.NoError(t, err)

	inv := f.create(t, "100", time.Time{})
	assert.Equal(t, "INV-0042", inv.Number)
}

func TestCreate_Defaults(t *testing.T) {
	f := setup(t, true)
	inv := f.create(t, "250", time.Time{})

	assert.Equal(t, today, inv.IssueDate)
	assert.Equal(t, date(2025, 7, 15), inv.DueDate)
	assert.Equal(t, model.InvoicePending, inv.Status)
	assert.Equal(t, "Main Street Books", inv.BusinessName)
	assert.NotZero(t, inv.ID)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t, true)
	tests := []struct {
		name string
		p    CreateParams
	}{
		{"no member", CreateParams{Amount: dec("100")}},
		{"negative", CreateParams{MemberID: f.member, Amount: dec("-1")}},
		{"paid with amount", CreateParams{MemberID: f.member, Amount: dec("100"), Status: model.InvoicePaid}},
		{"created overdue", CreateParams{MemberID: f.member, Amount: dec("100"), Status: model.InvoiceOverdue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, tt.p)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}

	_, err := f.svc.Create(f.ctx, CreateParams{MemberID: 999, Amount: dec("100")})
	assert.True(t, model.IsNotFound(err))
}

func TestCreate_FreeInvoice(t *testing.T) {
	f := setup(t, true)
	inv, err := f.svc.Create(f.ctx, CreateParams{MemberID: f.member, Amount: decimal.Zero, Status: model.InvoicePaid})
	require.NoError(t, err)

	got, err := f.svc.Get(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, got.Status)
	assert.Equal(t, today, got.PaidDate)
	assert.Empty(t, f.transactions(t))
}

func TestList_PromotesOverdue(t *testing.T) {
	f := setup(t, true)
	late := f.create(t, "100", date(2025, 6, 14))
	dueToday := f.create(t, "100", today)

	listed, err := f.svc.List(f.ctx, model.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, inv := range listed {
		if inv.Status == model.InvoicePending {
			assert.False(t, inv.DueDate.Before(today), "%s pending past due", inv.Number)
		}
	}

	got, err := f.svc.Get(f.ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceOverdue, got.Status)

	got, err = f.svc.Get(f.ctx, dueToday.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePending, got.Status)

	n, err := f.svc.PromoteOverdue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	overdue, err := f.svc.List(f.ctx, model.InvoiceFilter{Status: model.InvoiceOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.Number, overdue[0].Number)
}

func TestSetStatus_PaidPostsOneTransaction(t *testing.T) {
	f := setup(t, true)
	inv := f.create(t, "250.00", time.Time{})

	n, err := f.svc.SetStatus(f.ctx, inv.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.svc.SetStatus(f.ctx, inv.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	txns := f.transactions(t)
	require.Len(t, txns, 1)
	txn := txns[0]
	assert.True(t, txn.Amount.Equal(dec("250")))
	assert.Equal(t, model.Income, txn.Type)
	assert.Equal(t, today, txn.Date)
	assert.Equal(t, categories.DuesCategory, txn.CategoryName)
	assert.Equal(t, "Main Street Books", txn.PayeePayer)
	assert.Equal(t, f.member, txn.MemberID)
	assert.Equal(t, "Payment for Invoice "+inv.Number, txn.Description)
	assert.Equal(t, inv.Number, txn.ReferenceNumber)
	assert.Equal(t, "Auto-generated from invoice "+inv.Number, txn.Notes)
	assert.Equal(t, PaymentMethod, txn.PaymentMethod)

	got, err := f.svc.Get(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, got.Status)
	assert.Equal(t, today, got.PaidDate)
}

func TestSetStatus_OverdueToPaid(t *testing.T) {
	f := setup(t, true)
	inv := f.create(t, "100", date(2025, 5, 1))
	_, err := f.svc.PromoteOverdue(f.ctx)
	require.NoError(t, err)

	n, err := f.svc.SetStatus(f.ctx, inv.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, f.transactions(t), 1)
}

func TestSetStatus_InvalidTransitions(t *testing.T) {
	f := setup(t, true)
	inv := f.create(t, "100", time.Time{})

	_, err := f.svc.SetStatus(f.ctx, inv.ID, model.InvoiceCancelled)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(f.ctx, inv.ID, model.InvoicePaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "is already cancelled")
	assert.Empty(t, f.transactions(t))

	_, err = f.svc.SetStatus(f.ctx, inv.ID, "refunded")
	assert.True(t, model.IsValidation(err))

	_, err = f.svc.SetStatus(f.ctx, 999, model.InvoicePaid)
	assert.True(t, model.IsNotFound(err))
}

func TestSetStatus_MissingDuesCategory(t *testing.T) {
	f := setup(t, false)
	inv := f.create(t, "100", time.Time{})

	_, err := f.svc.SetStatus(f.ctx, inv.ID, model.InvoicePaid)
	require.NoError(t, err)

	txns := f.transactions(t)
	require.Len(t, txns, 1)
	assert.Zero(t, txns[0].CategoryID)
}

type failingPoster struct {
	*store.Store
}

func (failingPoster) AddTransaction(context.Context, model.Transaction) (int64, error) {
	return 0, errors.New("disk full")
}

func TestSetStatus_PostingFailureKeepsStatus(t *testing.T) {
	f := setup(t, true)
	inv := f.create(t, "100", time.Time{})
	svc := NewService(failingPoster{f.store}, clock, 30)

	n, err := svc.SetStatus(f.ctx, inv.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := svc.Get(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, got.Status)
	assert.Empty(t, f.transactions(t))
}

func TestSummarize(t *testing.T) {
	f := setup(t, true)
	f.create(t, "100", date(2025, 6, 1))
	f.create(t, "250", time.Time{})
	paid := f.create(t, "75", time.Time{})
	_, err := f.svc.SetStatus(f.ctx, paid.ID, model.InvoicePaid)
	require.NoError(t, err)

	sum, err := f.svc.Summarize(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 1, sum.Overdue)
	assert.True(t, sum.Outstanding.Equal(dec("350")))
}

func TestDelete(t *testing.T) {
	f := setup(t, true)
	inv := f.create(t, "100", time.Time{})
	require.NoError(t, f.svc.Delete(f.ctx, inv.ID))
	assert.True(t, model.IsNotFound(f.svc.Delete(f.ctx, inv.ID)))
}
