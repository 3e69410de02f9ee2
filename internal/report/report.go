package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
)

// LineItem is one reportable amount: a whole transaction, or one split of
// a split transaction.
type LineItem struct {
	TransactionID   int64
	SplitID         int64 // 0 unless IsSplit
	IsSplit         bool
	Date            time.Time
	Type            model.TransactionType
	Amount          decimal.Decimal
	Description     string
	PayeePayer      string
	CategoryID      int64
	CategoryName    string
	MemberID        int64
	MemberName      string
	PaymentMethod   string
	ReferenceNumber string
}

// Category returns the line item's category label.
func (li LineItem) Category() string {
	if li.CategoryName == "" {
		return model.Uncategorized
	}
	return li.CategoryName
}

// Report aggregates the line items of a date range.
type Report struct {
	Start             time.Time
	End               time.Time
	LineItems         []LineItem
	Income            []LineItem
	Expenses          []LineItem
	IncomeByCategory  map[string]decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
}

// NetIncome is income less expenses.
func (r *Report) NetIncome() decimal.Decimal {
	return r.TotalIncome.Sub(r.TotalExpenses)
}

// IsEmpty reports whether the range held no transactions. An empty report
// is a valid result, distinct from a failure to build one.
func (r *Report) IsEmpty() bool {
	return len(r.LineItems) == 0
}

// CategoryAmount is one row of a category breakdown.
type CategoryAmount struct {
	Name       string
	Amount     decimal.Decimal
	Percentage decimal.Decimal // share of total, 0..100
}

// IncomeBreakdown lists income categories, largest first.
func (r *Report) IncomeBreakdown() []CategoryAmount {
	return Breakdown(r.IncomeByCategory, r.TotalIncome)
}

// ExpenseBreakdown lists expense categories, largest first.
func (r *Report) ExpenseBreakdown() []CategoryAmount {
	return Breakdown(r.ExpenseByCategory, r.TotalExpenses)
}

// Breakdown orders category totals by amount descending, then name, with
// each share of total. Shares are zero when total is zero.
func Breakdown(byCategory map[string]decimal.Decimal, total decimal.Decimal) []CategoryAmount {
	rows := make([]CategoryAmount, 0, len(byCategory))
	for name, amt := range byCategory {
		rows = append(rows, CategoryAmount{Name: name, Amount: amt, Percentage: money.Percent(amt, total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount); c != 0 {
			return c > 0
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// Build expands transactions into line items and aggregates them. splits
// maps a transaction id to its recorded splits; a transaction with splits
// contributes one line item per split instead of itself.
//
// A split line takes its amount, category and member from the split only.
// Date, type, payee, payment method and reference come from the parent,
// and the description falls back to the parent's when the split has none.
func Build(start, end time.Time, txns []model.Transaction, splits map[int64][]model.Split) *Report {
	r := &Report{
		Start:             start,
		End:               end,
		IncomeByCategory:  make(map[string]decimal.Decimal),
		ExpenseByCategory: make(map[string]decimal.Decimal),
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
	}

	for _, t := range txns {
		if sp := splits[t.ID]; len(sp) > 0 {
			for _, s := range sp {
				r.LineItems = append(r.LineItems, splitItem(t, s))
			}
			continue
		}
		r.LineItems = append(r.LineItems, transactionItem(t))
	}

	for _, li := range r.LineItems {
		switch li.Type {
		case model.Income:
			r.Income = append(r.Income, li)
			r.IncomeByCategory[li.Category()] = r.IncomeByCategory[li.Category()].Add(li.Amount)
		case model.Expense:
			r.Expenses = append(r.Expenses, li)
			r.ExpenseByCategory[li.Category()] = r.ExpenseByCategory[li.Category()].Add(li.Amount)
		}
	}

	// Totals are re-summed from the line items, not from the category maps.
	for _, li := range r.Income {
		r.TotalIncome = r.TotalIncome.Add(li.Amount)
	}
	for _, li := range r.Expenses {
		r.TotalExpenses = r.TotalExpenses.Add(li.Amount)
	}
	return r
}

func transactionItem(t model.Transaction) LineItem {
	return LineItem{
		TransactionID:   t.ID,
		Date:            t.Date,
		Type:            t.Type,
		Amount:          t.Amount,
		Description:     t.Description,
		PayeePayer:      t.PayeePayer,
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		MemberID:        t.MemberID,
		MemberName:      t.MemberName,
		PaymentMethod:   t.PaymentMethod,
		ReferenceNumber: t.ReferenceNumber,
	}
}

func splitItem(t model.Transaction, s model.Split) LineItem {
	desc := s.Description
	if desc == "" {
		desc = t.Description
	}
	return LineItem{
		TransactionID:   t.ID,
		SplitID:         s.ID,
		IsSplit:         true,
		Date:            t.Date,
		Type:            t.Type,
		Amount:          s.Amount,
		Description:     desc,
		PayeePayer:      t.PayeePayer,
		CategoryID:      s.CategoryID,
		CategoryName:    s.CategoryName,
		MemberID:        s.MemberID,
		MemberName:      s.MemberName,
		PaymentMethod:   t.PaymentMethod,
		ReferenceNumber: t.ReferenceNumber,
	}
}
