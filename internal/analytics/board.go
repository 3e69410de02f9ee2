package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/renewals"
	"github.com/duesbook/duesbook/internal/report"
)

// Projection multipliers. These scale the period's actuals for
// illustration only; they are not a forecast.
var (
	IncomeProjectionFactor  = decimal.RequireFromString("1.10")
	ExpenseProjectionFactor = decimal.RequireFromString("1.05")
)

// RenewalHorizonMonths bounds the upcoming renewals count.
const RenewalHorizonMonths = 3

// BoardSummary is the one-page view for the board of directors.
type BoardSummary struct {
	Report            *report.Report
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	NetIncome         decimal.Decimal
	ProfitMargin      decimal.Decimal // net / income * 100
	ExpenseRatio      decimal.Decimal // expenses / income * 100
	ProjectedIncome   decimal.Decimal
	ProjectedExpenses decimal.Decimal
	ProjectedNet      decimal.Decimal
	ActiveMembers     int
	UpcomingRenewals  int
}

// Board summarizes a report together with membership figures as of today.
func Board(r *report.Report, members []model.Member, today time.Time) BoardSummary {
	s := BoardSummary{
		Report:            r,
		TotalIncome:       r.TotalIncome,
		TotalExpenses:     r.TotalExpenses,
		NetIncome:         r.NetIncome(),
		ProfitMargin:      money.Percent(r.NetIncome(), r.TotalIncome),
		ExpenseRatio:      money.Percent(r.TotalExpenses, r.TotalIncome),
		ProjectedIncome:   r.TotalIncome.Mul(IncomeProjectionFactor),
		ProjectedExpenses: r.TotalExpenses.Mul(ExpenseProjectionFactor),
	}
	s.ProjectedNet = s.ProjectedIncome.Sub(s.ProjectedExpenses)

	horizon := model.DateOf(today).AddDate(0, RenewalHorizonMonths, 0)
	for _, m := range members {
		if !m.IsActive() {
			continue
		}
		s.ActiveMembers++
		if renewals.RenewsWithin(m, today, horizon) {
			s.UpcomingRenewals++
		}
	}
	return s
}
