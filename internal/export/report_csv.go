package export

import (
	"io"

	"github.com/duesbook/duesbook/internal/analytics"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/report"
)

// WriteReportCSV writes a report as titled sections: summary, income and
// expense breakdowns, then every line item with split lines flagged.
func WriteReportCSV(w io.Writer, r *report.Report, h Header) error {
	s := newSheet(w)
	s.row(h.reportTitle())
	s.row("Generated", h.generated())
	s.row("Period", model.FormatDate(r.Start)+" to "+model.FormatDate(r.End))
	s.blank()

	s.row("SUMMARY")
	s.row("Total Income", amount(r.TotalIncome))
	s.row("Total Expenses", amount(r.TotalExpenses))
	s.row("Net Income", amount(r.NetIncome()))
	s.blank()

	writeBreakdown(s, "INCOME BY CATEGORY", r.IncomeBreakdown())
	s.blank()
	writeBreakdown(s, "EXPENSES BY CATEGORY", r.ExpenseBreakdown())
	s.blank()

	s.row("TRANSACTION DETAILS")
	s.row("Date", "Type", "Description", "Payee/Payer", "Amount", "Category", "Member", "Split")
	for _, li := range r.LineItems {
		s.row(
			model.FormatDate(li.Date),
			string(li.Type),
			li.Description,
			orNA(li.PayeePayer),
			amount(li.Amount),
			li.Category(),
			li.MemberName,
			yesNo(li.IsSplit),
		)
	}
	return s.flush()
}

func writeBreakdown(s *sheet, title string, rows []report.CategoryAmount) {
	s.row(title)
	s.row("Category", "Amount", "Percentage")
	for _, c := range rows {
		s.row(c.Name, amount(c.Amount), percent(c.Percentage))
	}
}

// WriteComparisonCSV writes a period-over-period variance table.
func WriteComparisonCSV(w io.Writer, c *analytics.Comparison, h Header) error {
	s := newSheet(w)
	s.row("Comparative Report")
	s.row("Generated", h.generated())
	s.row("Current Period", c.CurrentPeriod.String(),
		model.FormatDate(c.CurrentPeriod.Start())+" to "+model.FormatDate(c.CurrentPeriod.End()))
	s.row("Previous Period", c.PreviousPeriod.String(),
		model.FormatDate(c.PreviousPeriod.Start())+" to "+model.FormatDate(c.PreviousPeriod.End()))
	s.blank()

	s.row("Metric", "Current", "Previous", "Change", "Change %")
	for _, v := range []struct {
		name string
		v    analytics.Variance
	}{
		{"Total Income", c.Income},
		{"Total Expenses", c.Expenses},
		{"Net Income", c.Net},
	} {
		s.row(v.name, amount(v.v.Current), amount(v.v.Previous), amount(v.v.Change), percent(v.v.Percent))
	}
	s.blank()

	writeBreakdown(s, "CURRENT INCOME BY CATEGORY", c.Current.IncomeBreakdown())
	s.blank()
	writeBreakdown(s, "PREVIOUS INCOME BY CATEGORY", c.Previous.IncomeBreakdown())
	s.blank()
	writeBreakdown(s, "CURRENT EXPENSES BY CATEGORY", c.Current.ExpenseBreakdown())
	s.blank()
	writeBreakdown(s, "PREVIOUS EXPENSES BY CATEGORY", c.Previous.ExpenseBreakdown())
	return s.flush()
}

// WriteBoardCSV writes the board executive summary.
func WriteBoardCSV(w io.Writer, b analytics.BoardSummary, h Header) error {
	s := newSheet(w)
	s.row("Board Executive Summary")
	s.row("Organization", h.Organization.Name)
	s.row("Generated", h.generated())
	s.row("Period", model.FormatDate(b.Report.Start)+" to "+model.FormatDate(b.Report.End))
	s.blank()

	s.row("KEY METRICS")
	s.row("Total Revenue", amount(b.TotalIncome))
	s.row("Total Expenses", amount(b.TotalExpenses))
	s.row("Net Income", amount(b.NetIncome))
	s.row("Profit Margin", percent(b.ProfitMargin))
	s.row("Expense Ratio", percent(b.ExpenseRatio))
	s.row("Active Members", itoa(b.ActiveMembers))
	s.row("Renewals Next 3 Months", itoa(b.UpcomingRenewals))
	s.blank()

	s.row("PROJECTIONS", "fixed multipliers, not a forecast")
	s.row("Projected Income (+10%)", amount(b.ProjectedIncome))
	s.row("Projected Expenses (+5%)", amount(b.ProjectedExpenses))
	s.row("Projected Net", amount(b.ProjectedNet))
	s.blank()

	writeBreakdown(s, "INCOME BY CATEGORY", b.Report.IncomeBreakdown())
	s.blank()
	writeBreakdown(s, "EXPENSES BY CATEGORY", b.Report.ExpenseBreakdown())
	return s.flush()
}
