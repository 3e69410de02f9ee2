package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/analytics"
	"github.com/duesbook/duesbook/internal/export"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/report"
)

const (
	formatText = "text"
	formatCSV  = "csv"
	formatPDF  = "pdf"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"reports"},
		Short:   "Financial reports",
	}
	cmd.AddCommand(
		newReportShowCommand(),
		newReportCompareCommand(),
		newReportBoardCommand(),
	)
	return cmd
}

// periodArg parses an optional period argument, defaulting to the current month.
func periodArg(args []string, today time.Time) (analytics.Period, error) {
	if len(args) == 0 {
		return analytics.MonthPeriod(today.Year(), today.Month()), nil
	}
	p, err := analytics.ParsePeriod(args[0])
	if err != nil {
		return analytics.Period{}, model.ValidationError{Field: "period", Message: err.Error(), Err: err}
	}
	return p, nil
}

// reportRange resolves the date range from an explicit --from/--to pair or a period.
func reportRange(args []string, from, to string, today time.Time) (start, end time.Time, label string, err error) {
	if from == "" && to == "" {
		p, err := periodArg(args, today)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		return p.Start(), p.End(), p.Key(), nil
	}
	if len(args) > 0 {
		return time.Time{}, time.Time{}, "", model.ValidationError{Field: "period", Message: "give a period or --from/--to, not both"}
	}
	if start, err = parseDateFlag(from, "from"); err != nil {
		return
	}
	if end, err = parseDateFlag(to, "to"); err != nil {
		return
	}
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, "", model.ValidationError{Field: "from", Message: "--from and --to must be given together"}
	}
	return start, end, model.FormatDate(start) + "_" + model.FormatDate(end), nil
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatCSV, formatPDF:
		return nil
	}
	return model.ValidationError{Field: "format", Message: fmt.Sprintf("unknown format %q: must be text, csv or pdf", format)}
}

// reportOutput picks the output path: PDFs default to the exports directory,
// everything else to stdout.
func reportOutput(a *app, out, format, name string) string {
	if out != "" {
		return out
	}
	if format == formatPDF {
		return filepath.Join(a.root, "exports", name+".pdf")
	}
	return "-"
}

func newReportShowCommand() *cobra.Command {
	var (
		from   string
		to     string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "show [period]",
		Short: "Income and expenses by category for a period (YYYY, YYYY-Qn or YYYY-MM)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			start, end, label, err := reportRange(args, from, to, a.today())
			if err != nil {
				return err
			}
			r, err := a.reports.Generate(a.ctx, start, end)
			if err != nil {
				return err
			}
			h := a.header()
			return writeFile(cmd, reportOutput(a, out, format, "report-"+label), func(w io.Writer) error {
				switch format {
				case formatCSV:
					return export.WriteReportCSV(w, r, h)
				case formatPDF:
					return export.WriteReportPDF(w, r, h)
				}
				return printReport(w, r)
			})
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	fs.StringVar(&to, "to", "", "last date (YYYY-MM-DD)")
	fs.StringVarP(&format, "format", "f", formatText, "text, csv or pdf")
	fs.StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)
	return cmd
}

func printReport(w io.Writer, r *report.Report) error {
	fmt.Fprintf(w, "Report %s to %s\n\n", model.FormatDate(r.Start), model.FormatDate(r.End))
	if r.IsEmpty() {
		fmt.Fprintln(w, "No transactions in this period.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Total income\t%s\n", money.Format(r.TotalIncome))
	fmt.Fprintf(tw, "Total expenses\t%s\n", money.Format(r.TotalExpenses))
	fmt.Fprintf(tw, "Net income\t%s\n", money.Format(r.NetIncome()))
	if err := tw.Flush(); err != nil {
		return err
	}
	if err := printBreakdown(w, "Income by category", r.IncomeBreakdown()); err != nil {
		return err
	}
	return printBreakdown(w, "Expenses by category", r.ExpenseBreakdown())
}

func printBreakdown(w io.Writer, title string, rows []report.CategoryAmount) error {
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", title)
	tw := newTable(w)
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", row.Name, money.Format(row.Amount), money.FormatPercent(row.Percentage))
	}
	return tw.Flush()
}

// defaultMode compares like with like: months with the previous month,
// quarters with the previous quarter, years with the previous year.
func defaultMode(p analytics.Period) analytics.Mode {
	switch p.Kind {
	case analytics.Month:
		return analytics.MonthOverMonth
	case analytics.Quarter:
		return analytics.QuarterOverQuarter
	}
	return analytics.YearOverYear
}

func newReportCompareCommand() *cobra.Command {
	var (
		mode   string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "compare [period]",
		Short: "Compare a period with the one before it or the same period last year",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if format == formatPDF {
				return model.ValidationError{Field: "format", Message: "comparisons export as text or csv"}
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			p, err := periodArg(args, a.today())
			if err != nil {
				return err
			}
			m := defaultMode(p)
			if mode != "" {
				m = analytics.Mode(mode)
			}
			cur, prev, err := analytics.PeriodsFor(m, p)
			if err != nil {
				return model.ValidationError{Field: "mode", Message: err.Error(), Err: err}
			}
			c, err := analytics.ComparePeriods(a.ctx, a.reports, cur, prev)
			if err != nil {
				return err
			}
			h := a.header()
			return writeFile(cmd, reportOutput(a, out, format, ""), func(w io.Writer) error {
				if format == formatCSV {
					return export.WriteComparisonCSV(w, c, h)
				}
				return printComparison(w, c)
			})
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&mode, "mode", "", "month-over-month, quarter-over-quarter or year-over-year")
	fs.StringVarP(&format, "format", "f", formatText, "text or csv")
	fs.StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)
	return cmd
}

func printComparison(w io.Writer, c *analytics.Comparison) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "\t%s\t%s\tCHANGE\t%%\n", c.CurrentPeriod, c.PreviousPeriod)
	for _, row := range []struct {
		name string
		v    analytics.Variance
	}{
		{"Income", c.Income},
		{"Expenses", c.Expenses},
		{"Net", c.Net},
	} {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.name, money.Format(row.v.Current), money.Format(row.v.Previous),
			money.Format(row.v.Change), money.FormatPercent(row.v.Percent))
	}
	return tw.Flush()
}

func newReportBoardCommand() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "board [period]",
		Short: "Summary for the board of directors",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if format == formatPDF {
				return model.ValidationError{Field: "format", Message: "board summaries export as text or csv"}
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			p, err := periodArg(args, a.today())
			if err != nil {
				return err
			}
			r, err := a.reports.Generate(a.ctx, p.Start(), p.End())
			if err != nil {
				return err
			}
			members, err := a.cache.Members(a.ctx)
			if err != nil {
				return err
			}
			b := analytics.Board(r, members, a.today())
			h := a.header()
			return writeFile(cmd, reportOutput(a, out, format, ""), func(w io.Writer) error {
				if format == formatCSV {
					return export.WriteBoardCSV(w, b, h)
				}
				return printBoard(w, p, b)
			})
		}),
	}
	fs := cmd.Flags()
	fs.StringVarP(&format, "format", "f", formatText, "text or csv")
	fs.StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)
	return cmd
}

func printBoard(w io.Writer, p analytics.Period, b analytics.BoardSummary) error {
	fmt.Fprintf(w, "Board summary, %s\n\n", p)
	tw := newTable(w)
	fmt.Fprintf(tw, "Total income\t%s\n", money.Format(b.TotalIncome))
	fmt.Fprintf(tw, "Total expenses\t%s\n", money.Format(b.TotalExpenses))
	fmt.Fprintf(tw, "Net income\t%s\n", money.Format(b.NetIncome))
	fmt.Fprintf(tw, "Profit margin\t%s\n", money.FormatPercent(b.ProfitMargin))
	fmt.Fprintf(tw, "Expense ratio\t%s\n", money.FormatPercent(b.ExpenseRatio))
	fmt.Fprintf(tw, "Projected income (+10%%)\t%s\n", money.Format(b.ProjectedIncome))
	fmt.Fprintf(tw, "Projected expenses (+5%%)\t%s\n", money.Format(b.ProjectedExpenses))
	fmt.Fprintf(tw, "Projected net\t%s\n", money.Format(b.ProjectedNet))
	fmt.Fprintf(tw, "Active members\t%d\n", b.ActiveMembers)
	fmt.Fprintf(tw, "Renewals next %d months\t%d\n", analytics.RenewalHorizonMonths, b.UpcomingRenewals)
	return tw.Flush()
}
