package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/analytics"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
)

const (
	reminderDays       = 30
	recentTransactions = 5
)

func newDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of finances, members and open invoices",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			today := a.today()
			month := analytics.MonthPeriod(today.Year(), today.Month())

			thisMonth, err := a.store.SummaryByType(a.ctx, month.Start(), month.End())
			if err != nil {
				return err
			}
			allTime, err := a.store.SummaryByType(a.ctx, time.Time{}, today)
			if err != nil {
				return err
			}
			inv, err := a.invoices.Summarize(a.ctx)
			if err != nil {
				return err
			}
			snap, err := a.cache.Snapshot(a.ctx)
			if err != nil {
				return err
			}
			due, err := a.renewals.Reminders(a.ctx, reminderDays)
			if err != nil {
				return err
			}

			active := 0
			for _, m := range snap.Members {
				if m.IsActive() {
					active++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s\n\n", a.cfg.Organization.Name, model.FormatDate(today))
			tw := newTable(out)
			fmt.Fprintf(tw, "\t%s\tTO DATE\n", month)
			fmt.Fprintf(tw, "Income\t%s\t%s\n", money.Format(thisMonth.Income), money.Format(allTime.Income))
			fmt.Fprintf(tw, "Expenses\t%s\t%s\n", money.Format(thisMonth.Expenses), money.Format(allTime.Expenses))
			fmt.Fprintf(tw, "Net\t%s\t%s\n", money.Format(thisMonth.Net()), money.Format(allTime.Net()))
			fmt.Fprintln(tw, "\t\t")
			fmt.Fprintf(tw, "Active members\t%d\t\n", active)
			fmt.Fprintf(tw, "Renewals in %d days\t%d\t\n", reminderDays, len(due))
			fmt.Fprintf(tw, "Pending invoices\t%d\t\n", inv.Pending)
			fmt.Fprintf(tw, "Overdue invoices\t%d\t\n", inv.Overdue)
			fmt.Fprintf(tw, "Outstanding\t%s\t\n", money.Format(inv.Outstanding))
			if err := tw.Flush(); err != nil {
				return err
			}

			recent := snap.Transactions
			if len(recent) > recentTransactions {
				recent = recent[:recentTransactions]
			}
			if len(recent) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nRecent transactions")
			tw = newTable(out)
			for _, t := range recent {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", model.FormatDate(t.Date), t.Type, money.Format(t.Amount), t.Description)
			}
			return tw.Flush()
		}),
	}
}
