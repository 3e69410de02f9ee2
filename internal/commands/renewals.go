package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/analytics"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/renewals"
)

func newRenewalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "renewals",
		Aliases: []string{"renewal"},
		Short:   "Track membership renewals and bill them",
	}
	cmd.AddCommand(
		newRenewalsUpcomingCommand(),
		newRenewalsOverdueCommand(),
		newRenewalsRemindersCommand(),
		newRenewalsInvoiceCommand(),
	)
	return cmd
}

// parseMonth reads a YYYY-MM flag, defaulting to the current month.
func parseMonth(s string, today time.Time) (int, time.Month, error) {
	if s == "" {
		return today.Year(), today.Month(), nil
	}
	p, err := analytics.ParsePeriod(s)
	if err != nil || p.Kind != analytics.Month {
		return 0, 0, model.ValidationError{Field: "month", Message: fmt.Sprintf("%q must be YYYY-MM", s), Err: err}
	}
	return p.Year, time.Month(p.Index), nil
}

func printCandidates(w io.Writer, cands []renewals.Candidate) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tMEMBER\tTYPE\tRENEWS\tDUES\tDAYS OVERDUE")
	for _, c := range cands {
		days := "-"
		if c.Overdue {
			days = fmt.Sprint(c.DaysOverdue)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.Member.ID, c.Member.BusinessName, c.Member.MembershipType,
			model.FormatDate(c.Member.RenewalDate), money.Format(c.Amount), days)
	}
	return tw.Flush()
}

func newRenewalsUpcomingCommand() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List members renewing in a month",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			year, m, err := parseMonth(month, a.today())
			if err != nil {
				return err
			}
			cands, err := a.renewals.Upcoming(a.ctx, year, m)
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No renewals in %s %d\n", m, year)
				return nil
			}
			return printCandidates(cmd.OutOrStdout(), cands)
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM), default this month")
	return cmd
}

func newRenewalsOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List active members past their renewal date",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			cands, err := a.renewals.FindOverdueMembers(a.ctx)
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No overdue renewals")
				return nil
			}
			return printCandidates(cmd.OutOrStdout(), cands)
		}),
	}
}

func newRenewalsRemindersCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List active members renewing soon",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if days < 0 {
				return model.ValidationError{Field: "days", Message: "cannot be negative"}
			}
			due, err := a.renewals.Reminders(a.ctx, days)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No renewals in the next %d days\n", days)
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tMEMBER\tCONTACT\tEMAIL\tRENEWS")
			for _, m := range due {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.BusinessName, orDash(m.ContactPerson),
					orDash(m.Email), model.FormatDate(m.RenewalDate))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVar(&days, "days", 30, "look-ahead window in days")
	return cmd
}

func newRenewalsInvoiceCommand() *cobra.Command {
	var (
		overdue bool
		month   string
	)

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create renewal invoices for a month, or for overdue members",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			var (
				cands  []renewals.Candidate
				source string
				err    error
			)
			if overdue {
				source = "overdue"
				cands, err = a.renewals.FindOverdueMembers(a.ctx)
			} else {
				var (
					year int
					m    time.Month
				)
				if year, m, err = parseMonth(month, a.today()); err != nil {
					return err
				}
				source = fmt.Sprintf("%d-%02d", year, m)
				cands, err = a.renewals.Upcoming(a.ctx, year, m)
			}
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No members to invoice")
				return nil
			}

			var res model.BatchResult
			err = a.mutate(func(ctx context.Context) error {
				res = a.renewals.GenerateInvoices(ctx, cands)
				return nil
			})
			if err != nil {
				return err
			}
			a.recordBatch(cmd, "renewal_invoices", source, res)
			fmt.Fprintf(cmd.OutOrStdout(), "Renewal invoices: %s\n", res)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&overdue, "overdue", false, "invoice members past their renewal date")
	cmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM), default this month")
	cmd.MarkFlagsMutuallyExclusive("overdue", "month")
	return cmd
}
