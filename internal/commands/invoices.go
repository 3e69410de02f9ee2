package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/export"
	"github.com/duesbook/duesbook/internal/invoices"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
)

func newInvoiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoice",
		Aliases: []string{"invoices"},
		Short:   "Bill members and track payment",
	}
	cmd.AddCommand(
		newInvoiceListCommand(),
		newInvoiceCreateCommand(),
		newInvoiceStatusCommand(),
		newInvoicePromoteCommand(),
		newInvoicePDFCommand(),
		newInvoiceDeleteCommand(),
		newInvoiceExportCommand(),
	)
	return cmd
}

func invoiceFilter(status string, member int64) (model.InvoiceFilter, error) {
	f := model.InvoiceFilter{Status: model.InvoiceStatus(status), MemberID: member}
	if status != "" && !f.Status.Valid() {
		return f, model.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return f, nil
}

func newInvoiceListCommand() *cobra.Command {
	var (
		status string
		member int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			f, err := invoiceFilter(status, member)
			if err != nil {
				return err
			}
			list, err := a.invoices.List(a.ctx, f)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNUMBER\tMEMBER\tISSUED\tDUE\tAMOUNT\tSTATUS\tPAID")
			for _, inv := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", inv.ID, inv.Number, inv.BusinessName,
					model.FormatDate(inv.IssueDate), model.FormatDate(inv.DueDate), money.Format(inv.Amount),
					inv.Status, orDash(model.FormatDate(inv.PaidDate)))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, paid, overdue or cancelled")
	cmd.Flags().Int64Var(&member, "member", 0, "member id")
	return cmd
}

func newInvoiceCreateCommand() *cobra.Command {
	var (
		member      int64
		amount      string
		issued      string
		due         string
		description string
		status      string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice for a member",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			p := invoices.CreateParams{
				MemberID:    member,
				Description: description,
				Status:      model.InvoiceStatus(status),
				Notes:       notes,
			}
			var err error
			if p.Amount, err = parseAmountFlag(amount, "amount"); err != nil {
				return err
			}
			if p.IssueDate, err = parseDateFlag(issued, "issued"); err != nil {
				return err
			}
			if p.DueDate, err = parseDateFlag(due, "due"); err != nil {
				return err
			}

			var inv model.Invoice
			err = a.mutate(func(ctx context.Context) error {
				inv, err = a.invoices.Create(ctx, p)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %s for %s, due %s\n",
				inv.Number, money.Format(inv.Amount), model.FormatDate(inv.DueDate))
			return nil
		}),
	}
	fs := cmd.Flags()
	fs.Int64Var(&member, "member", 0, "member id")
	fs.StringVar(&amount, "amount", "", "amount owed")
	fs.StringVar(&issued, "issued", "", "issue date (YYYY-MM-DD), default today")
	fs.StringVar(&due, "due", "", "due date (YYYY-MM-DD), default issue date plus payment terms")
	fs.StringVar(&description, "description", "", "description")
	fs.StringVar(&status, "status", "", "initial status, default pending")
	fs.StringVar(&notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newInvoiceStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an invoice to a new status; paying it records the income",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "invoice")
			if err != nil {
				return err
			}
			to := model.InvoiceStatus(args[1])
			var n int64
			err = a.mutate(func(ctx context.Context) error {
				n, err = a.invoices.SetStatus(ctx, id, to)
				return err
			})
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Invoice %d is already %s\n", id, to)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %d marked %s\n", id, to)
			return nil
		}),
	}
}

func newInvoicePromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Mark pending invoices past their due date as overdue",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			var n int64
			err := a.mutate(func(ctx context.Context) error {
				var err error
				n, err = a.invoices.PromoteOverdue(ctx)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d invoice(s) marked overdue\n", n)
			return nil
		}),
	}
}

func newInvoicePDFCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Render an invoice as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "invoice")
			if err != nil {
				return err
			}
			inv, err := a.invoices.Get(a.ctx, id)
			if err != nil {
				return err
			}
			m, err := a.members.Get(a.ctx, inv.MemberID)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.root, "exports", inv.Number+".pdf")
			}
			doc := export.InvoiceDocument{Invoice: inv, Member: m, PaymentTermsDays: a.cfg.Invoices.PaymentTermsDays}
			return writeFile(cmd, out, func(w io.Writer) error {
				return export.WriteInvoicePDF(w, doc, a.header())
			})
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, default exports/<number>.pdf")
	return cmd
}

func newInvoiceDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "invoice")
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete invoice %d?", id))
			if err != nil || !ok {
				return err
			}
			if err := a.mutate(func(ctx context.Context) error { return a.invoices.Delete(ctx, id) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted invoice %d\n", id)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newInvoiceExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all invoices as CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			list, err := a.cache.Invoices(a.ctx)
			if err != nil {
				return err
			}
			return writeFile(cmd, out, func(w io.Writer) error {
				return export.WriteInvoicesCSV(w, list)
			})
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", `output file, "-" for stdout`)
	return cmd
}
