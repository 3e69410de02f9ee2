package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/categories"
	"github.com/duesbook/duesbook/internal/export"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/transactions"
)

func newTransactionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Record and review transactions",
	}
	cmd.AddCommand(
		newTransactionListCommand(),
		newTransactionShowCommand(),
		newTransactionAddCommand(),
		newTransactionUpdateCommand(),
		newTransactionDeleteCommand(),
		newTransactionExportCommand(),
	)
	return cmd
}

// filterFlags binds the transaction list filters.
type filterFlags struct {
	from     string
	to       string
	typ      string
	category string
	member   int64
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.from, "from", "", "first date (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "last date (YYYY-MM-DD)")
	fs.StringVar(&f.typ, "type", "", "income or expense")
	fs.StringVar(&f.category, "category", "", `category name, or "uncategorized"`)
	fs.Int64Var(&f.member, "member", 0, "member id")
}

func (f *filterFlags) filter(ctx context.Context, a *app) (model.TransactionFilter, error) {
	var (
		tf  model.TransactionFilter
		err error
	)
	if f.from != "" {
		if tf.Start, err = parseDateFlag(f.from, "from"); err != nil {
			return tf, err
		}
	}
	if f.to != "" {
		if tf.End, err = parseDateFlag(f.to, "to"); err != nil {
			return tf, err
		}
	}
	if f.typ != "" {
		tf.Type = model.TransactionType(f.typ)
		if !tf.Type.Valid() {
			return tf, model.ValidationError{Field: "type", Message: "must be income or expense"}
		}
	}
	switch {
	case strings.EqualFold(f.category, "uncategorized"):
		tf.Uncategorized = true
	case f.category != "":
		c, err := a.store.CategoryByName(ctx, f.category)
		if err != nil {
			return tf, err
		}
		tf.CategoryID = c.ID
	}
	tf.MemberID = f.member
	return tf, nil
}

func newTransactionListCommand() *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			tf, err := f.filter(a.ctx, a)
			if err != nil {
				return err
			}
			txns, err := a.txns.List(a.ctx, tf)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tDESCRIPTION\tCATEGORY\tMEMBER\tSPLITS")
			for _, t := range txns {
				category := t.CategoryName
				if t.HasSplits() {
					category = "(split)"
				} else if category == "" {
					category = model.Uncategorized
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n", t.ID, model.FormatDate(t.Date), t.Type,
					money.Format(t.Amount), t.Description, category, orDash(t.MemberName), t.SplitCount)
			}
			return tw.Flush()
		}),
	}
	f.bind(cmd)
	return cmd
}

func newTransactionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a transaction and its splits",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			t, splits, err := a.txns.Get(a.ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transaction %d\n", t.ID)
			fmt.Fprintf(out, "  Date:        %s\n", model.FormatDate(t.Date))
			fmt.Fprintf(out, "  Type:        %s\n", t.Type)
			fmt.Fprintf(out, "  Amount:      %s\n", money.Format(t.Amount))
			fmt.Fprintf(out, "  Description: %s\n", orDash(t.Description))
			fmt.Fprintf(out, "  Payee/Payer: %s\n", orDash(t.PayeePayer))
			fmt.Fprintf(out, "  Category:    %s\n", orDash(t.CategoryName))
			fmt.Fprintf(out, "  Member:      %s\n", orDash(t.MemberName))
			fmt.Fprintf(out, "  Method:      %s\n", orDash(t.PaymentMethod))
			fmt.Fprintf(out, "  Reference:   %s\n", orDash(t.ReferenceNumber))
			fmt.Fprintf(out, "  Notes:       %s\n", orDash(t.Notes))
			if len(splits) == 0 {
				return nil
			}
			fmt.Fprintln(out, "Splits:")
			tw := newTable(out)
			fmt.Fprintln(tw, "  AMOUNT\tCATEGORY\tMEMBER\tDESCRIPTION")
			for _, s := range splits {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", money.Format(s.Amount), orDash(s.CategoryName),
					orDash(s.MemberName), orDash(s.Description))
			}
			return tw.Flush()
		}),
	}
}

// txnFlags binds the editable transaction fields.
type txnFlags struct {
	date        string
	amount      string
	typ         string
	description string
	payee       string
	category    string
	member      int64
	method      string
	reference   string
	notes       string
	splits      []string
	unsplit     bool
}

func (f *txnFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.date, "date", "", "date (YYYY-MM-DD)")
	fs.StringVar(&f.amount, "amount", "", "amount, always positive")
	fs.StringVar(&f.typ, "type", "", "income or expense")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.payee, "payee", "", "payee or payer")
	fs.StringVar(&f.category, "category", "", "category name")
	fs.Int64Var(&f.member, "member", 0, "member id")
	fs.StringVar(&f.method, "method", "", "payment method")
	fs.StringVar(&f.reference, "ref", "", "reference or check number")
	fs.StringVar(&f.notes, "notes", "", "notes")
	fs.StringArrayVar(&f.splits, "split", nil,
		`split line "amount:category[:member id[:description]]"; repeat for each line`)
}

func (f *txnFlags) apply(cmd *cobra.Command, idx *categories.Index, t model.Transaction) (model.Transaction, error) {
	changed := cmd.Flags().Changed
	var err error
	if changed("date") {
		if t.Date, err = parseDateFlag(f.date, "date"); err != nil {
			return t, err
		}
	}
	if changed("amount") {
		if t.Amount, err = parseAmountFlag(f.amount, "amount"); err != nil {
			return t, err
		}
	}
	if changed("type") {
		t.Type = model.TransactionType(f.typ)
	}
	if changed("description") {
		t.Description = f.description
	}
	if changed("payee") {
		t.PayeePayer = f.payee
	}
	if changed("category") {
		if t.CategoryID, err = categoryID(idx, f.category); err != nil {
			return t, err
		}
	}
	if changed("member") {
		t.MemberID = f.member
	}
	if changed("method") {
		t.PaymentMethod = f.method
	}
	if changed("ref") {
		t.ReferenceNumber = f.reference
	}
	if changed("notes") {
		t.Notes = f.notes
	}
	return t, nil
}

func categoryID(idx *categories.Index, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil
	}
	c, ok := idx.ByName(name)
	if !ok {
		return 0, model.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", name)}
	}
	return c.ID, nil
}

// parseSplit reads "amount:category[:member id[:description]]".
func parseSplit(idx *categories.Index, s string) (model.Split, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 2 {
		return model.Split{}, model.ValidationError{Field: "split", Message: fmt.Sprintf("%q must be amount:category", s)}
	}
	amount, err := parseAmountFlag(parts[0], "split amount")
	if err != nil {
		return model.Split{}, err
	}
	sp := model.Split{Amount: amount}
	if sp.CategoryID, err = categoryID(idx, parts[1]); err != nil {
		return model.Split{}, err
	}
	if len(parts) > 2 && parts[2] != "" {
		if sp.MemberID, err = parseID(parts[2], "split member"); err != nil {
			return model.Split{}, err
		}
	}
	if len(parts) > 3 {
		sp.Description = parts[3]
	}
	return sp, nil
}

func (f *txnFlags) parseSplits(idx *categories.Index) ([]model.Split, error) {
	splits := make([]model.Split, 0, len(f.splits))
	for _, s := range f.splits {
		sp, err := parseSplit(idx, s)
		if err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, nil
}

func newTransactionAddCommand() *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction, optionally split across categories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			idx, err := a.categories.Index(a.ctx)
			if err != nil {
				return err
			}
			t, err := f.apply(cmd, idx, model.Transaction{})
			if err != nil {
				return err
			}
			p := transactions.SaveParams{Transaction: t, SplitMode: len(f.splits) > 0}
			if p.SplitMode {
				if p.Splits, err = f.parseSplits(idx); err != nil {
					return err
				}
			}
			var id int64
			err = a.mutate(func(ctx context.Context) error {
				id, err = a.txns.Save(ctx, p)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded transaction %d\n", id)
			return nil
		}),
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newTransactionUpdateCommand() *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a transaction; existing splits are kept unless replaced or removed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			idx, err := a.categories.Index(a.ctx)
			if err != nil {
				return err
			}
			t, existing, err := a.txns.Get(a.ctx, id)
			if err != nil {
				return err
			}
			if t, err = f.apply(cmd, idx, t); err != nil {
				return err
			}

			p := transactions.SaveParams{Transaction: t}
			switch {
			case f.unsplit:
			case len(f.splits) > 0:
				p.SplitMode = true
				if p.Splits, err = f.parseSplits(idx); err != nil {
					return err
				}
			case len(existing) > 0:
				p.SplitMode = true
				p.Splits = existing
			}

			err = a.mutate(func(ctx context.Context) error {
				_, err := a.txns.Save(ctx, p)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated transaction %d\n", id)
			return nil
		}),
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&f.unsplit, "unsplit", false, "remove all splits")
	cmd.MarkFlagsMutuallyExclusive("split", "unsplit")
	return cmd
}

func newTransactionDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and its splits",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete transaction %d?", id))
			if err != nil || !ok {
				return err
			}
			if err := a.mutate(func(ctx context.Context) error { return a.txns.Delete(ctx, id) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newTransactionExportCommand() *cobra.Command {
	var f filterFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			tf, err := f.filter(a.ctx, a)
			if err != nil {
				return err
			}
			txns, err := a.txns.List(a.ctx, tf)
			if err != nil {
				return err
			}
			return writeFile(cmd, out, func(w io.Writer) error {
				return export.WriteTransactionsCSV(w, txns)
			})
		}),
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "-", `output file, "-" for stdout`)
	return cmd
}
