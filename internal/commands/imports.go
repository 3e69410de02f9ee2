package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/batchlog"
	"github.com/duesbook/duesbook/internal/importer"
	"github.com/duesbook/duesbook/internal/model"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions and members from CSV",
	}
	cmd.AddCommand(
		newImportKindCommand("transactions", "Import bank transactions from a CSV file"),
		newImportKindCommand("members", "Import members from a CSV file"),
		newImportInboxCommand(),
		newImportLogCommand(),
	)
	return cmd
}

func (a *app) importers() *importer.Registry {
	reg := importer.NewRegistry()
	reg.Register(importer.NewTransactionImporter(a.txns, a.cfg.Import.PaymentMethod, a.cfg.Import.Notes))
	reg.Register(importer.NewMemberImporter(a.members))
	return reg
}

// importFile runs one file through the importer for kind and records the batch.
func (a *app) importFile(cmd *cobra.Command, kind, path string) (model.BatchResult, error) {
	imp := a.importers().Get(kind)
	if imp == nil {
		return model.BatchResult{}, model.ValidationError{Field: "kind", Message: fmt.Sprintf("no importer for %q", kind)}
	}
	var res model.BatchResult
	err := a.mutate(func(ctx context.Context) error {
		var err error
		res, err = importer.ImportFile(ctx, imp, path)
		return err
	})
	if err != nil {
		return res, err
	}
	a.recordBatch(cmd, "import_"+imp.Kind(), filepath.Base(path), res)
	return res, nil
}

func newImportKindCommand(kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			res, err := a.importFile(cmd, kind, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %s\n", filepath.Base(args[0]), res)
			return nil
		}),
	}
}

func newImportInboxCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Import every CSV waiting in the import inbox",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			inbox := a.cfg.InboxPath(a.root)
			files, err := importer.Scan(inbox)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No CSV files in %s\n", inbox)
				return nil
			}

			failed := 0
			for _, f := range files {
				res, err := a.importFile(cmd, kind, f.Path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f.Name, UserMessage(err))
					continue
				}
				if err := importer.MarkProcessed(inbox, f.Name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %s\n", f.Name, res)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) could not be imported", failed, len(files))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&kind, "kind", "transactions", "what the inbox files hold: transactions or members")
	return cmd
}

func newImportLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the batch log of imports and renewal invoicing",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			entries, err := batchlog.Read(a.root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIME\tACTION\tSOURCE\tOK\tFAILED\tSKIPPED\tBATCH")
			for _, e := range entries {
				r := e.Result()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Action,
					e.Source, r.SuccessCount, r.ErrorCount, r.Skipped, r.BatchID)
			}
			return tw.Flush()
		}),
	}
}
