package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/batchlog"
	"github.com/duesbook/duesbook/internal/cache"
	"github.com/duesbook/duesbook/internal/categories"
	"github.com/duesbook/duesbook/internal/config"
	"github.com/duesbook/duesbook/internal/export"
	"github.com/duesbook/duesbook/internal/invoices"
	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/members"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/renewals"
	"github.com/duesbook/duesbook/internal/report"
	"github.com/duesbook/duesbook/internal/store"
	"github.com/duesbook/duesbook/internal/transactions"
)

// app is a project opened for one command.
type app struct {
	ctx        context.Context
	root       string
	cfg        *config.Config
	store      *store.Store
	clock      func() time.Time
	members    *members.Service
	categories *categories.Service
	txns       *transactions.Service
	invoices   *invoices.Service
	renewals   *renewals.Service
	reports    *report.Aggregator
	cache      *cache.Repository
}

func projectDir(cmd *cobra.Command) (string, error) {
	dir := "."
	if f := cmd.Flag("dir"); f != nil {
		dir = f.Value.String()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// openApp loads the project configuration and opens the ledger.
func openApp(cmd *cobra.Command) (*app, error) {
	root, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s is not a duesbook project; run 'duesbook init' first", root)
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithContext(ctx, logger.New(cfg.Logging.Level, cfg.Logging.Format))

	st, err := store.Open(ctx, cfg.DatabasePath(root))
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return newApp(ctx, root, cfg, st, time.Now), nil
}

func newApp(ctx context.Context, root string, cfg *config.Config, st *store.Store, clock func() time.Time) *app {
	inv := invoices.NewService(st, clock, cfg.Invoices.PaymentTermsDays)
	return &app{
		ctx:        ctx,
		root:       root,
		cfg:        cfg,
		store:      st,
		clock:      clock,
		members:    members.NewService(st, clock),
		categories: categories.NewService(st),
		txns:       transactions.NewService(st),
		invoices:   inv,
		renewals:   renewals.NewService(st, inv, clock),
		reports:    report.NewAggregator(st),
		cache:      cache.New(st, inv, clock),
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// mutate runs fn and then reloads the cached snapshot.
func (a *app) mutate(fn func(ctx context.Context) error) error {
	return a.cache.Mutate(a.ctx, fn)
}

func (a *app) today() time.Time {
	return model.DateOf(a.clock())
}

func (a *app) header() export.Header {
	return export.Header{
		Organization: export.Organization{
			Name:         a.cfg.Organization.Name,
			Address:      a.cfg.Organization.Address,
			CityStateZip: a.cfg.Organization.CityStateZip,
		},
		Generated: a.today(),
	}
}

// recordBatch appends a finished batch to the project's batch log. The batch
// has already been committed, so a log failure is only reported.
func (a *app) recordBatch(cmd *cobra.Command, action, source string, r model.BatchResult) {
	log := logger.FromContext(a.ctx)
	entry := batchlog.FromResult(a.clock(), action, source, r)
	if err := batchlog.Append(a.root, []batchlog.Entry{entry}); err != nil {
		log.Warn().Err(err).Str("batch_id", r.BatchID).Msg("appending batch log")
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: batch log not updated: %v\n", err)
	}
}

// withApp opens the project around run.
func withApp(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, a, args)
	}
}

// UserMessage is the text shown for err. Validation and not-found errors
// carry their own message; store failures are reported generically since
// the detail is already in the log.
func UserMessage(err error) string {
	var ve model.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var nf model.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var se model.StoreError
	if errors.As(err, &se) {
		return "operation failed; see the log for details"
	}
	return err.Error()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ValidationError{Field: what + " id", Message: fmt.Sprintf("%q is not a valid id", s)}
	}
	return id, nil
}

func parseDateFlag(s, field string) (time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, model.ValidationError{Field: field, Message: fmt.Sprintf("%q must be YYYY-MM-DD", s), Err: err}
	}
	return d, nil
}

func parseAmountFlag(s, field string) (decimal.Decimal, error) {
	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, model.ValidationError{Field: field, Message: err.Error(), Err: err}
	}
	return d, nil
}

// confirm asks a yes/no question on the command's input unless yes is set.
func confirm(cmd *cobra.Command, yes bool, prompt string) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	return false, nil
}

// createOutput opens path for writing, or returns stdout when path is "-".
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeFile renders into path via write, closing the file afterwards.
func writeFile(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	w, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if path != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
