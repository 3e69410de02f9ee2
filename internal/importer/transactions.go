package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/transactions"
)

// ErrMissingField marks a row that lacks a required column. Such rows are
// skipped rather than counted as failures.
var ErrMissingField = errors.New("missing required field")

// TransactionSaver persists an imported transaction.
type TransactionSaver interface {
	Save(ctx context.Context, p transactions.SaveParams) (int64, error)
}

// TransactionImporter turns bank CSV rows into uncategorized transactions.
type TransactionImporter struct {
	saver         TransactionSaver
	paymentMethod string
	notes         string
}

// NewTransactionImporter creates a TransactionImporter that stamps every
// row with paymentMethod and notes.
func NewTransactionImporter(saver TransactionSaver, paymentMethod, notes string) *TransactionImporter {
	return &TransactionImporter{saver: saver, paymentMethod: paymentMethod, notes: notes}
}

// Kind returns the importer name.
func (i *TransactionImporter) Kind() string { return "transactions" }

// Import saves one transaction per row. The sign of the amount picks the
// type; the stored amount is its absolute value.
func (i *TransactionImporter) Import(ctx context.Context, r io.Reader) (model.BatchResult, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return model.BatchResult{}, err
	}

	batchID := uuid.New().String()
	log := logger.FromContext(ctx).With().Str("batch_id", batchID).Str("kind", i.Kind()).Logger()

	res := model.BatchResult{BatchID: batchID}
	for n, row := range rows {
		t, err := i.Convert(row)
		if errors.Is(err, ErrMissingField) {
			log.Debug().Int("row", n+1).Err(err).Msg("skipping row")
			res.Skipped++
			continue
		}
		if err != nil {
			log.Warn().Int("row", n+1).Err(err).Msg("invalid row")
			res.ErrorCount++
			continue
		}
		if _, err := i.saver.Save(ctx, transactions.SaveParams{Transaction: t, AllowZeroAmount: true}); err != nil {
			log.Warn().Int("row", n+1).Err(err).Msg("saving imported transaction")
			res.ErrorCount++
			continue
		}
		res.SuccessCount++
	}

	log.Info().Int("count", res.SuccessCount).Int("errors", res.ErrorCount).Int("skipped", res.Skipped).
		Msg("transactions imported")
	return res, nil
}

// Convert maps a row to a transaction without saving it.
func (i *TransactionImporter) Convert(row Row) (model.Transaction, error) {
	rawDate := TransactionFields.Lookup(row, FieldDate)
	desc := TransactionFields.Lookup(row, FieldDescription)
	rawAmount := TransactionFields.Lookup(row, FieldAmount)
	if rawDate == "" || desc == "" || rawAmount == "" {
		return model.Transaction{}, ErrMissingField
	}

	amount, err := money.Parse(rawAmount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	d, err := ParseDate(rawDate)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("date: %w", err)
	}

	typ := model.Income
	if amount.IsNegative() {
		typ = model.Expense
	}
	return model.Transaction{
		Date:            d,
		Amount:          amount.Abs(),
		Description:     desc,
		Type:            typ,
		PaymentMethod:   i.paymentMethod,
		ReferenceNumber: TransactionFields.Lookup(row, FieldReference),
		Notes:           i.notes,
	}, nil
}
