package report

import (
	"context"
	"fmt"
	"time"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

// Source is the ledger data a report reads.
type Source interface {
	ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	ListSplits(ctx context.Context, transactionID int64) ([]model.Split, error)
}

// Aggregator builds reports from the ledger.
type Aggregator struct {
	src Source
}

// NewAggregator creates an Aggregator over src.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Generate reports on [start, end], both inclusive calendar dates.
func (a *Aggregator) Generate(ctx context.Context, start, end time.Time) (*Report, error) {
	log := logger.FromContext(ctx)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, model.ValidationError{Field: "date range", Message: fmt.Sprintf("end %s is before start %s", model.FormatDate(end), model.FormatDate(start))}
	}

	txns, err := a.src.ListTransactions(ctx, model.TransactionFilter{Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	splits := make(map[int64][]model.Split)
	for _, t := range txns {
		if !t.HasSplits() {
			continue
		}
		sp, err := a.src.ListSplits(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("loading splits for transaction %d: %w", t.ID, err)
		}
		splits[t.ID] = sp
	}

	r := Build(start, end, txns, splits)
	log.Debug().
		Str("start", model.FormatDate(start)).
		Str("end", model.FormatDate(end)).
		Int("transactions", len(txns)).
		Int("line_items", len(r.LineItems)).
		Msg("report generated")
	return r, nil
}
