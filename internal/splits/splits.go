// Package splits balances a transaction's split allocations against its total.
package splits

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
)

var (
	// ErrNoSplits means split mode was requested with no splits.
	ErrNoSplits = errors.New("at least one split is required")
	// ErrSumMismatch means the splits do not add up to the transaction total.
	ErrSumMismatch = errors.New("split amounts do not equal transaction total")
)

// Sum adds the split amounts.
func Sum(splits []model.Split) decimal.Decimal {
	total := decimal.Zero
	for _, sp := range splits {
		total = total.Add(sp.Amount)
	}
	return total
}

// Remaining is the part of total not yet allocated to splits.
func Remaining(total decimal.Decimal, splits []model.Split) decimal.Decimal {
	return total.Sub(Sum(splits))
}

// Validate checks that splits is non-empty and sums to total within
// money.Tolerance. The returned error is a model.ValidationError wrapping
// ErrNoSplits or ErrSumMismatch.
func Validate(total decimal.Decimal, splits []model.Split) error {
	if len(splits) == 0 {
		return model.ValidationError{Field: "splits", Message: ErrNoSplits.Error(), Err: ErrNoSplits}
	}
	sum := Sum(splits)
	if !money.WithinTolerance(sum, total) {
		gap := Remaining(total, splits)
		detail := gap.StringFixed(2) + " unallocated"
		if gap.IsNegative() {
			detail = gap.Neg().StringFixed(2) + " over"
		}
		return model.ValidationError{
			Field:   "splits",
			Message: fmt.Sprintf("splits total %s but transaction is %s (%s)", sum.StringFixed(2), total.StringFixed(2), detail),
			Err:     ErrSumMismatch,
		}
	}
	return nil
}

// Normalize drops splits whose amount is exactly zero. They are
// placeholders that were never filled in.
func Normalize(splits []model.Split) []model.Split {
	kept := make([]model.Split, 0, len(splits))
	for _, sp := range splits {
		if sp.Amount.IsZero() {
			continue
		}
		kept = append(kept, sp)
	}
	return kept
}

// Reconcile validates splits against total and returns the set to persist.
func Reconcile(total decimal.Decimal, splits []model.Split) ([]model.Split, error) {
	if err := Validate(total, splits); err != nil {
		return nil, err
	}
	return Normalize(splits), nil
}
