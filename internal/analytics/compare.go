package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/report"
)

// Mode names how the previous period is chosen.
type Mode string

const (
	MonthOverMonth     Mode = "month-over-month"
	QuarterOverQuarter Mode = "quarter-over-quarter"
	YearOverYear       Mode = "year-over-year"
)

// Variance compares one figure across two periods.
type Variance struct {
	Current  decimal.Decimal
	Previous decimal.Decimal
	Change   decimal.Decimal
	Percent  decimal.Decimal // change relative to |previous|; 0 when previous is 0
}

// NewVariance computes the change from previous to current.
func NewVariance(current, previous decimal.Decimal) Variance {
	change := current.Sub(previous)
	return Variance{
		Current:  current,
		Previous: previous,
		Change:   change,
		Percent:  money.Percent(change, previous.Abs()),
	}
}

// Comparison sets two reports side by side.
type Comparison struct {
	CurrentPeriod  Period
	PreviousPeriod Period
	Current        *report.Report
	Previous       *report.Report
	Income         Variance
	Expenses       Variance
	Net            Variance
}

// Compare derives variances from two reports.
func Compare(current, previous *report.Report) Comparison {
	return Comparison{
		Current:  current,
		Previous: previous,
		Income:   NewVariance(current.TotalIncome, previous.TotalIncome),
		Expenses: NewVariance(current.TotalExpenses, previous.TotalExpenses),
		Net:      NewVariance(current.NetIncome(), previous.NetIncome()),
	}
}

// PeriodsFor picks the current and previous periods for a comparison mode.
func PeriodsFor(mode Mode, current Period) (Period, Period, error) {
	switch mode {
	case MonthOverMonth:
		if current.Kind != Month {
			return Period{}, Period{}, fmt.Errorf("%s needs a month period, got %s", mode, current.Key())
		}
		return current, current.Previous(), nil
	case QuarterOverQuarter:
		if current.Kind != Quarter {
			return Period{}, Period{}, fmt.Errorf("%s needs a quarter period, got %s", mode, current.Key())
		}
		return current, current.Previous(), nil
	case YearOverYear:
		return current, current.YearAgo(), nil
	}
	return Period{}, Period{}, fmt.Errorf("unknown comparison mode %q", mode)
}

// Generator produces a report for a date range.
type Generator interface {
	Generate(ctx context.Context, start, end time.Time) (*report.Report, error)
}

// ComparePeriods generates both reports and compares them.
func ComparePeriods(ctx context.Context, gen Generator, current, previous Period) (*Comparison, error) {
	var cur, prev *report.Report

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := gen.Generate(gctx, current.Start(), current.End())
		if err != nil {
			return fmt.Errorf("%s report: %w", current, err)
		}
		cur = r
		return nil
	})
	g.Go(func() error {
		r, err := gen.Generate(gctx, previous.Start(), previous.End())
		if err != nil {
			return fmt.Errorf("%s report: %w", previous, err)
		}
		prev = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := Compare(cur, prev)
	c.CurrentPeriod = current
	c.PreviousPeriod = previous
	return &c, nil
}
