package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/report"
)

func date(y, m, d int) time.Time {
	return model.Date(y, time.Month(m), d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		key     string
		want    Period
		wantErr bool
	}{
		{key: "2025", want: YearPeriod(2025)},
		{key: "2025-Q1", want: QuarterPeriod(2025, 1)},
		{key: "2025-q4", want: QuarterPeriod(2025, 4)},
		{key: "2025-03", want: MonthPeriod(2025, time.March)},
		{key: "2025-12", want: MonthPeriod(2025, time.December)},
		{key: "25", wantErr: true},
		{key: "2025-13", wantErr: true},
		{key: "2025-Q5", wantErr: true},
		{key: "2025-xx", wantErr: true},
		{key: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParsePeriod(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_DecemberRollsOver(t *testing.T) {
	dec2025 := MonthPeriod(2025, time.December)

	assert.Equal(t, date(2025, 12, 1), dec2025.Start())
	assert.Equal(t, date(2025, 12, 31), dec2025.End())

	prev := dec2025.Previous()
	assert.Equal(t, MonthPeriod(2025, time.November), prev)
	assert.Equal(t, date(2025, 11, 30), prev.End())

	next := dec2025.Next()
	assert.Equal(t, MonthPeriod(2026, time.January), next)
	assert.Equal(t, date(2026, 1, 1), next.Start())
}

func TestPeriod_JanuaryPreviousIsDecember(t *testing.T) {
	assert.Equal(t, MonthPeriod(2024, time.December), MonthPeriod(2025, time.January).Previous())
}

func TestPeriod_Quarters(t *testing.T) {
	q1 := QuarterPeriod(2025, 1)
	assert.Equal(t, date(2025, 1, 1), q1.Start())
	assert.Equal(t, date(2025, 3, 31), q1.End())
	assert.Equal(t, QuarterPeriod(2024, 4), q1.Previous())
	assert.Equal(t, QuarterPeriod(2026, 1), QuarterPeriod(2025, 4).Next())
	assert.Equal(t, date(2025, 12, 31), QuarterPeriod(2025, 4).End())
}

func TestPeriod_YearAndLabels(t *testing.T) {
	y := YearPeriod(2024)
	assert.Equal(t, date(2024, 1, 1), y.Start())
	assert.Equal(t, date(2024, 12, 31), y.End())
	assert.Equal(t, YearPeriod(2023), y.Previous())
	assert.Equal(t, MonthPeriod(2024, time.March), MonthPeriod(2025, time.March).YearAgo())

	assert.Equal(t, "2025-03", MonthPeriod(2025, time.March).Key())
	assert.Equal(t, "2025-Q2", QuarterPeriod(2025, 2).Key())
	assert.Equal(t, "2025", YearPeriod(2025).Key())
	assert.Equal(t, "March 2025", MonthPeriod(2025, time.March).String())
	assert.Equal(t, "Q2 2025", QuarterPeriod(2025, 2).String())
}

func TestPeriodsFor(t *testing.T) {
	cur, prev, err := PeriodsFor(MonthOverMonth, MonthPeriod(2025, time.December))
	require.NoError(t, err)
	assert.Equal(t, MonthPeriod(2025, time.December), cur)
	assert.Equal(t, MonthPeriod(2025, time.November), prev)

	_, prev, err = PeriodsFor(YearOverYear, QuarterPeriod(2025, 1))
	require.NoError(t, err)
	assert.Equal(t, QuarterPeriod(2024, 1), prev)

	_, _, err = PeriodsFor(MonthOverMonth, YearPeriod(2025))
	assert.Error(t, err)
	_, _, err = PeriodsFor(QuarterOverQuarter, MonthPeriod(2025, time.May))
	assert.Error(t, err)
	_, _, err = PeriodsFor(Mode("weekly"), MonthPeriod(2025, time.May))
	assert.Error(t, err)
}

func TestNewVariance(t *testing.T) {
	v := NewVariance(dec("150"), dec("100"))
	assert.True(t, v.Change.Equal(dec("50")))
	assert.True(t, v.Percent.Equal(dec("50")))

	v = NewVariance(dec("50"), dec("-100"))
	assert.True(t, v.Change.Equal(dec("150")))
	assert.True(t, v.Percent.Equal(dec("150")), "relative to the magnitude of previous")

	v = NewVariance(dec("10"), decimal.Zero)
	assert.True(t, v.Percent.IsZero())
}

type fakeGenerator struct {
	mu      sync.Mutex
	reports map[time.Time]*report.Report
	calls   []time.Time
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, start, end time.Time) (*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, start)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.reports[start]; ok {
		return r, nil
	}
	return report.Build(start, end, nil, nil), nil
}

func reportWith(start time.Time, income, expense string) *report.Report {
	txns := []model.Transaction{
		{ID: 1, Date: start, Amount: dec(income), Type: model.Income},
		{ID: 2, Date: start, Amount: dec(expense), Type: model.Expense},
	}
	return report.Build(start, start, txns, nil)
}

func TestComparePeriods(t *testing.T) {
	gen := &fakeGenerator{reports: map[time.Time]*report.Report{
		date(2025, 12, 1): reportWith(date(2025, 12, 1), "300", "100"),
		date(2025, 11, 1): reportWith(date(2025, 11, 1), "200", "150"),
	}}

	c, err := ComparePeriods(context.Background(), gen,
		MonthPeriod(2025, time.December), MonthPeriod(2025, time.November))
	require.NoError(t, err)

	assert.Len(t, gen.calls, 2)
	assert.Equal(t, MonthPeriod(2025, time.December), c.CurrentPeriod)
	assert.True(t, c.Income.Change.Equal(dec("100")))
	assert.True(t, c.Income.Percent.Equal(dec("50")))
	assert.True(t, c.Expenses.Change.Equal(dec("-50")))
	assert.True(t, c.Net.Current.Equal(dec("200")))
	assert.True(t, c.Net.Previous.Equal(dec("50")))
	assert.True(t, c.Net.Percent.Equal(dec("300")))
}

func TestComparePeriods_Error(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("disk gone")}
	_, err := ComparePeriods(context.Background(), gen, YearPeriod(2025), YearPeriod(2024))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestBoard(t *testing.T) {
	today := date(2025, 6, 15)
	r := reportWith(date(2025, 1, 1), "1000", "400")
	members := []model.Member{
		{ID: 1, Status: model.MemberActive, RenewalDate: date(2025, 7, 1)},
		{ID: 2, Status: model.MemberActive, RenewalDate: date(2025, 9, 15)},
		{ID: 3, Status: model.MemberActive, RenewalDate: date(2025, 9, 16)},
		{ID: 4, Status: model.MemberActive},
		{ID: 5, Status: model.MemberInactive, RenewalDate: date(2025, 7, 1)},
	}

	s := Board(r, members, today)

	assert.True(t, s.NetIncome.Equal(dec("600")))
	assert.True(t, s.ProfitMargin.Equal(dec("60")))
	assert.True(t, s.ExpenseRatio.Equal(dec("40")))
	assert.True(t, s.ProjectedIncome.Equal(dec("1100")))
	assert.True(t, s.ProjectedExpenses.Equal(dec("420")))
	assert.True(t, s.ProjectedNet.Equal(dec("680")))
	assert.Equal(t, 4, s.ActiveMembers)
	assert.Equal(t, 2, s.UpcomingRenewals)
}

func TestBoard_NoIncome(t *testing.T) {
	s := Board(report.Build(date(2025, 1, 1), date(2025, 1, 31), nil, nil), nil, date(2025, 2, 1))
	assert.True(t, s.ProfitMargin.IsZero())
	assert.True(t, s.ExpenseRatio.IsZero())
	assert.Zero(t, s.ActiveMembers)
}
