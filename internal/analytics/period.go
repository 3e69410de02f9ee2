package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/duesbook/duesbook/internal/model"
)

// Kind is the length of a reporting period.
type Kind int

const (
	Month Kind = iota + 1
	Quarter
	Year
)

func (k Kind) String() string {
	switch k {
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	}
	return "unknown"
}

// Period is a calendar month, quarter or year. Index is the month (1-12)
// or quarter (1-4) and is unused for years.
type Period struct {
	Kind  Kind
	Year  int
	Index int
}

// MonthPeriod returns the period for a calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Kind: Month, Year: year, Index: int(month)}
}

// QuarterPeriod returns the period for quarter q (1-4).
func QuarterPeriod(year, q int) Period {
	return Period{Kind: Quarter, Year: year, Index: q}
}

// YearPeriod returns the period for a calendar year.
func YearPeriod(year int) Period {
	return Period{Kind: Year, Year: year}
}

// ParsePeriod reads a period key: "2025" for a year, "2025-Q1" for a
// quarter or "2025-03" for a month.
func ParsePeriod(key string) (Period, error) {
	key = strings.TrimSpace(key)
	yearPart, rest, hasRest := strings.Cut(key, "-")
	year, err := strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return Period{}, fmt.Errorf("invalid period %q: year must be four digits", key)
	}
	if !hasRest {
		return YearPeriod(year), nil
	}
	if q, ok := strings.CutPrefix(strings.ToUpper(rest), "Q"); ok {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 4 {
			return Period{}, fmt.Errorf("invalid period %q: quarter must be Q1-Q4", key)
		}
		return QuarterPeriod(year, n), nil
	}
	m, err := strconv.Atoi(rest)
	if err != nil || m < 1 || m > 12 {
		return Period{}, fmt.Errorf("invalid period %q: month must be 01-12", key)
	}
	return MonthPeriod(year, time.Month(m)), nil
}

// Start is the first day of the period.
func (p Period) Start() time.Time {
	switch p.Kind {
	case Month:
		return model.Date(p.Year, time.Month(p.Index), 1)
	case Quarter:
		return model.Date(p.Year, time.Month((p.Index-1)*3+1), 1)
	default:
		return model.Date(p.Year, time.January, 1)
	}
}

// End is the last day of the period, inclusive.
func (p Period) End() time.Time {
	return p.Next().Start().AddDate(0, 0, -1)
}

// Previous is the period immediately before p.
func (p Period) Previous() Period {
	return p.shift(-1)
}

// Next is the period immediately after p.
func (p Period) Next() Period {
	return p.shift(1)
}

// YearAgo is the same period one year earlier.
func (p Period) YearAgo() Period {
	p.Year--
	return p
}

func (p Period) shift(n int) Period {
	var per int
	switch p.Kind {
	case Month:
		per = 12
	case Quarter:
		per = 4
	default:
		p.Year += n
		return p
	}
	total := p.Year*per + (p.Index - 1) + n
	p.Year = floorDiv(total, per)
	p.Index = total - p.Year*per + 1
	return p
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Key renders the period in ParsePeriod form.
func (p Period) Key() string {
	switch p.Kind {
	case Month:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Index)
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", p.Year, p.Index)
	default:
		return fmt.Sprintf("%04d", p.Year)
	}
}

// String is a human label such as "December 2025" or "Q1 2025".
func (p Period) String() string {
	switch p.Kind {
	case Month:
		return fmt.Sprintf("%s %d", time.Month(p.Index), p.Year)
	case Quarter:
		return fmt.Sprintf("Q%d %d", p.Index, p.Year)
	default:
		return strconv.Itoa(p.Year)
	}
}
