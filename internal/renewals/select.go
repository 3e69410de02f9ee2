package renewals

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/model"
)

// DefaultDues is billed when a membership type names no amount.
var DefaultDues = decimal.NewFromInt(100)

var duesPattern = regexp.MustCompile(`\$(\d+)`)

// DuesAmount extracts the first "$<digits>" from a membership type label,
// e.g. "Individual ($100)" gives 100. Labels without one bill DefaultDues.
func DuesAmount(membershipType string) decimal.Decimal {
	m := duesPattern.FindStringSubmatch(membershipType)
	if m == nil {
		return DefaultDues
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return DefaultDues
	}
	return d
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year int, month time.Month) (first, last time.Time) {
	first = model.Date(year, month, 1)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// RenewsInMonth reports whether m's renewal date falls within the month, inclusive.
func RenewsInMonth(m model.Member, year int, month time.Month) bool {
	if !m.HasRenewalDate() {
		return false
	}
	first, last := MonthBounds(year, month)
	d := model.DateOf(m.RenewalDate)
	return !d.Before(first) && !d.After(last)
}

// IsOverdue reports whether m is active and its renewal date is strictly before today.
func IsOverdue(m model.Member, today time.Time) bool {
	return m.IsActive() && m.HasRenewalDate() && model.DateOf(m.RenewalDate).Before(model.DateOf(today))
}

// RenewsWithin reports whether m renews between today and until, inclusive.
func RenewsWithin(m model.Member, today, until time.Time) bool {
	if !m.HasRenewalDate() {
		return false
	}
	d := model.DateOf(m.RenewalDate)
	return !d.Before(model.DateOf(today)) && !d.After(model.DateOf(until))
}

// Candidate is a member selected for a renewal invoice.
type Candidate struct {
	Member      model.Member
	Amount      decimal.Decimal
	Overdue     bool
	DaysOverdue int
}

// UpcomingInMonth selects members whose renewal date falls in the month.
func UpcomingInMonth(members []model.Member, year int, month time.Month) []Candidate {
	var out []Candidate
	for _, m := range members {
		if RenewsInMonth(m, year, month) {
			out = append(out, Candidate{Member: m, Amount: DuesAmount(m.MembershipType)})
		}
	}
	return out
}

// Overdue selects active members whose renewal date has passed.
func Overdue(members []model.Member, today time.Time) []Candidate {
	var out []Candidate
	t := model.DateOf(today)
	for _, m := range members {
		if !IsOverdue(m, t) {
			continue
		}
		days := int(t.Sub(model.DateOf(m.RenewalDate)).Hours() / 24)
		out = append(out, Candidate{
			Member:      m,
			Amount:      DuesAmount(m.MembershipType),
			Overdue:     true,
			DaysOverdue: days,
		})
	}
	return out
}

// DueWithin selects active members renewing in the next days days, today included.
func DueWithin(members []model.Member, today time.Time, days int) []model.Member {
	until := model.DateOf(today).AddDate(0, 0, days)
	var out []model.Member
	for _, m := range members {
		if m.IsActive() && RenewsWithin(m, today, until) {
			out = append(out, m)
		}
	}
	return out
}
