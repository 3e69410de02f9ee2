// Package money parses, compares and formats dollar amounts.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tolerance is the largest difference treated as equal when balancing splits.
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

var printer = message.NewPrinter(language.English)

// Parse reads an amount such as "1,234.50", "$12" or "(40.00)".
// Parenthesized amounts are negative.
func Parse(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		neg = true
		raw = raw[1 : len(raw)-1]
	}
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Format renders d as "$1,234.56" with a leading minus for negatives.
func Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// FormatPercent renders p with one decimal place, e.g. "60.0%".
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}
