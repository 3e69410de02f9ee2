// Package export renders reports and ledger sections as CSV and PDF.
package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
)

// DefaultTitle heads a financial report when no organization is named.
const DefaultTitle = "Chamber Finance Report"

// Organization is printed at the top of documents.
type Organization struct {
	Name         string
	Address      string
	CityStateZip string
}

// Header carries the metadata every exported document starts with.
type Header struct {
	Organization Organization
	Generated    time.Time
}

func (h Header) reportTitle() string {
	if h.Organization.Name == "" {
		return DefaultTitle
	}
	return h.Organization.Name + " Finance Report"
}

func (h Header) generated() string {
	return model.FormatDate(h.Generated)
}

// sheet wraps csv.Writer and keeps the first write error.
type sheet struct {
	w   *csv.Writer
	err error
}

func newSheet(w io.Writer) *sheet {
	return &sheet{w: csv.NewWriter(w)}
}

func (s *sheet) row(fields ...string) {
	if s.err != nil {
		return
	}
	s.err = s.w.Write(fields)
}

func (s *sheet) blank() {
	s.row()
}

func (s *sheet) flush() error {
	if s.err != nil {
		return s.err
	}
	s.w.Flush()
	return s.w.Error()
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return money.FormatPercent(d)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
