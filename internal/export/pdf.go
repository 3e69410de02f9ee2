package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/money"
	"github.com/duesbook/duesbook/internal/report"
)

const (
	pdfMargin     = 18.0
	pdfLineHeight = 6.0
	pdfFont       = "Helvetica"
	longDate      = "January 2, 2006"
)

// document wraps fpdf with the text translator the core fonts need.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string, h Header) *document {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("duesbook", true)
	if !h.Generated.IsZero() {
		pdf.SetCreationDate(h.Generated)
	}
	pdf.AliasNbPages("")
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) width() float64 {
	w, _ := d.pdf.GetPageSize()
	return w - 2*pdfMargin
}

func (d *document) text(size float64, style, s string) {
	d.pdf.SetFont(pdfFont, style, size)
	d.pdf.CellFormat(0, pdfLineHeight, d.tr(s), "", 1, "L", false, 0, "")
}

func (d *document) rightText(size float64, style, s string) {
	d.pdf.SetFont(pdfFont, style, size)
	d.pdf.CellFormat(0, pdfLineHeight, d.tr(s), "", 1, "R", false, 0, "")
}

func (d *document) keyValue(key, value string) {
	d.pdf.SetFont(pdfFont, "", 11)
	d.pdf.CellFormat(60, pdfLineHeight, d.tr(key), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(0, pdfLineHeight, d.tr(value), "", 1, "L", false, 0, "")
}

func (d *document) rule() {
	y := d.pdf.GetY()
	d.pdf.Line(pdfMargin, y, pdfMargin+d.width(), y)
	d.pdf.Ln(2)
}

// table draws a header row and body rows. widths are fractions of the
// printable width; aligns holds one fpdf alignment per column.
func (d *document) table(headers []string, widths []float64, aligns []string, rows [][]string) {
	total := d.width()
	d.pdf.SetFont(pdfFont, "B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		d.pdf.CellFormat(widths[i]*total, pdfLineHeight, d.tr(h), "B", 0, aligns[i], true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(pdfFont, "", 9)
	for _, row := range rows {
		for i, cell := range row {
			w := widths[i] * total
			d.pdf.CellFormat(w, pdfLineHeight-1, d.fit(cell, w), "", 0, aligns[i], false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

// fit truncates s so it renders within w.
func (d *document) fit(s string, w float64) string {
	s = d.tr(s)
	if d.pdf.GetStringWidth(s) <= w-1 {
		return s
	}
	for len(s) > 0 && d.pdf.GetStringWidth(s+"...") > w-1 {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func (d *document) output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// WriteReportPDF renders a printable financial report.
func WriteReportPDF(w io.Writer, r *report.Report, h Header) error {
	title := h.reportTitle()
	d := newDocument(title, h)

	d.text(18, "B", title)
	d.text(11, "", "Generated: "+h.Generated.Format(longDate))
	d.text(11, "", fmt.Sprintf("Period: %s to %s", model.FormatDate(r.Start), model.FormatDate(r.End)))
	d.pdf.Ln(4)

	d.text(14, "B", "SUMMARY")
	d.keyValue("Total Income", money.Format(r.TotalIncome))
	d.keyValue("Total Expenses", money.Format(r.TotalExpenses))
	d.keyValue("Net Income", money.Format(r.NetIncome()))
	d.pdf.Ln(4)

	if r.IsEmpty() {
		d.text(11, "I", "No transactions in this period.")
		return d.output(w)
	}

	d.breakdown("INCOME BY CATEGORY", r.IncomeBreakdown())
	d.breakdown("EXPENSES BY CATEGORY", r.ExpenseBreakdown())

	d.text(14, "B", "TRANSACTION DETAILS")
	rows := make([][]string, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		desc := li.Description
		if li.IsSplit {
			desc = "[split] " + desc
		}
		rows = append(rows, []string{
			model.FormatDate(li.Date),
			string(li.Type),
			desc,
			li.Category(),
			money.Format(li.Amount),
		})
	}
	d.table(
		[]string{"Date", "Type", "Description", "Category", "Amount"},
		[]float64{0.14, 0.10, 0.40, 0.20, 0.16},
		[]string{"L", "L", "L", "L", "R"},
		rows,
	)
	return d.output(w)
}

func (d *document) breakdown(title string, rows []report.CategoryAmount) {
	d.text(14, "B", title)
	if len(rows) == 0 {
		d.text(10, "I", "None")
		d.pdf.Ln(2)
		return
	}
	body := make([][]string, 0, len(rows))
	for _, c := range rows {
		body = append(body, []string{c.Name, money.Format(c.Amount), money.FormatPercent(c.Percentage)})
	}
	d.table(
		[]string{"Category", "Amount", "Share"},
		[]float64{0.6, 0.25, 0.15},
		[]string{"L", "R", "R"},
		body,
	)
	d.pdf.Ln(4)
}

// InvoiceDocument is everything printed on an invoice.
type InvoiceDocument struct {
	Invoice          model.Invoice
	Member           model.Member
	PaymentTermsDays int
}

// WriteInvoicePDF renders a single-page invoice.
func WriteInvoicePDF(w io.Writer, doc InvoiceDocument, h Header) error {
	inv := doc.Invoice
	d := newDocument("Invoice "+inv.Number, h)

	org := h.Organization.Name
	if org == "" {
		org = "Chamber of Commerce"
	}
	top := d.pdf.GetY()
	d.text(22, "B", strings.ToUpper(org))
	d.text(16, "B", "INVOICE")

	d.pdf.SetY(top)
	d.rightText(11, "", "Invoice #: "+inv.Number)
	d.rightText(11, "", "Issue Date: "+inv.IssueDate.Format(longDate))
	d.rightText(11, "", "Due Date: "+inv.DueDate.Format(longDate))
	d.rightText(11, "", "Status: "+strings.ToUpper(string(inv.Status)))
	d.pdf.Ln(10)

	d.text(13, "B", "BILL TO:")
	m := doc.Member
	d.text(11, "", m.BusinessName)
	for _, line := range []string{m.ContactPerson, m.Address, m.Email, m.Phone} {
		if line != "" {
			d.text(11, "", line)
		}
	}
	d.pdf.Ln(8)

	d.table(
		[]string{"DESCRIPTION", "AMOUNT"},
		[]float64{0.75, 0.25},
		[]string{"L", "R"},
		[][]string{{inv.Description, money.Format(inv.Amount)}},
	)
	d.pdf.Ln(2)
	d.rule()
	d.rightText(13, "B", "TOTAL: "+money.Format(inv.Amount))
	d.pdf.Ln(10)

	d.text(11, "B", "PAYMENT TERMS:")
	d.text(10, "", fmt.Sprintf("Payment is due within %d days of invoice date.", doc.PaymentTermsDays))
	d.text(10, "", "Please remit payment to:")
	d.text(10, "", org)
	if h.Organization.Address != "" {
		d.text(10, "", h.Organization.Address)
	}
	if h.Organization.CityStateZip != "" {
		d.text(10, "", h.Organization.CityStateZip)
	}

	if inv.Notes != "" {
		d.pdf.Ln(6)
		d.text(11, "B", "NOTES:")
		d.pdf.SetFont(pdfFont, "", 10)
		d.pdf.MultiCell(0, 5, d.tr(inv.Notes), "", "L", false)
	}
	return d.output(w)
}
