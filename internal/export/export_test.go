package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duesbook/duesbook/internal/analytics"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/report"
)

func date(y, m, d int) time.Time {
	return model.Date(y, time.Month(m), d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func header() Header {
	return Header{
		Organization: Organization{Name: "Springfield Chamber", Address: "1 Main St", CityStateZip: "Springfield, KY 40069"},
		Generated:    date(2025, 4, 2),
	}
}

func marchReport() *report.Report {
	txns := []model.Transaction{
		{ID: 1, Date: date(2025, 3, 10), Amount: dec("100"), Type: model.Income, Description: "Check 1044",
			PayeePayer: "Acme, Inc", SplitCount: 2},
		{ID: 2, Date: date(2025, 3, 12), Amount: dec("45"), Type: model.Expense, Description: "Phone bill",
			CategoryName: "Phone"},
	}
	splits := map[int64][]model.Split{
		1: {
			{ID: 10, Amount: dec("60"), CategoryName: "Membership Dues", MemberName: "Acme, Inc"},
			{ID: 11, Amount: dec("40"), CategoryName: "Donations"},
		},
	}
	return report.Build(date(2025, 3, 1), date(2025, 3, 31), txns, splits)
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	require.NoError(t, err)
	return recs
}

func findRow(recs [][]string, first string) []string {
	for _, rec := range recs {
		if len(rec) > 0 && rec[0] == first {
			return rec
		}
	}
	return nil
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, marchReport(), header()))

	recs := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"Springfield Chamber Finance Report"}, recs[0])
	assert.Equal(t, []string{"Generated", "2025-04-02"}, recs[1])
	assert.Equal(t, []string{"Period", "2025-03-01 to 2025-03-31"}, recs[2])

	assert.Equal(t, []string{"Total Income", "100.00"}, findRow(recs, "Total Income"))
	assert.Equal(t, []string{"Net Income", "55.00"}, findRow(recs, "Net Income"))
	assert.Equal(t, []string{"Membership Dues", "60.00", "60.0%"}, findRow(recs, "Membership Dues"))
	assert.Equal(t, []string{"Phone", "45.00", "100.0%"}, findRow(recs, "Phone"))

	details := findRow(recs, "2025-03-10")
	require.NotNil(t, details)
	assert.Equal(t, []string{"2025-03-10", "income", "Check 1044", "Acme, Inc", "60.00", "Membership Dues", "Acme, Inc", "Yes"}, details)

	phone := findRow(recs, "2025-03-12")
	assert.Equal(t, "No", phone[7])
	assert.Contains(t, buf.String(), "TRANSACTION DETAILS")
}

func TestWriteReportCSV_DefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, report.Build(date(2025, 1, 1), date(2025, 1, 31), nil, nil), Header{}))
	assert.True(t, strings.HasPrefix(buf.String(), DefaultTitle+"\n"))
}

func TestWriteComparisonCSV(t *testing.T) {
	cur := marchReport()
	prev := report.Build(date(2025, 2, 1), date(2025, 2, 28), []model.Transaction{
		{ID: 5, Date: date(2025, 2, 3), Amount: dec("80"), Type: model.Income},
	}, nil)
	c := analytics.Compare(cur, prev)
	c.CurrentPeriod = analytics.MonthPeriod(2025, time.March)
	c.PreviousPeriod = analytics.MonthPeriod(2025, time.February)

	var buf bytes.Buffer
	require.NoError(t, WriteComparisonCSV(&buf, &c, header()))
	recs := readCSV(t, buf.Bytes())

	assert.Equal(t, []string{"Previous Period", "February 2025", "2025-02-01 to 2025-02-28"}, findRow(recs, "Previous Period"))
	assert.Equal(t, []string{"Total Income", "100.00", "80.00", "20.00", "25.0%"}, findRow(recs, "Total Income"))
	assert.Equal(t, []string{"Total Expenses", "45.00", "0.00", "45.00", "0.0%"}, findRow(recs, "Total Expenses"))
}

func TestWriteBoardCSV(t *testing.T) {
	members := []model.Member{
		{Status: model.MemberActive, RenewalDate: date(2025, 5, 1)},
		{Status: model.MemberInactive},
	}
	b := analytics.Board(marchReport(), members, date(2025, 4, 2))

	var buf bytes.Buffer
	require.NoError(t, WriteBoardCSV(&buf, b, header()))
	recs := readCSV(t, buf.Bytes())

	assert.Equal(t, []string{"Profit Margin", "55.0%"}, findRow(recs, "Profit Margin"))
	assert.Equal(t, []string{"Active Members", "1"}, findRow(recs, "Active Members"))
	assert.Equal(t, []string{"Renewals Next 3 Months", "1"}, findRow(recs, "Renewals Next 3 Months"))
	assert.Equal(t, []string{"Projected Income (+10%)", "110.00"}, findRow(recs, "Projected Income (+10%)"))
}

func TestSectionCSVs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMembersCSV(&buf, []model.Member{
		{ID: 3, BusinessName: "Acme, Inc", MembershipType: "Business ($250)", Status: model.MemberActive,
			JoinDate: date(2024, 1, 5)},
	}))
	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, "Acme, Inc", recs[1][1])
	assert.Equal(t, "2024-01-05", recs[1][7])
	assert.Equal(t, "", recs[1][8])

	buf.Reset()
	require.NoError(t, WriteInvoicesCSV(&buf, []model.Invoice{
		{Number: "INV-0001", BusinessName: "Acme", IssueDate: date(2025, 1, 1), DueDate: date(2025, 1, 31),
			Amount: dec("250"), Status: model.InvoicePending},
	}))
	recs = readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"INV-0001", "Acme", "2025-01-01", "2025-01-31", "250.00", "", "pending", "", "", ""}, recs[1])

	buf.Reset()
	require.NoError(t, WriteTransactionsCSV(&buf, []model.Transaction{
		{ID: 7, Date: date(2025, 2, 1), Amount: dec("12.5"), Type: model.Expense, SplitCount: 2},
	}))
	recs = readCSV(t, buf.Bytes())
	assert.Equal(t, "12.50", recs[1][3])
	assert.Equal(t, model.Uncategorized, recs[1][6])
	assert.Equal(t, "2", recs[1][11])
}

func TestWriteReportPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportPDF(&buf, marchReport(), header()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	buf.Reset()
	empty := report.Build(date(2025, 1, 1), date(2025, 1, 31), nil, nil)
	require.NoError(t, WriteReportPDF(&buf, empty, Header{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteInvoicePDF(t *testing.T) {
	doc := InvoiceDocument{
		Invoice: model.Invoice{
			Number: "INV-0007", IssueDate: date(2025, 3, 1), DueDate: date(2025, 3, 31),
			Amount: dec("250"), Description: "Membership Renewal - Business ($250)",
			Status: model.InvoicePending, Notes: "Thank you for your continued support.",
		},
		Member:           model.Member{BusinessName: "Café Olé", ContactPerson: "Ann Lee", Email: "ann@cafe.test"},
		PaymentTermsDays: 30,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteInvoicePDF(&buf, doc, header()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
