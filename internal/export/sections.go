package export

import (
	"io"
	"strconv"

	"github.com/duesbook/duesbook/internal/model"
)

func itoa(n int) string { return strconv.Itoa(n) }

func id(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

// WriteMembersCSV writes the member roster.
func WriteMembersCSV(w io.Writer, members []model.Member) error {
	s := newSheet(w)
	s.row("ID", "Business Name", "Membership Type", "Contact Person", "Email", "Phone",
		"Address", "Join Date", "Renewal Date", "Status", "Notes")
	for _, m := range members {
		s.row(id(m.ID), m.BusinessName, m.MembershipType, m.ContactPerson, m.Email, m.Phone,
			m.Address, model.FormatDate(m.JoinDate), model.FormatDate(m.RenewalDate), string(m.Status), m.Notes)
	}
	return s.flush()
}

// WriteInvoicesCSV writes invoices with their billed member.
func WriteInvoicesCSV(w io.Writer, invoices []model.Invoice) error {
	s := newSheet(w)
	s.row("Invoice Number", "Member", "Issue Date", "Due Date", "Amount", "Description",
		"Status", "Paid Date", "Payment Method", "Notes")
	for _, inv := range invoices {
		s.row(inv.Number, inv.BusinessName, model.FormatDate(inv.IssueDate), model.FormatDate(inv.DueDate),
			amount(inv.Amount), inv.Description, string(inv.Status), model.FormatDate(inv.PaidDate),
			inv.PaymentMethod, inv.Notes)
	}
	return s.flush()
}

// WriteTransactionsCSV writes transactions as stored, one row per parent.
func WriteTransactionsCSV(w io.Writer, txns []model.Transaction) error {
	s := newSheet(w)
	s.row("ID", "Date", "Type", "Amount", "Description", "Payee/Payer", "Category", "Member",
		"Payment Method", "Reference", "Notes", "Splits")
	for _, t := range txns {
		category := t.CategoryName
		if category == "" {
			category = model.Uncategorized
		}
		s.row(id(t.ID), model.FormatDate(t.Date), string(t.Type), amount(t.Amount), t.Description,
			t.PayeePayer, category, t.MemberName, t.PaymentMethod, t.ReferenceNumber, t.Notes,
			itoa(t.SplitCount))
	}
	return s.flush()
}
