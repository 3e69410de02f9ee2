package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// Invoice bills a member for dues or other charges.
type Invoice struct {
	ID            int64
	Number        string // "INV-0001"
	MemberID      int64
	IssueDate     time.Time
	DueDate       time.Time
	Amount        decimal.Decimal
	Description   string
	Status        InvoiceStatus
	PaidDate      time.Time // zero until paid
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time

	// Joined from the member.
	BusinessName  string
	ContactPerson string
	Email         string
}

// InvoiceFilter narrows an invoice listing.
type InvoiceFilter struct {
	Status   InvoiceStatus
	MemberID int64
}
