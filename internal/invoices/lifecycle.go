package invoices

import (
	"errors"

	"github.com/duesbook/duesbook/internal/model"
)

// ErrInvalidTransition means the requested status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the statuses reachable from each status. Cancelled is
// terminal; paid may only be cancelled.
var transitions = map[model.InvoiceStatus][]model.InvoiceStatus{
	model.InvoicePending: {model.InvoicePaid, model.InvoiceOverdue, model.InvoiceCancelled},
	model.InvoiceOverdue: {model.InvoicePaid, model.InvoiceCancelled},
	model.InvoicePaid:    {model.InvoiceCancelled},
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to model.InvoiceStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no automatic transition leaves status s.
func IsTerminal(s model.InvoiceStatus) bool {
	return s == model.InvoicePaid || s == model.InvoiceCancelled
}
