package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/categories"
	"github.com/duesbook/duesbook/internal/id"
	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

// PaymentMethod marks transactions posted when an invoice is paid.
const PaymentMethod = "invoice_payment"

// Store is the persistence the invoice service needs.
type Store interface {
	GetMember(ctx context.Context, id int64) (model.Member, error)
	CategoryByName(ctx context.Context, name string) (model.Category, error)
	AddTransaction(ctx context.Context, t model.Transaction) (int64, error)

	GetInvoice(ctx context.Context, id int64) (model.Invoice, error)
	ListInvoices(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, error)
	InvoiceNumbers(ctx context.Context) ([]string, error)
	AddInvoice(ctx context.Context, inv model.Invoice) (int64, error)
	UpdateInvoiceStatus(ctx context.Context, id int64, from, to model.InvoiceStatus, paidDate time.Time, paymentMethod string) (int64, error)
	PromoteOverdue(ctx context.Context, today time.Time) (int64, error)
	DeleteInvoice(ctx context.Context, id int64) (int64, error)
}

// Service numbers invoices, moves them through their lifecycle and posts
// the income transaction when one is paid.
//
// Numbering reads the current maximum and writes max+1, so two concurrent
// creators could race for the same number. The unique index on the number
// turns that race into a store error rather than a duplicate. A single
// writer never sees it.
type Service struct {
	store     Store
	clock     func() time.Time
	termsDays int
}

// NewService creates an invoice Service. termsDays sets the default due
// date relative to the issue date.
func NewService(store Store, clock func() time.Time, termsDays int) *Service {
	return &Service{store: store, clock: clock, termsDays: termsDays}
}

func (s *Service) today() time.Time {
	return model.DateOf(s.clock())
}

// CreateParams holds parameters for a new invoice. Zero dates default to
// today and today plus the payment terms; an empty status means pending.
type CreateParams struct {
	MemberID    int64
	IssueDate   time.Time
	DueDate     time.Time
	Amount      decimal.Decimal
	Description string
	Status      model.InvoiceStatus
	Notes       string
}

// Create validates, numbers and stores a new invoice. An invoice may be
// created as paid only when it is free; no transaction is posted for it.
func (s *Service) Create(ctx context.Context, p CreateParams) (model.Invoice, error) {
	log := logger.FromContext(ctx)

	if p.MemberID == 0 {
		return model.Invoice{}, model.ValidationError{Field: "member", Message: "is required"}
	}
	if p.Amount.IsNegative() {
		return model.Invoice{}, model.ValidationError{Field: "amount", Message: "cannot be negative"}
	}
	status := p.Status
	if status == "" {
		status = model.InvoicePending
	}
	switch status {
	case model.InvoicePending:
	case model.InvoicePaid:
		if !p.Amount.IsZero() {
			return model.Invoice{}, model.ValidationError{Field: "status", Message: "only free invoices can be created as paid"}
		}
	default:
		return model.Invoice{}, model.ValidationError{Field: "status", Message: fmt.Sprintf("cannot create an invoice as %s", status)}
	}

	member, err := s.store.GetMember(ctx, p.MemberID)
	if err != nil {
		return model.Invoice{}, err
	}

	issue := p.IssueDate
	if issue.IsZero() {
		issue = s.today()
	}
	due := p.DueDate
	if due.IsZero() {
		due = issue.AddDate(0, 0, s.termsDays)
	}

	numbers, err := s.store.InvoiceNumbers(ctx)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("numbering invoice: %w", err)
	}

	inv := model.Invoice{
		Number:       id.FormatInvoiceNumber(id.NextInvoiceSeq(numbers)),
		MemberID:     member.ID,
		IssueDate:    issue,
		DueDate:      due,
		Amount:       p.Amount,
		Description:  p.Description,
		Status:       status,
		Notes:        p.Notes,
		BusinessName: member.BusinessName,
	}
	if status == model.InvoicePaid {
		inv.PaidDate = issue
	}

	inv.ID, err = s.store.AddInvoice(ctx, inv)
	if err != nil {
		log.Error().Err(err).Str("invoice", inv.Number).Int64("member_id", member.ID).Msg("creating invoice")
		return model.Invoice{}, fmt.Errorf("creating invoice: %w", err)
	}
	log.Info().Str("invoice", inv.Number).Int64("member_id", member.ID).Str("amount", inv.Amount.StringFixed(2)).Msg("invoice created")
	return inv, nil
}

// SetStatus moves an invoice to status to and returns the number of
// invoices changed. Setting the current status again is a no-op that
// returns 0. When the invoice becomes paid an income transaction is
// posted; failure to post it is logged and does not undo the status change.
func (s *Service) SetStatus(ctx context.Context, invoiceID int64, to model.InvoiceStatus) (int64, error) {
	log := logger.FromContext(ctx)
	if !to.Valid() {
		return 0, model.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", to)}
	}
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	if inv.Status == to {
		return 0, nil
	}
	if IsTerminal(inv.Status) && to != model.InvoiceCancelled {
		return 0, model.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("invoice %s is already %s", inv.Number, inv.Status),
			Err:     ErrInvalidTransition,
		}
	}
	if !CanTransition(inv.Status, to) {
		return 0, model.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot change invoice %s from %s to %s", inv.Number, inv.Status, to),
			Err:     ErrInvalidTransition,
		}
	}

	var paidDate time.Time
	var method string
	if to == model.InvoicePaid {
		paidDate = s.today()
		method = PaymentMethod
	}
	n, err := s.store.UpdateInvoiceStatus(ctx, invoiceID, inv.Status, to, paidDate, method)
	if err != nil {
		log.Error().Err(err).Str("invoice", inv.Number).Msg("updating invoice status")
		return 0, fmt.Errorf("updating invoice status: %w", err)
	}
	if n == 0 {
		// Another caller moved it first.
		return 0, nil
	}

	log.Info().Str("invoice", inv.Number).Str("from", string(inv.Status)).Str("to", string(to)).Msg("invoice status changed")
	if to == model.InvoicePaid {
		s.postPayment(ctx, inv, paidDate)
	}
	return n, nil
}

// postPayment records the income transaction for a paid invoice. It is
// best-effort: errors are logged, never returned.
func (s *Service) postPayment(ctx context.Context, inv model.Invoice, paidDate time.Time) {
	log := logger.FromContext(ctx).With().Str("invoice", inv.Number).Int64("member_id", inv.MemberID).Logger()

	if inv.Amount.IsZero() {
		log.Debug().Msg("free invoice paid; no transaction posted")
		return
	}

	var categoryID int64
	cat, err := s.store.CategoryByName(ctx, categories.DuesCategory)
	switch {
	case err == nil:
		categoryID = cat.ID
	case model.IsNotFound(err):
		log.Warn().Str("category", categories.DuesCategory).Msg("dues category missing; posting payment uncategorized")
	default:
		log.Error().Err(err).Msg("looking up dues category")
	}

	payee := inv.BusinessName
	if payee == "" {
		payee = "Member Payment"
	}

	txnID, err := s.store.AddTransaction(ctx, model.Transaction{
		Date:            paidDate,
		Amount:          inv.Amount,
		Description:     "Payment for Invoice " + inv.Number,
		PayeePayer:      payee,
		CategoryID:      categoryID,
		MemberID:        inv.MemberID,
		Type:            model.Income,
		PaymentMethod:   PaymentMethod,
		ReferenceNumber: inv.Number,
		Notes:           "Auto-generated from invoice " + inv.Number,
	})
	if err != nil {
		log.Error().Err(err).Msg("posting payment transaction for paid invoice")
		return
	}
	log.Info().Int64("transaction_id", txnID).Msg("payment transaction posted")
}

// PromoteOverdue marks every pending invoice whose due date has passed as
// overdue and returns how many changed. Running it again changes nothing.
func (s *Service) PromoteOverdue(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)
	n, err := s.store.PromoteOverdue(ctx, s.today())
	if err != nil {
		log.Error().Err(err).Msg("promoting overdue invoices")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("invoices marked overdue")
	}
	return n, nil
}

// List promotes overdue invoices, then returns invoices matching f. No
// returned invoice is pending past its due date.
func (s *Service) List(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, error) {
	if _, err := s.PromoteOverdue(ctx); err != nil {
		return nil, err
	}
	return s.store.ListInvoices(ctx, f)
}

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	return s.store.GetInvoice(ctx, invoiceID)
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, invoiceID int64) error {
	log := logger.FromContext(ctx)
	n, err := s.store.DeleteInvoice(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Int64("invoice_id", invoiceID).Msg("deleting invoice")
		return fmt.Errorf("deleting invoice: %w", err)
	}
	if n == 0 {
		return model.NotFoundError{Entity: "invoice", ID: invoiceID}
	}
	return nil
}

// Summary counts open invoices and the amount still owed.
type Summary struct {
	Pending     int
	Overdue     int
	Outstanding decimal.Decimal
}

// Summarize returns open-invoice totals after promoting overdue invoices.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	all, err := s.List(ctx, model.InvoiceFilter{})
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Outstanding: decimal.Zero}
	for _, inv := range all {
		switch inv.Status {
		case model.InvoicePending:
			sum.Pending++
		case model.InvoiceOverdue:
			sum.Overdue++
		default:
			continue
		}
		sum.Outstanding = sum.Outstanding.Add(inv.Amount)
	}
	return sum, nil
}
