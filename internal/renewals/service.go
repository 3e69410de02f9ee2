package renewals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/invoices"
	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

// MemberLister loads members.
type MemberLister interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
}

// InvoiceCreator creates one invoice.
type InvoiceCreator interface {
	Create(ctx context.Context, p invoices.CreateParams) (model.Invoice, error)
}

// Service selects members due for renewal and bills them.
type Service struct {
	members  MemberLister
	invoices InvoiceCreator
	clock    func() time.Time
}

// NewService creates a renewals Service.
func NewService(members MemberLister, inv InvoiceCreator, clock func() time.Time) *Service {
	return &Service{members: members, invoices: inv, clock: clock}
}

// FindOverdueMembers returns active members past their renewal date with the dues each owes.
func (s *Service) FindOverdueMembers(ctx context.Context) ([]Candidate, error) {
	all, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return Overdue(all, s.clock()), nil
}

// Upcoming returns members renewing in the given month.
func (s *Service) Upcoming(ctx context.Context, year int, month time.Month) ([]Candidate, error) {
	all, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return UpcomingInMonth(all, year, month), nil
}

// Reminders returns active members renewing within the next days days.
func (s *Service) Reminders(ctx context.Context, days int) ([]model.Member, error) {
	all, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return DueWithin(all, s.clock(), days), nil
}

// GenerateInvoices creates one pending invoice per candidate, issued today
// and due on the member's renewal date. Each candidate is independent: a
// failure is logged and counted, and the batch continues.
func (s *Service) GenerateInvoices(ctx context.Context, candidates []Candidate) model.BatchResult {
	batchID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("batch_id", batchID).Logger()
	today := model.DateOf(s.clock())

	result := model.BatchResult{BatchID: batchID}
	for i, c := range candidates {
		amount := c.Amount
		if amount.IsZero() {
			amount = DuesAmount(c.Member.MembershipType)
		}
		inv, err := s.invoices.Create(ctx, renewalInvoice(c, amount, today))
		if err != nil {
			result.ErrorCount++
			log.Warn().Err(err).Int("item", i).Int64("member_id", c.Member.ID).Msg("renewal invoice failed")
			continue
		}
		result.SuccessCount++
		log.Debug().Str("invoice", inv.Number).Int64("member_id", c.Member.ID).Msg("renewal invoice created")
	}
	log.Info().Int("success", result.SuccessCount).Int("errors", result.ErrorCount).Msg("renewal invoicing finished")
	return result
}

func renewalInvoice(c Candidate, amount decimal.Decimal, today time.Time) invoices.CreateParams {
	m := c.Member
	p := invoices.CreateParams{
		MemberID:  m.ID,
		IssueDate: today,
		DueDate:   m.RenewalDate,
		Amount:    amount,
		Status:    model.InvoicePending,
	}
	if c.Overdue {
		p.Description = "Overdue Membership Renewal - " + m.MembershipType
		p.Notes = fmt.Sprintf("Overdue renewal invoice for %s - %d days overdue", m.BusinessName, c.DaysOverdue)
	} else {
		p.Description = "Membership Renewal - " + m.MembershipType
		p.Notes = "Auto-generated renewal invoice for " + m.BusinessName
	}
	return p
}
