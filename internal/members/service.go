package members

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

var (
	ErrDuplicateName = errors.New("business name already exists")
	ErrPastRenewal   = errors.New("renewal date is in the past")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// Store is the member persistence the service needs.
type Store interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
	AddMember(ctx context.Context, m model.Member) (int64, error)
	UpdateMember(ctx context.Context, id int64, m model.Member) (int64, error)
	DeleteMember(ctx context.Context, id int64) (int64, error)
}

// Service validates and persists members.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService creates a member Service. clock supplies "today".
func NewService(store Store, clock func() time.Time) *Service {
	return &Service{store: store, clock: clock}
}

// List returns all members.
func (s *Service) List(ctx context.Context) ([]model.Member, error) {
	return s.store.ListMembers(ctx)
}

// Get returns one member.
func (s *Service) Get(ctx context.Context, id int64) (model.Member, error) {
	return s.store.GetMember(ctx, id)
}

// Add validates and inserts a member entered by hand.
func (s *Service) Add(ctx context.Context, m model.Member) (int64, error) {
	m = normalize(m)
	if err := s.validate(ctx, m, 0, true); err != nil {
		return 0, err
	}
	return s.insert(ctx, m)
}

// Import validates and inserts a member read from a file. Historical
// renewal dates are accepted.
func (s *Service) Import(ctx context.Context, m model.Member) (int64, error) {
	m = normalize(m)
	if err := s.validate(ctx, m, 0, false); err != nil {
		return 0, err
	}
	return s.insert(ctx, m)
}

// Update validates and overwrites a member. The past renewal check only
// applies when the renewal date is being changed.
func (s *Service) Update(ctx context.Context, id int64, m model.Member) (int64, error) {
	log := logger.FromContext(ctx)
	current, err := s.store.GetMember(ctx, id)
	if err != nil {
		return 0, err
	}
	m = normalize(m)
	renewalChanged := !m.RenewalDate.Equal(current.RenewalDate)
	if err := s.validate(ctx, m, id, renewalChanged); err != nil {
		return 0, err
	}
	n, err := s.store.UpdateMember(ctx, id, m)
	if err != nil {
		log.Error().Err(err).Int64("member_id", id).Msg("updating member")
		return 0, fmt.Errorf("updating member: %w", err)
	}
	return n, nil
}

// Delete removes a member along with its transactions and invoices. The
// caller is responsible for confirming with the user first.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	log := logger.FromContext(ctx)
	n, err := s.store.DeleteMember(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("member_id", id).Msg("deleting member")
		return 0, fmt.Errorf("deleting member: %w", err)
	}
	if n == 0 {
		return 0, model.NotFoundError{Entity: "member", ID: id}
	}
	log.Info().Int64("member_id", id).Msg("member deleted")
	return n, nil
}

func (s *Service) insert(ctx context.Context, m model.Member) (int64, error) {
	log := logger.FromContext(ctx)
	id, err := s.store.AddMember(ctx, m)
	if err != nil {
		log.Error().Err(err).Str("business_name", m.BusinessName).Msg("adding member")
		return 0, fmt.Errorf("adding member: %w", err)
	}
	return id, nil
}

func (s *Service) validate(ctx context.Context, m model.Member, selfID int64, checkRenewal bool) error {
	if m.BusinessName == "" {
		return model.ValidationError{Field: "business name", Message: "is required"}
	}
	if m.MembershipType == "" {
		return model.ValidationError{Field: "membership type", Message: "is required"}
	}
	if m.Email != "" {
		if _, err := mail.ParseAddress(m.Email); err != nil {
			return model.ValidationError{Field: "email", Message: fmt.Sprintf("%q is not a valid address", m.Email), Err: ErrInvalidEmail}
		}
	}
	if checkRenewal && m.HasRenewalDate() && m.RenewalDate.Before(model.DateOf(s.clock())) {
		return model.ValidationError{Field: "renewal date", Message: "cannot be in the past", Err: ErrPastRenewal}
	}

	existing, err := s.store.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("checking business name: %w", err)
	}
	for _, other := range existing {
		if other.ID != selfID && strings.EqualFold(strings.TrimSpace(other.BusinessName), m.BusinessName) {
			return model.ValidationError{
				Field:   "business name",
				Message: fmt.Sprintf("%q is already a member", other.BusinessName),
				Err:     ErrDuplicateName,
			}
		}
	}
	return nil
}

func normalize(m model.Member) model.Member {
	m.BusinessName = strings.TrimSpace(m.BusinessName)
	m.MembershipType = strings.TrimSpace(m.MembershipType)
	m.Email = strings.TrimSpace(m.Email)
	m.Status = model.MemberStatus(strings.ToLower(strings.TrimSpace(string(m.Status))))
	if m.Status == "" {
		m.Status = model.MemberActive
	}
	return m
}
