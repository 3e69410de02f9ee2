package transactions

import (
	"context"
	"fmt"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/splits"
)

// Store is the persistence the transaction service needs.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (model.Transaction, error)
	ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	ListSplits(ctx context.Context, transactionID int64) ([]model.Split, error)
	SaveTransaction(ctx context.Context, t model.Transaction, splits []model.Split) (int64, error)
	DeleteTransaction(ctx context.Context, id int64) (int64, error)
}

// Service validates and saves transactions and their splits.
type Service struct {
	store Store
}

// NewService creates a transaction Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SaveParams describes a transaction to insert (Transaction.ID 0) or update.
// AllowZeroAmount is set by CSV import, where a 0.00 row is still a
// well-formed income line.
type SaveParams struct {
	Transaction     model.Transaction
	SplitMode       bool
	Splits          []model.Split
	AllowZeroAmount bool
}

// Save validates the transaction and, in split mode, reconciles its splits,
// then writes the transaction and its split set atomically. Nothing is
// written when validation fails. Without split mode any prior splits are
// removed. Returns the transaction id.
func (s *Service) Save(ctx context.Context, p SaveParams) (int64, error) {
	log := logger.FromContext(ctx)

	if err := validate(p.Transaction, p.AllowZeroAmount); err != nil {
		return 0, err
	}

	var kept []model.Split
	if p.SplitMode {
		var err error
		kept, err = splits.Reconcile(p.Transaction.Amount, p.Splits)
		if err != nil {
			return 0, err
		}
	}

	id, err := s.store.SaveTransaction(ctx, p.Transaction, kept)
	if err != nil {
		if !model.IsNotFound(err) {
			log.Error().Err(err).Int64("transaction_id", p.Transaction.ID).Msg("saving transaction")
		}
		return 0, fmt.Errorf("saving transaction: %w", err)
	}
	log.Debug().Int64("transaction_id", id).Int("splits", len(kept)).Msg("transaction saved")
	return id, nil
}

// Get returns a transaction with its splits.
func (s *Service) Get(ctx context.Context, id int64) (model.Transaction, []model.Split, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	sp, err := s.store.ListSplits(ctx, id)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	return t, sp, nil
}

// List returns transactions matching f.
func (s *Service) List(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// Delete removes a transaction and its splits.
func (s *Service) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	n, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("transaction_id", id).Msg("deleting transaction")
		return fmt.Errorf("deleting transaction: %w", err)
	}
	if n == 0 {
		return model.NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}
