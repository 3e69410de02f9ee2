package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

// Store is the category persistence the service needs.
type Store interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	AddCategory(ctx context.Context, c model.Category) (int64, error)
	UpdateCategory(ctx context.Context, id int64, c model.Category) (int64, error)
	DeactivateCategory(ctx context.Context, id int64) (int64, error)
	EnsureCategories(ctx context.Context, cats []model.Category) (int, error)
}

// Service validates and persists categories.
type Service struct {
	store Store
}

// NewService creates a category Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns categories, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	return s.store.ListCategories(ctx, activeOnly)
}

// Index loads every category, active or not, into an Index.
func (s *Service) Index(ctx context.Context) (*Index, error) {
	cats, err := s.store.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	return NewIndex(cats), nil
}

// Add validates and inserts a category.
func (s *Service) Add(ctx context.Context, c model.Category) (int64, error) {
	log := logger.FromContext(ctx)
	c.Name = strings.TrimSpace(c.Name)
	if err := validate(c); err != nil {
		return 0, err
	}
	id, err := s.store.AddCategory(ctx, c)
	if err != nil {
		log.Error().Err(err).Str("category", c.Name).Msg("adding category")
		return 0, fmt.Errorf("adding category: %w", err)
	}
	return id, nil
}

// Update validates and overwrites a category.
func (s *Service) Update(ctx context.Context, id int64, c model.Category) error {
	log := logger.FromContext(ctx)
	c.Name = strings.TrimSpace(c.Name)
	if err := validate(c); err != nil {
		return err
	}
	n, err := s.store.UpdateCategory(ctx, id, c)
	if err != nil {
		log.Error().Err(err).Int64("category_id", id).Msg("updating category")
		return fmt.Errorf("updating category: %w", err)
	}
	if n == 0 {
		return model.NotFoundError{Entity: "category", ID: id}
	}
	return nil
}

// Deactivate soft-deletes a category.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	n, err := s.store.DeactivateCategory(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("category_id", id).Msg("deactivating category")
		return fmt.Errorf("deactivating category: %w", err)
	}
	if n == 0 {
		return model.NotFoundError{Entity: "category", ID: id}
	}
	return nil
}

// Seed inserts any of cats not already present by name and returns the count added.
func (s *Service) Seed(ctx context.Context, cats []model.Category) (int, error) {
	for _, c := range cats {
		if err := validate(c); err != nil {
			return 0, err
		}
	}
	return s.store.EnsureCategories(ctx, cats)
}

func validate(c model.Category) error {
	if c.Name == "" {
		return model.ValidationError{Field: "name", Message: "is required"}
	}
	if !c.Type.Valid() {
		return model.ValidationError{Field: "type", Message: "must be income or expense"}
	}
	return nil
}
