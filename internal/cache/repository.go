// Package cache holds an in-memory snapshot of the ledger for the
// presentation layer. The snapshot is loaded whole, never patched: every
// mutation goes through Mutate, which drops it and reloads from the store.
package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

// Loader reads the collections the snapshot holds.
type Loader interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
}

// InvoiceLister lists invoices. The invoice service promotes overdue
// invoices before listing, so the cache goes through it.
type InvoiceLister interface {
	List(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, error)
}

// Snapshot is one consistent load of every collection.
type Snapshot struct {
	Members      []model.Member
	Categories   []model.Category
	Transactions []model.Transaction
	Invoices     []model.Invoice
	LoadedAt     time.Time
}

func (s *Snapshot) clone() Snapshot {
	return Snapshot{
		Members:      slices.Clone(s.Members),
		Categories:   slices.Clone(s.Categories),
		Transactions: slices.Clone(s.Transactions),
		Invoices:     slices.Clone(s.Invoices),
		LoadedAt:     s.LoadedAt,
	}
}

// Repository is a read-through, write-invalidate cache over the ledger.
type Repository struct {
	mu       sync.Mutex
	loader   Loader
	invoices InvoiceLister
	clock    func() time.Time
	snap     *Snapshot
}

// New creates an empty Repository. Nothing is loaded until first read.
func New(loader Loader, invoices InvoiceLister, clock func() time.Time) *Repository {
	return &Repository{loader: loader, invoices: invoices, clock: clock}
}

// Snapshot returns a copy of the cached collections, loading them first
// if the cache is empty.
func (r *Repository) Snapshot(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snap == nil {
		if err := r.load(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	return r.snap.clone(), nil
}

// Members returns the cached members.
func (r *Repository) Members(ctx context.Context) ([]model.Member, error) {
	s, err := r.Snapshot(ctx)
	return s.Members, err
}

// Categories returns the cached categories, active and inactive.
func (r *Repository) Categories(ctx context.Context) ([]model.Category, error) {
	s, err := r.Snapshot(ctx)
	return s.Categories, err
}

// Transactions returns every cached transaction, newest first.
func (r *Repository) Transactions(ctx context.Context) ([]model.Transaction, error) {
	s, err := r.Snapshot(ctx)
	return s.Transactions, err
}

// Invoices returns the cached invoices.
func (r *Repository) Invoices(ctx context.Context) ([]model.Invoice, error) {
	s, err := r.Snapshot(ctx)
	return s.Invoices, err
}

// Invalidate drops the snapshot. The next read reloads.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.snap = nil
	r.mu.Unlock()
}

// Refresh reloads the snapshot now.
func (r *Repository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = nil
	return r.load(ctx)
}

// Mutate runs fn against the store and then reloads the snapshot, whether
// or not fn succeeded. fn's error takes precedence over a reload error.
func (r *Repository) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	log := logger.FromContext(ctx)
	err := fn(ctx)
	if rerr := r.Refresh(ctx); rerr != nil {
		if err != nil {
			log.Error().Err(rerr).Msg("reloading cache after failed mutation")
			return err
		}
		return rerr
	}
	return err
}

// load must be called with mu held. On failure the cache stays empty.
func (r *Repository) load(ctx context.Context) error {
	log := logger.FromContext(ctx)
	members, err := r.loader.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("loading members: %w", err)
	}
	cats, err := r.loader.ListCategories(ctx, false)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	txns, err := r.loader.ListTransactions(ctx, model.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	invs, err := r.invoices.List(ctx, model.InvoiceFilter{})
	if err != nil {
		return fmt.Errorf("loading invoices: %w", err)
	}

	r.snap = &Snapshot{
		Members:      members,
		Categories:   cats,
		Transactions: txns,
		Invoices:     invs,
		LoadedAt:     r.clock(),
	}
	log.Debug().
		Int("members", len(members)).
		Int("transactions", len(txns)).
		Int("invoices", len(invs)).
		Msg("cache loaded")
	return nil
}
