package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duesbook/duesbook/internal/invoices"
	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/store"
)

var today = model.Date(2025, time.June, 1)

func clock() time.Time { return today }

type countingLoader struct {
	*store.Store
	loads int
	fail  error
}

func (c *countingLoader) ListMembers(ctx context.Context) ([]model.Member, error) {
	c.loads++
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Store.ListMembers(ctx)
}

func setup(t *testing.T) (context.Context, *store.Store, *countingLoader, *Repository) {
	t.Helper()
	ctx := logger.WithContext(context.Background(), zerolog.Nop())
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	loader := &countingLoader{Store: s}
	inv := invoices.NewService(s, clock, 30)
	return ctx, s, loader, New(loader, inv, clock)
}

func TestRepository_ReadThrough(t *testing.T) {
	ctx, s, loader, repo := setup(t)
	_, err := s.AddMember(ctx, model.Member{BusinessName: "Acme", MembershipType: "Business ($250)", Status: model.MemberActive})
	require.NoError(t, err)

	members, err := repo.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = repo.Invoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads, "second read is served from the snapshot")

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, today, snap.LoadedAt)
}

func TestRepository_CopiesAreIndependent(t *testing.T) {
	ctx, s, _, repo := setup(t)
	_, err := s.AddMember(ctx, model.Member{BusinessName: "Acme", MembershipType: "Business ($250)", Status: model.MemberActive})
	require.NoError(t, err)

	members, err := repo.Members(ctx)
	require.NoError(t, err)
	members[0].BusinessName = "Changed"

	again, err := repo.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", again[0].BusinessName)
}

func TestRepository_StaleUntilInvalidated(t *testing.T) {
	ctx, s, loader, repo := setup(t)

	members, err := repo.Members(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = s.AddMember(ctx, model.Member{BusinessName: "Acme", MembershipType: "Business ($250)", Status: model.MemberActive})
	require.NoError(t, err)

	members, err = repo.Members(ctx)
	require.NoError(t, err)
	assert.Empty(t, members, "direct store writes bypass the cache")

	repo.Invalidate()
	members, err = repo.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Equal(t, 2, loader.loads)
}

func TestRepository_MutateReloads(t *testing.T) {
	ctx, s, loader, repo := setup(t)
	_, err := repo.Snapshot(ctx)
	require.NoError(t, err)

	err = repo.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.AddTransaction(ctx, model.Transaction{
			Date: today, Amount: decimal.NewFromInt(5), Type: model.Income,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads)

	txns, err := repo.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestRepository_MutateFailureStillReloads(t *testing.T) {
	ctx, _, loader, repo := setup(t)
	boom := errors.New("boom")

	err := repo.Mutate(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, loader.loads)
}

func TestRepository_LoadFailureLeavesCacheEmpty(t *testing.T) {
	ctx, _, loader, repo := setup(t)
	loader.fail = errors.New("disk gone")

	_, err := repo.Members(ctx)
	require.Error(t, err)

	loader.fail = nil
	_, err = repo.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads)
}
