package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

type recordingPublisher struct {
	ids []string
	err error
}

func (p *recordingPublisher) PublishTransactionSync(_ context.Context, id string, _ int64) error {
	p.ids = append(p.ids, id)
	return p.err
}

func newAdapter(t *testing.T, pub services.SyncPublisher) (*StoreAdapter, *memory.Store, core.Account, core.Account) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	a, err := store.CreateAccount(ctx, "u1", "Checking")
	require.NoError(t, err)
	b, err := store.CreateAccount(ctx, "u1", "Savings")
	require.NoError(t, err)
	return NewStoreAdapter(store, services.NewTransactionService(store, pub)), store, a, b
}

func TestStoreAdapter_BulkCreatePublishesThroughService(t *testing.T) {
	pub := &recordingPublisher{}
	adapter, _, a, b := newAdapter(t, pub)

	created, err := adapter.BulkCreateTransactions(context.Background(), "u1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: -1000},
		{Date: core.NewDate(2024, 1, 1), AccountID: b.ID, Amount: 1000},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, []string{created[0].ID, created[1].ID}, pub.ids)
}

func TestStoreAdapter_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	adapter, _, a, _ := newAdapter(t, pub)

	created, err := adapter.BulkCreateTransactions(context.Background(), "u1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 5000},
	})
	require.NoError(t, err)
	assert.Len(t, created, 1)

	sum, err := adapter.Summary(context.Background(), core.SummaryQuery{
		UserID: "u1", AccountID: a.ID, From: core.Epoch(), To: core.NewDate(2024, 12, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum.RemainingAmount)
}

func TestStoreAdapter_ReadsDelegateToStorage(t *testing.T) {
	adapter, _, _, _ := newAdapter(t, nil)
	ctx := context.Background()

	accounts, err := adapter.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	cat, err := adapter.CreateCategory(ctx, "u1", "Groceries")
	require.NoError(t, err)
	cats, err := adapter.ListCategories(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []core.Category{cat}, cats)

	assert.NoError(t, adapter.Ping(ctx))
	assert.NoError(t, adapter.Close())
}
