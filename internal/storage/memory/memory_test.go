package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestStore_BulkCreateAndSummary(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, err := s.CreateAccount(ctx, "user_1", "Checking")
	require.NoError(t, err)
	b, err := s.CreateAccount(ctx, "user_1", "Savings")
	require.NoError(t, err)

	_, err = s.BulkCreateTransactions(ctx, "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 100000},
		{Date: core.NewDate(2024, 1, 5), AccountID: a.ID, Amount: -25000},
		{Date: core.NewDate(2024, 2, 1), AccountID: b.ID, Amount: 7000},
	})
	require.NoError(t, err)

	sum, err := s.Summary(ctx, core.SummaryQuery{UserID: "user_1", AccountID: a.ID, From: core.Epoch(), To: core.NewDate(2024, 12, 31)})
	require.NoError(t, err)
	assert.Equal(t, core.Summary{IncomeAmount: 100000, ExpensesAmount: -25000, RemainingAmount: 75000}, sum)

	sum, err = s.Summary(ctx, core.SummaryQuery{UserID: "user_1", From: core.NewDate(2024, 1, 2), To: core.NewDate(2024, 12, 31)})
	require.NoError(t, err)
	assert.Equal(t, int64(-18000), sum.RemainingAmount)
}

func TestStore_BulkCreateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.CreateAccount(ctx, "user_1", "Checking")
	other, _ := s.CreateAccount(ctx, "user_2", "Theirs")

	_, err := s.BulkCreateTransactions(ctx, "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: -1000},
		{Date: core.NewDate(2024, 1, 1), AccountID: other.ID, Amount: 1000},
	})
	assert.ErrorIs(t, err, core.ErrAccountNotOwned)
	assert.Empty(t, s.PendingIDs(0))
}

func TestStore_SyncStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.CreateAccount(ctx, "user_1", "Checking")
	created, err := s.BulkCreateTransactions(ctx, "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 5},
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 6},
	})
	require.NoError(t, err)
	assert.Len(t, s.PendingIDs(0), 2)
	assert.Len(t, s.PendingIDs(1), 1)

	require.NoError(t, s.MarkSynced(ctx, created[0].ID))
	require.NoError(t, s.MarkSyncError(ctx, created[1].ID))
	assert.Equal(t, "synced", s.SyncStatus(created[0].ID))
	assert.Equal(t, "error", s.SyncStatus(created[1].ID))
	assert.Empty(t, s.PendingIDs(0))

	assert.ErrorIs(t, s.MarkSynced(ctx, "missing"), core.ErrNotFound)
	_, err = s.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNewFromFilesSeedsAccounts(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir, "user_1")
	accs, _ := s.ListAccounts(context.Background(), "user_1")
	assert.Len(t, accs, 3)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed_accounts.txt"), []byte("# header\nWallet\nBank\nWallet\n\n"), 0o644))
	s = NewFromFiles(dir, "user_1")
	accs, _ = s.ListAccounts(context.Background(), "user_1")
	require.Len(t, accs, 2)
	assert.Equal(t, "Wallet", accs[0].Name)
	assert.Equal(t, "Bank", accs[1].Name)
}

func TestStore_CategoriesPerUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateCategory(ctx, "user_1", " ")
	assert.ErrorIs(t, err, core.ErrEmptyName)

	c, err := s.CreateCategory(ctx, "user_1", core.TransferCategoryName)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	mine, _ := s.ListCategories(ctx, "user_1")
	theirs, _ := s.ListCategories(ctx, "user_2")
	assert.Len(t, mine, 1)
	assert.Empty(t, theirs)
}
