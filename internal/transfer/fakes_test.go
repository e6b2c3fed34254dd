package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

type fakeCategories struct {
	mu          sync.Mutex
	categories  []core.Category
	createCalls int
	listErr     error
	createErr   error
	emptyID     bool
}

func (f *fakeCategories) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []core.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) CreateCategory(_ context.Context, userID, name string) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return core.Category{}, f.createErr
	}
	if f.emptyID {
		return core.Category{Name: name, UserID: userID}, nil
	}
	c := core.Category{ID: fmt.Sprintf("cat_%d", len(f.categories)+1), Name: name, UserID: userID}
	f.categories = append(f.categories, c)
	return c, nil
}

type fakeAccounts struct {
	accounts []core.Account
	err      error
}

func (f *fakeAccounts) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBalances struct {
	remaining map[string]int64
	calls     []core.SummaryQuery
	err       error
}

func (f *fakeBalances) Summary(_ context.Context, q core.SummaryQuery) (core.Summary, error) {
	f.calls = append(f.calls, q)
	if f.err != nil {
		return core.Summary{}, f.err
	}
	return core.Summary{RemainingAmount: f.remaining[q.AccountID]}, nil
}

type fakeWriter struct {
	calls [][]core.Transaction
	err   error
}

func (f *fakeWriter) BulkCreateTransactions(_ context.Context, _ string, items []core.Transaction) ([]core.Transaction, error) {
	f.calls = append(f.calls, items)
	if f.err != nil {
		return nil, f.err
	}
	return items, nil
}

var errBoom = errors.New("boom")
