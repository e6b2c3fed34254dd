// Package memory is an in-process store used by tests and the memory backend.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type storedTransaction struct {
	core.Transaction
	userID     string
	version    int64
	syncStatus string
}

type Store struct {
	mu           sync.Mutex
	accounts     []core.Account
	categories   []core.Category
	transactions []storedTransaction
	newID        func() string
}

func New() *Store {
	return &Store{newID: uuid.NewString}
}

// NewFromFiles seeds accounts for userID from base/seed_accounts.txt, one
// account name per line. Missing files fall back to a small default set.
func NewFromFiles(base, userID string) *Store {
	names := readLines(filepath.Join(base, "seed_accounts.txt"))
	if len(names) == 0 {
		names = []string{"Checking", "Savings", "Cash"}
	}
	s := New()
	for _, n := range names {
		_, _ = s.CreateAccount(context.Background(), userID, n)
	}
	return s
}

// ListAccounts returns the user's accounts in creation order.
func (s *Store) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, userID, name string) (core.Account, error) {
	a := core.Account{Name: strings.TrimSpace(name), UserID: userID}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID()
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, userID, name string) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name), UserID: userID}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID()
	s.categories = append(s.categories, c)
	return c, nil
}

// BulkCreateTransactions validates every item before storing any of them.
func (s *Store) BulkCreateTransactions(_ context.Context, userID string, items []core.Transaction) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]core.Transaction, 0, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if !s.ownsAccount(userID, item.AccountID) {
			return nil, fmt.Errorf("item %d: %w: %s", i, core.ErrAccountNotOwned, item.AccountID)
		}
		if item.ID == "" {
			item.ID = s.newID()
		}
		created = append(created, item)
	}
	for _, t := range created {
		s.transactions = append(s.transactions, storedTransaction{
			Transaction: t,
			userID:      userID,
			version:     1,
			syncStatus:  "pending",
		})
	}
	return created, nil
}

// Summary sums the matching transactions. An empty AccountID covers every
// account of the user.
func (s *Store) Summary(_ context.Context, q core.SummaryQuery) (core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum core.Summary
	for _, t := range s.transactions {
		if t.userID != q.UserID {
			continue
		}
		if q.AccountID != "" && t.AccountID != q.AccountID {
			continue
		}
		if t.Date.Before(q.From.Time) || t.Date.After(q.To.Time) {
			continue
		}
		sum.Add(t.Amount)
	}
	return sum, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t.Transaction, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

// SyncStatus returns the sync state of a stored transaction.
func (s *Store) SyncStatus(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t.syncStatus
		}
	}
	return ""
}

func (s *Store) MarkSynced(_ context.Context, id string) error {
	return s.setSyncStatus(id, "synced")
}

func (s *Store) MarkSyncError(_ context.Context, id string) error {
	return s.setSyncStatus(id, "error")
}

func (s *Store) setSyncStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].syncStatus = status
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

// PendingIDs returns ids of transactions not yet exported, oldest first.
func (s *Store) PendingIDs(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, t := range s.transactions {
		if t.syncStatus != "pending" {
			continue
		}
		ids = append(ids, t.ID)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids
}

func (s *Store) ownsAccount(userID, accountID string) bool {
	for _, a := range s.accounts {
		if a.ID == accountID && a.UserID == userID {
			return true
		}
	}
	return false
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	seen := map[string]struct{}{}
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
