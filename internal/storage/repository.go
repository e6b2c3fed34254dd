package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "schema_version", version)

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY on bulk inserts.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListAccounts implements ports.AccountReader
func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]core.Account, len(rows))
	for i, a := range rows {
		accounts[i] = core.Account{ID: a.ID, Name: a.Name, UserID: a.UserID}
	}
	return accounts, nil
}

// CreateAccount implements ports.AccountWriter
func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID, name string) (core.Account, error) {
	acc := core.Account{Name: strings.TrimSpace(name), UserID: userID}
	if err := acc.Validate(); err != nil {
		return core.Account{}, err
	}
	row, err := r.queries.CreateAccount(ctx, CreateAccountParams{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   acc.Name,
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "id", row.ID, "user_id", userID)
	return core.Account{ID: row.ID, Name: row.Name, UserID: row.UserID}, nil
}

// ListCategories implements ports.CategoryReader
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.queries.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]core.Category, len(rows))
	for i, c := range rows {
		categories[i] = core.Category{ID: c.ID, Name: c.Name, UserID: c.UserID}
	}
	return categories, nil
}

// CreateCategory implements ports.CategoryWriter
func (r *SQLiteRepository) CreateCategory(ctx context.Context, userID, name string) (core.Category, error) {
	cat := core.Category{Name: strings.TrimSpace(name), UserID: userID}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}
	row, err := r.queries.CreateCategory(ctx, CreateCategoryParams{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   cat.Name,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", row.ID, "user_id", userID, "name", row.Name)
	return core.Category{ID: row.ID, Name: row.Name, UserID: row.UserID}, nil
}

// BulkCreateTransactions implements ports.TransactionBulkWriter. All items
// are written in one database transaction: either every row is stored or
// none is.
func (r *SQLiteRepository) BulkCreateTransactions(ctx context.Context, userID string, items []core.Transaction) ([]core.Transaction, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	created := make([]core.Transaction, 0, len(items))
	owned := make(map[string]bool)

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if !owned[item.AccountID] {
			n, err := q.CountOwnedAccount(ctx, item.AccountID, userID)
			if err != nil {
				return nil, fmt.Errorf("item %d: check account: %w", i, err)
			}
			if n == 0 {
				return nil, fmt.Errorf("item %d: %w: %s", i, core.ErrAccountNotOwned, item.AccountID)
			}
			owned[item.AccountID] = true
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		err := q.CreateTransaction(ctx, CreateTransactionParams{
			ID:         item.ID,
			AccountID:  item.AccountID,
			CategoryID: sql.NullString{String: item.CategoryID, Valid: item.CategoryID != ""},
			Date:       item.Date.String(),
			Payee:      item.Payee,
			Amount:     item.Amount,
			Notes:      item.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("item %d: insert transaction: %w", i, err)
		}
		created = append(created, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(created), "user_id", userID)
	return created, nil
}

// Summary implements ports.SummaryReader
func (r *SQLiteRepository) Summary(ctx context.Context, q core.SummaryQuery) (core.Summary, error) {
	row, err := r.queries.SumAmounts(ctx, SumAmountsParams{
		UserID:    q.UserID,
		AccountID: q.AccountID,
		From:      q.From.String(),
		To:        q.To.String(),
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum amounts: %w", err)
	}
	return core.Summary{
		IncomeAmount:    row.Income,
		ExpensesAmount:  row.Expenses,
		RemainingAmount: row.Income + row.Expenses,
	}, nil
}

// RemainingAmount returns the signed sum of an account's amounts in [from, to].
func (r *SQLiteRepository) RemainingAmount(ctx context.Context, userID, accountID string, from, to core.Date) (int64, error) {
	s, err := r.Summary(ctx, core.SummaryQuery{UserID: userID, AccountID: accountID, From: from, To: to})
	if err != nil {
		return 0, err
	}
	return s.RemainingAmount, nil
}

// GetTransaction retrieves a single transaction by id
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, err)
	}
	return core.Transaction{
		ID:         row.ID,
		Date:       date,
		AccountID:  row.AccountID,
		CategoryID: row.CategoryID.String,
		Payee:      row.Payee,
		Amount:     row.Amount,
		Notes:      row.Notes,
	}, nil
}

// PendingSyncTransaction represents minimal data needed for sync queue messages
type PendingSyncTransaction struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncTransactions returns transactions not yet exported
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.queries.GetPendingSyncTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}

	pending := make([]PendingSyncTransaction, len(rows))
	for i, row := range rows {
		pending[i] = PendingSyncTransaction{
			ID:        row.ID,
			Version:   row.Version,
			CreatedAt: row.CreatedAt.Time,
		}
	}
	return pending, nil
}

// MarkSynced marks a transaction as successfully exported
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a transaction as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}
