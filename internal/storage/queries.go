package storage

import (
	"context"
	"database/sql"
)

const createAccount = `INSERT INTO accounts (id, user_id, name) VALUES (?, ?, ?)
RETURNING id, user_id, name, created_at`

type CreateAccountParams struct {
	ID     string
	UserID string
	Name   string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount, arg.ID, arg.UserID, arg.Name)
	var i Account
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt)
	return i, err
}

const listAccountsByUser = `SELECT id, user_id, name, created_at FROM accounts
WHERE user_id = ? ORDER BY created_at, name`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID string) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countOwnedAccount = `SELECT COUNT(*) FROM accounts WHERE id = ? AND user_id = ?`

func (q *Queries) CountOwnedAccount(ctx context.Context, id, userID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countOwnedAccount, id, userID).Scan(&n)
	return n, err
}

const createCategory = `INSERT INTO categories (id, user_id, name) VALUES (?, ?, ?)
RETURNING id, user_id, name, created_at`

type CreateCategoryParams struct {
	ID     string
	UserID string
	Name   string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.ID, arg.UserID, arg.Name)
	var i Category
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt)
	return i, err
}

const listCategoriesByUser = `SELECT id, user_id, name, created_at FROM categories
WHERE user_id = ? ORDER BY created_at, name`

func (q *Queries) ListCategoriesByUser(ctx context.Context, userID string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategoriesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createTransaction = `INSERT INTO transactions (id, account_id, category_id, date, payee, amount, notes)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateTransactionParams struct {
	ID         string
	AccountID  string
	CategoryID sql.NullString
	Date       string
	Payee      string
	Amount     int64
	Notes      string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.AccountID, arg.CategoryID, arg.Date, arg.Payee, arg.Amount, arg.Notes)
	return err
}

const transactionColumns = `id, account_id, category_id, date, payee, amount, notes, version, sync_status, created_at, synced_at`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(&i.ID, &i.AccountID, &i.CategoryID, &i.Date, &i.Payee, &i.Amount,
		&i.Notes, &i.Version, &i.SyncStatus, &i.CreatedAt, &i.SyncedAt)
	return i, err
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const sumAmounts = `SELECT
    COALESCE(SUM(CASE WHEN t.amount >= 0 THEN t.amount ELSE 0 END), 0) AS income,
    COALESCE(SUM(CASE WHEN t.amount < 0 THEN t.amount ELSE 0 END), 0) AS expenses
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE a.user_id = ?
  AND (? = '' OR t.account_id = ?)
  AND t.date >= ? AND t.date <= ?`

type SumAmountsParams struct {
	UserID    string
	AccountID string
	From      string
	To        string
}

type SumAmountsRow struct {
	Income   int64
	Expenses int64
}

func (q *Queries) SumAmounts(ctx context.Context, arg SumAmountsParams) (SumAmountsRow, error) {
	var i SumAmountsRow
	err := q.db.QueryRowContext(ctx, sumAmounts,
		arg.UserID, arg.AccountID, arg.AccountID, arg.From, arg.To).Scan(&i.Income, &i.Expenses)
	return i, err
}

const getPendingSyncTransactions = `SELECT id, version, created_at FROM transactions
WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?`

type GetPendingSyncTransactionsRow struct {
	ID        string
	Version   int64
	CreatedAt sql.NullTime
}

func (q *Queries) GetPendingSyncTransactions(ctx context.Context, limit int64) ([]GetPendingSyncTransactionsRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPendingSyncTransactionsRow
	for rows.Next() {
		var i GetPendingSyncTransactionsRow
		if err := rows.Scan(&i.ID, &i.Version, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markTransactionSynced = `UPDATE transactions
SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id)
	return err
}

const markTransactionSyncError = `UPDATE transactions SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, id)
	return err
}
