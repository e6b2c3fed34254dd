package storage

import (
	"database/sql"
	"time"
)

// Sync states of a stored transaction.
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

type Account struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

type Category struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

type Transaction struct {
	ID         string
	AccountID  string
	CategoryID sql.NullString
	Date       string
	Payee      string
	Amount     int64
	Notes      string
	Version    int64
	SyncStatus string
	CreatedAt  time.Time
	SyncedAt   sql.NullTime
}
