package adapters

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/ports"
	"fintrack/internal/services"
)

// Storage is what a backend must provide before the adapter routes its
// writes through the transaction service.
type Storage interface {
	ports.AccountReader
	ports.AccountWriter
	ports.CategoryStore
	ports.SummaryReader
	ports.TransactionBulkWriter
}

type pinger interface {
	Ping(ctx context.Context) error
}

// StoreAdapter serves reads straight from storage and sends bulk writes
// through the TransactionService so every stored row gets a sync message.
// This lets the HTTP handlers and the transfer orchestrator work unchanged
// against either backend.
type StoreAdapter struct {
	storage Storage
	service *services.TransactionService
}

func NewStoreAdapter(storage Storage, service *services.TransactionService) *StoreAdapter {
	return &StoreAdapter{
		storage: storage,
		service: service,
	}
}

// ListAccounts implements ports.AccountReader
func (a *StoreAdapter) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	return a.storage.ListAccounts(ctx, userID)
}

// CreateAccount implements ports.AccountWriter
func (a *StoreAdapter) CreateAccount(ctx context.Context, userID, name string) (core.Account, error) {
	return a.storage.CreateAccount(ctx, userID, name)
}

// ListCategories implements ports.CategoryReader
func (a *StoreAdapter) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	return a.storage.ListCategories(ctx, userID)
}

// CreateCategory implements ports.CategoryWriter
func (a *StoreAdapter) CreateCategory(ctx context.Context, userID, name string) (core.Category, error) {
	return a.storage.CreateCategory(ctx, userID, name)
}

// Summary implements ports.SummaryReader
func (a *StoreAdapter) Summary(ctx context.Context, q core.SummaryQuery) (core.Summary, error) {
	return a.storage.Summary(ctx, q)
}

// BulkCreateTransactions implements ports.TransactionBulkWriter
func (a *StoreAdapter) BulkCreateTransactions(ctx context.Context, userID string, items []core.Transaction) ([]core.Transaction, error) {
	return a.service.BulkCreateTransactions(ctx, userID, items)
}

// Ping reports storage health. Backends without a connection are always ready.
func (a *StoreAdapter) Ping(ctx context.Context) error {
	if p, ok := a.storage.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the service and the storage behind it.
func (a *StoreAdapter) Close() error {
	return a.service.Close()
}
