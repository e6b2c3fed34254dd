package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// SyncPublisher announces stored transactions to the sync worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
}

// TransactionService writes transactions to storage and then publishes one
// sync message per stored row. It is the bulk-write collaborator of the
// transfer workflow and the bulk-create endpoint.
type TransactionService struct {
	store     ports.TransactionBulkWriter
	publisher SyncPublisher
}

// NewTransactionService wires storage and an optional publisher. A nil
// publisher disables sync messages.
func NewTransactionService(store ports.TransactionBulkWriter, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// BulkCreateTransactions stores items in one call and then publishes their
// sync messages. Publish failures are logged and do not fail the call: the
// rows are already stored and the worker's pending sweep picks them up.
func (s *TransactionService) BulkCreateTransactions(ctx context.Context, userID string, items []core.Transaction) ([]core.Transaction, error) {
	created, err := s.store.BulkCreateTransactions(ctx, userID, items)
	if err != nil {
		return nil, fmt.Errorf("save transactions: %w", err)
	}

	for _, t := range created {
		// version 1 for new transactions
		if err := s.publishSyncMessage(ctx, t.ID, 1); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"id", t.ID, "error", err)
		}
	}

	return created, nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id string, version int64) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id, version)
}

// Close closes the store and the publisher when they hold resources.
func (s *TransactionService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}
	return nil
}
