// Package ports declares the collaborator interfaces the transfer workflow
// and the HTTP layer consume. Storage backends implement them.
package ports

import (
	"context"

	"fintrack/internal/core"
)

type (
	AccountReader interface {
		ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	}

	AccountWriter interface {
		CreateAccount(ctx context.Context, userID, name string) (core.Account, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	}

	CategoryWriter interface {
		// CreateCategory stores a new category and returns it with its id.
		CreateCategory(ctx context.Context, userID, name string) (core.Category, error)
	}

	// CategoryStore is what the transfer category resolver needs.
	CategoryStore interface {
		CategoryReader
		CategoryWriter
	}

	// TransactionBulkWriter inserts several transactions in one call. Every
	// account referenced must belong to userID.
	TransactionBulkWriter interface {
		BulkCreateTransactions(ctx context.Context, userID string, items []core.Transaction) ([]core.Transaction, error)
	}

	// SummaryReader returns income, expenses and remaining amount for a query.
	SummaryReader interface {
		Summary(ctx context.Context, q core.SummaryQuery) (core.Summary, error)
	}
)
