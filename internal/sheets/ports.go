// Package sheets declares the spreadsheet export port used by the sync worker.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter appends a stored transaction to an external
	// spreadsheet. Exporting the same transaction id twice must not create a
	// second row.
	TransactionExporter interface {
		Export(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
