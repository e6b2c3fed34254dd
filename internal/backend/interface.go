// Package backend builds the storage the server runs on, memory or SQLite,
// behind the transaction service that publishes sync messages.
package backend

import (
	"context"

	"fintrack/internal/ports"
)

// Backend is everything the HTTP layer and the transfer workflow need from
// storage, plus a readiness probe.
type Backend interface {
	ports.AccountReader
	ports.AccountWriter
	ports.CategoryStore
	ports.SummaryReader
	ports.TransactionBulkWriter
	Ping(ctx context.Context) error
}

// CleanupFunc releases the backend's connections.
type CleanupFunc func() error

type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	// Sync messages are published when AMQPURL is set, for either type.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// The memory backend seeds SeedUserID's accounts from DataDirectory.
	DataDirectory string
	SeedUserID    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

var backendTypes = []BackendType{SQLiteBackend, MemoryBackend}

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	for _, t := range backendTypes {
		if bt == t {
			return true
		}
	}
	return false
}
