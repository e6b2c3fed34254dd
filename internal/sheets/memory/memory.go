// Package memory keeps exported transactions in process. It backs the memory
// data backend and worker tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

type Exporter struct {
	mu   sync.Mutex
	rows []core.Transaction
	refs map[string]string
	fail error
}

func New() *Exporter {
	return &Exporter{refs: make(map[string]string)}
}

// FailWith makes every following Export return err. Pass nil to recover.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = err
}

// Export records the transaction and returns a synthetic row reference.
func (e *Exporter) Export(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return "", e.fail
	}
	if ref, ok := e.refs[t.ID]; ok {
		return ref, nil
	}
	e.rows = append(e.rows, t)
	ref := fmt.Sprintf("mem:%d", len(e.rows))
	e.refs[t.ID] = ref
	return ref, nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.rows...)
}
