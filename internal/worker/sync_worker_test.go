package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// memSyncStore adapts the in-memory store to SyncStore.
type memSyncStore struct {
	*memory.Store
}

func (m memSyncStore) GetPendingSyncTransactions(_ context.Context, limit int) ([]storage.PendingSyncTransaction, error) {
	var out []storage.PendingSyncTransaction
	for _, id := range m.PendingIDs(limit) {
		out = append(out, storage.PendingSyncTransaction{ID: id, Version: 1})
	}
	return out, nil
}

func setup(t *testing.T) (memSyncStore, *sheetsmem.Exporter, []core.Transaction) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	a, _ := store.CreateAccount(ctx, "user_1", "Checking")
	b, _ := store.CreateAccount(ctx, "user_1", "Savings")
	created, err := store.BulkCreateTransactions(ctx, "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: -40000},
		{Date: core.NewDate(2024, 1, 1), AccountID: b.ID, Amount: 40000},
	})
	if err != nil {
		t.Fatal(err)
	}
	return memSyncStore{store}, sheetsmem.New(), created
}

func TestHandleSyncMessage(t *testing.T) {
	store, exporter, created := setup(t)
	w := NewSyncWorker(store, exporter, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(created[0].ID, 1))
	if err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if got := store.SyncStatus(created[0].ID); got != "synced" {
		t.Errorf("status = %q, want synced", got)
	}
	if len(exporter.Rows()) != 1 {
		t.Errorf("expected one exported row")
	}
}

func TestHandleSyncMessage_UnknownIDIsDropped(t *testing.T) {
	store, exporter, _ := setup(t)
	w := NewSyncWorker(store, exporter, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("missing", 1)); err != nil {
		t.Fatalf("expected nil for unknown id, got %v", err)
	}
}

func TestHandleSyncMessage_ExportFailureMarksError(t *testing.T) {
	store, exporter, created := setup(t)
	exporter.FailWith(errors.New("quota"))
	w := NewSyncWorker(store, exporter, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(created[1].ID, 1)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if got := store.SyncStatus(created[1].ID); got != "error" {
		t.Errorf("status = %q, want error", got)
	}
}

func TestProcessPending(t *testing.T) {
	store, exporter, created := setup(t)
	w := NewSyncWorker(store, exporter, 1)

	n, err := w.ProcessPending(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("first sweep: n=%d err=%v", n, err)
	}
	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	for _, c := range created {
		if got := store.SyncStatus(c.ID); got != "synced" {
			t.Errorf("%s status = %q, want synced", c.ID, got)
		}
	}
	n, err = w.ProcessPending(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("empty sweep: n=%d err=%v", n, err)
	}
}

func TestSweeper_Lifecycle(t *testing.T) {
	store, exporter, created := setup(t)
	s := NewSweeper(NewSyncWorker(store, exporter, 10), SweeperConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected error when starting twice")
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.SyncStatus(created[1].ID) != "synced" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := store.SyncStatus(created[1].ID); got != "synced" {
		t.Errorf("sweeper did not sync pending rows, status %q", got)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.IsRunning() {
		t.Error("sweeper should not be running after Stop")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("second Stop should be a no-op: %v", err)
	}
}
