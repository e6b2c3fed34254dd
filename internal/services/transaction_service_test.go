package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

type recordingPublisher struct {
	ids    []string
	err    error
	closed bool
}

func (p *recordingPublisher) PublishTransactionSync(_ context.Context, id string, _ int64) error {
	p.ids = append(p.ids, id)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func seededStore(t *testing.T) (*memory.Store, core.Account, core.Account) {
	t.Helper()
	store := memory.New()
	a, err := store.CreateAccount(context.Background(), "user_1", "Checking")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.CreateAccount(context.Background(), "user_1", "Savings")
	if err != nil {
		t.Fatal(err)
	}
	return store, a, b
}

func TestTransactionService_PublishesPerTransaction(t *testing.T) {
	store, a, b := seededStore(t)
	pub := &recordingPublisher{}
	svc := NewTransactionService(store, pub)

	created, err := svc.BulkCreateTransactions(context.Background(), "user_1", []core.Transaction{
		{ID: "out", Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: -100},
		{ID: "in", Date: core.NewDate(2024, 1, 1), AccountID: b.ID, Amount: 100},
	})
	if err != nil {
		t.Fatalf("BulkCreateTransactions: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created, got %d", len(created))
	}
	if len(pub.ids) != 2 || pub.ids[0] != "out" || pub.ids[1] != "in" {
		t.Errorf("unexpected published ids %v", pub.ids)
	}
}

func TestTransactionService_PublishFailureIsNotFatal(t *testing.T) {
	store, a, _ := seededStore(t)
	pub := &recordingPublisher{err: errors.New("circuit breaker is open")}
	svc := NewTransactionService(store, pub)

	created, err := svc.BulkCreateTransactions(context.Background(), "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 100},
	})
	if err != nil {
		t.Fatalf("publish failure should not fail the call: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 created, got %d", len(created))
	}
}

func TestTransactionService_StoreFailurePublishesNothing(t *testing.T) {
	store, a, _ := seededStore(t)
	pub := &recordingPublisher{}
	svc := NewTransactionService(store, pub)

	_, err := svc.BulkCreateTransactions(context.Background(), "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 100},
		{Date: core.NewDate(2024, 1, 1), AccountID: "not-mine", Amount: -100},
	})
	if !errors.Is(err, core.ErrAccountNotOwned) {
		t.Fatalf("expected ErrAccountNotOwned, got %v", err)
	}
	if len(pub.ids) != 0 {
		t.Errorf("nothing should be published, got %v", pub.ids)
	}
}

func TestTransactionService_NilPublisher(t *testing.T) {
	store, a, _ := seededStore(t)
	svc := NewTransactionService(store, nil)

	if _, err := svc.BulkCreateTransactions(context.Background(), "user_1", []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), AccountID: a.ID, Amount: 1},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestTransactionService_CloseClosesPublisher(t *testing.T) {
	store, _, _ := seededStore(t)
	pub := &recordingPublisher{}
	if err := NewTransactionService(store, pub).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("publisher should be closed")
	}
}
