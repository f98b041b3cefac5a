package directory

import (
	"context"
	"testing"

	"github.com/thefreed/feedcore/internal/app/storage/memory"
	"github.com/thefreed/feedcore/internal/apperrors"
)

func TestEnsureAndGet(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	conv, created, err := svc.Ensure(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !created {
		t.Fatal("expected first contact to create the conversation")
	}

	again, created, err := svc.Ensure(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("ensure reversed: %v", err)
	}
	if created || again.ID != conv.ID {
		t.Fatalf("expected same conversation, got %#v", again)
	}

	fetched, err := svc.Get(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.ID != conv.ID {
		t.Fatalf("unexpected conversation: %#v", fetched)
	}
}

func TestEnsureValidation(t *testing.T) {
	svc := New(memory.New(), nil)

	if _, _, err := svc.Ensure(context.Background(), "", "bob"); !apperrors.IsValidationError(err) {
		t.Fatalf("expected validation error for empty participant, got %v", err)
	}
	if _, _, err := svc.Ensure(context.Background(), "alice", "alice"); !apperrors.IsValidationError(err) {
		t.Fatalf("expected validation error for self pair, got %v", err)
	}
}

func TestGetUnknownConversation(t *testing.T) {
	svc := New(memory.New(), nil)

	if _, err := svc.Get(context.Background(), "missing"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
