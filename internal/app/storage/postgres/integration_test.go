//go:build integration && postgres

package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/apperrors"
)

// Integration test against Postgres to ensure migrations + ledger flows work
// with persistence.
func TestIntegrationPostgres(t *testing.T) {
	_ = godotenv.Load() // allow .env for local runs
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping Postgres integration")
	}

	ctx := context.Background()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	conv, created, err := store.EnsureConversation(ctx, "it-alice", "it-bob")
	if err != nil {
		t.Fatalf("ensure conversation: %v", err)
	}
	again, createdAgain, err := store.EnsureConversation(ctx, "it-bob", "it-alice")
	if err != nil {
		t.Fatalf("ensure reversed: %v", err)
	}
	if again.ID != conv.ID || (created && createdAgain) {
		t.Fatalf("pair not unified: %s / %s", conv.ID, again.ID)
	}

	msg, err := store.AppendMessage(ctx, message.Message{
		ConversationID: conv.ID,
		SenderID:       "it-alice",
		RecipientID:    "it-bob",
		Content:        "integration hello",
	})
	if err != nil {
		t.Fatalf("append message: %v", err)
	}

	count, err := store.MarkRead(ctx, conv.ID, "it-bob", time.Now())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least one receipt, got %d", count)
	}

	ledger, err := store.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	found := false
	for _, m := range ledger {
		if m.ID == msg.ID {
			found = true
			if m.ReadAt == nil || m.Status != message.StatusRead {
				t.Fatalf("receipt not persisted: %#v", m)
			}
		}
	}
	if !found {
		t.Fatalf("appended message not listed")
	}

	if _, err := store.GetConversation(ctx, "it-missing"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
