package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/thefreed/feedcore/internal/apperrors"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestApplyRunsAllMigrations(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS dm_conversations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS dm_messages")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_dm_messages_conversation")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_dm_messages_unread")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureConversationCreates(t *testing.T) {
	db, mock := newMock(t)
	store := New(db)

	created := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dm_conversations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, participant_a, participant_b, created_at")).
		WithArgs("alice::bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_a", "participant_b", "created_at"}).
			AddRow("conv-1", "alice", "bob", created))

	conv, wasCreated, err := store.EnsureConversation(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("ensure conversation: %v", err)
	}
	if !wasCreated {
		t.Fatal("insert affected a row, expected created=true")
	}
	if conv.ID != "conv-1" || conv.Participants[0] != "alice" || conv.Participants[1] != "bob" {
		t.Fatalf("unexpected conversation: %#v", conv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureConversationLosesRace(t *testing.T) {
	db, mock := newMock(t)
	store := New(db)

	// ON CONFLICT DO NOTHING reports zero affected rows when another caller
	// created the pair first; the reselect still returns the winner's row.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dm_conversations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, participant_a, participant_b, created_at")).
		WithArgs("alice::bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_a", "participant_b", "created_at"}).
			AddRow("conv-1", "alice", "bob", time.Now().UTC()))

	conv, wasCreated, err := store.EnsureConversation(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("ensure conversation: %v", err)
	}
	if wasCreated {
		t.Fatal("conflicting insert must not report creation")
	}
	if conv.ID != "conv-1" {
		t.Fatalf("expected the winner's conversation, got %#v", conv)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	db, mock := newMock(t)
	store := New(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, participant_a, participant_b, created_at")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetConversation(context.Background(), "missing")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMarkReadReportsUpdatedCount(t *testing.T) {
	db, mock := newMock(t)
	store := New(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE dm_messages")).
		WithArgs("conv-1", "alice", sqlmock.AnyArg(), "read").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := store.MarkRead(context.Background(), "conv-1", "alice", time.Now())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated messages, got %d", count)
	}
}

func TestListMessagesScansReadReceipts(t *testing.T) {
	db, mock := newMock(t)
	store := New(db)

	readAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "recipient_id", "content", "status", "created_at", "read_at"}).
		AddRow("m1", "conv-1", "alice", "bob", "hello", "read", readAt.Add(-time.Minute), readAt).
		AddRow("m2", "conv-1", "bob", "alice", "hi", "sent", readAt, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, conversation_id, sender_id, recipient_id, content, status, created_at, read_at")).
		WithArgs("conv-1").
		WillReturnRows(rows)

	ledger, err := store.ListMessages(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ledger))
	}
	if ledger[0].ReadAt == nil || !ledger[0].ReadAt.Equal(readAt) {
		t.Fatalf("read receipt lost in scan: %#v", ledger[0])
	}
	if ledger[1].ReadAt != nil {
		t.Fatalf("unread message gained a receipt: %#v", ledger[1])
	}
}
