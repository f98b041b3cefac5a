package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/app/services/directory"
	"github.com/thefreed/feedcore/internal/app/storage/memory"
	"github.com/thefreed/feedcore/internal/apperrors"
)

func newService(store *memory.Store) *Service {
	return New(directory.New(store, nil), store, nil)
}

func TestSendCreatesConversationAndMessage(t *testing.T) {
	store := memory.New()
	svc := newService(store)

	conv, msg, err := svc.Send(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID == "" || msg.ConversationID == "" {
		t.Fatalf("missing identifiers: %#v", msg)
	}
	if msg.Status != message.StatusSent || msg.ReadAt != nil {
		t.Fatalf("new message must be unread: %#v", msg)
	}

	// The resolved conversation comes back with the message.
	if conv.ID != msg.ConversationID {
		t.Fatalf("conversation %s does not match message's %s", conv.ID, msg.ConversationID)
	}
	if !conv.Has("alice") || !conv.Has("bob") {
		t.Fatalf("unexpected participants: %v", conv.Participants)
	}

	// The reply lands in the same conversation.
	replyConv, reply, err := svc.Send(context.Background(), "bob", "alice", "hi")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ConversationID != msg.ConversationID || replyConv.ID != conv.ID {
		t.Fatalf("reply created a second conversation: %s vs %s", reply.ConversationID, msg.ConversationID)
	}
}

func TestSendValidation(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	if _, _, err := svc.Send(ctx, "alice", "alice", "hi"); !errors.Is(err, ErrSelfAddressed) {
		t.Fatalf("expected self-addressed error, got %v", err)
	}
	if _, _, err := svc.Send(ctx, "alice", "bob", ""); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected empty-content error, got %v", err)
	}
	if _, _, err := svc.Send(ctx, "", "bob", "hi"); !apperrors.IsValidationError(err) {
		t.Fatalf("expected validation error for missing sender, got %v", err)
	}

	long := strings.Repeat("x", message.MaxContentLength+1)
	if _, _, err := svc.Send(ctx, "alice", "bob", long); !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("expected content-too-long error, got %v", err)
	}
}

func TestSendCountsRunesNotBytes(t *testing.T) {
	store := memory.New()
	svc := newService(store)

	// Multi-byte runes at exactly the limit are accepted.
	content := strings.Repeat("é", message.MaxContentLength)
	if _, _, err := svc.Send(context.Background(), "alice", "bob", content); err != nil {
		t.Fatalf("limit-length multibyte content rejected: %v", err)
	}
}

func TestListPagination(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	var convID string
	for i := 0; i < 5; i++ {
		_, msg, err := svc.Send(ctx, "alice", "bob", "msg")
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		convID = msg.ConversationID
	}

	conv, first, next, err := svc.List(ctx, convID, 2, "")
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if conv.ID != convID {
		t.Fatalf("expected conversation %s, got %s", convID, conv.ID)
	}
	if len(first) != 2 || next == "" {
		t.Fatalf("expected full first page with cursor, got %d items next=%q", len(first), next)
	}
	if first[0].CreatedAt.Before(first[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	seen := map[string]struct{}{}
	cursor := ""
	for {
		_, page, nextCursor, err := svc.List(ctx, convID, 2, cursor)
		if err != nil {
			t.Fatalf("page at %q: %v", cursor, err)
		}
		for _, msg := range page {
			if _, dup := seen[msg.ID]; dup {
				t.Fatalf("message %s served twice", msg.ID)
			}
			seen[msg.ID] = struct{}{}
		}
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}
	if len(seen) != 5 {
		t.Fatalf("expected all 5 messages across pages, saw %d", len(seen))
	}
}

func TestListUnknownConversation(t *testing.T) {
	store := memory.New()
	svc := newService(store)

	if _, _, _, err := svc.List(context.Background(), "missing", 10, ""); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestListWithResolvesPair(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	_, sent, err := svc.Send(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	conv, page, _, err := svc.ListWith(ctx, "bob", "alice", 10, "")
	if err != nil {
		t.Fatalf("list with: %v", err)
	}
	if conv.ID != sent.ConversationID {
		t.Fatalf("resolved wrong conversation: %s", conv.ID)
	}
	if !conv.Has("alice") || !conv.Has("bob") {
		t.Fatalf("unexpected participants: %v", conv.Participants)
	}
	if len(page) != 1 || page[0].Content != "hello" {
		t.Fatalf("unexpected page: %#v", page)
	}
}

func TestMarkRead(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	_, msg, err := svc.Send(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	count, at, err := svc.MarkRead(ctx, msg.ConversationID, "bob")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count != 1 || at.IsZero() {
		t.Fatalf("expected one receipt, got count=%d at=%v", count, at)
	}

	// Idempotent on a second pass.
	count, _, err = svc.MarkRead(ctx, msg.ConversationID, "bob")
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero on repeat, got %d", count)
	}
}

func TestMarkReadRejectsOutsiders(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	_, msg, err := svc.Send(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, _, err := svc.MarkRead(ctx, msg.ConversationID, "mallory"); !apperrors.IsValidationError(err) {
		t.Fatalf("expected validation error for non-participant, got %v", err)
	}
	if _, _, err := svc.MarkRead(ctx, "missing", "bob"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown conversation, got %v", err)
	}
}
