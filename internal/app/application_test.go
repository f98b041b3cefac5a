package app

import (
	"context"
	"testing"
	"time"
)

func TestNewDefaultsToMemoryStores(t *testing.T) {
	application, err := New(Stores{}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		if err := application.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()

	// End to end across the wired services: send, read, feed.
	conv, msg, err := application.Messages.Send(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// The directory resolves the same conversation the ledger wrote to.
	resolved, created, err := application.Directory.Ensure(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("directory ensure: %v", err)
	}
	if created || resolved.ID != conv.ID {
		t.Fatalf("directory diverged from ledger: %s vs %s", resolved.ID, conv.ID)
	}

	count, _, err := application.Messages.MarkRead(ctx, msg.ConversationID, "bob")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one receipt, got %d", count)
	}

	page, err := application.Feed.Build(ctx, "alice", 10, "")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if page.Items == nil {
		t.Fatal("expected empty items slice, not nil")
	}
}

func TestWithFeedTTLOption(t *testing.T) {
	application, err := New(Stores{}, nil, WithFeedTTL(time.Minute))
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	if application.Feed == nil || application.Cache == nil {
		t.Fatal("expected feed service and cache wired")
	}
}
