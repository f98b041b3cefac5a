package demo

import (
	"context"
	"testing"

	"github.com/thefreed/feedcore/internal/app/storage/memory"
)

func TestSeedPopulatesStores(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := Seed(ctx, store, store, store, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 4 {
		t.Fatalf("expected 4 demo profiles, got %d", len(profiles))
	}

	following, err := store.FetchFollowing(ctx, DefaultUser)
	if err != nil {
		t.Fatalf("fetch following: %v", err)
	}
	if len(following) != 3 {
		t.Fatalf("expected demo user to follow 3 accounts, got %d", len(following))
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 4 {
		t.Fatalf("expected 4 demo posts, got %d", len(posts))
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := Seed(ctx, store, store, store, nil); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(ctx, store, store, store, nil); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 4 {
		t.Fatalf("expected 4 posts after reseeding, got %d", len(posts))
	}
}
