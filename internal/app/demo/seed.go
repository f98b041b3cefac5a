// Package demo seeds the stores with a small fixture set for local runs.
package demo

import (
	"context"
	"time"

	"github.com/thefreed/feedcore/internal/app/domain/feed"
	"github.com/thefreed/feedcore/internal/app/domain/post"
	"github.com/thefreed/feedcore/internal/app/domain/profile"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/pkg/logger"
)

// DefaultUser is the identity assumed for unauthenticated demo requests.
const DefaultUser = "u1"

var profiles = []profile.Profile{
	{ID: "u1", Username: "thefreed", DisplayName: "TheFreed", Bio: "La red social simple y libre."},
	{ID: "u2", Username: "developer", DisplayName: "Dev Team", Bio: "Construyendo TheFreed.v1"},
	{ID: "u3", Username: "maria", DisplayName: "María López", Bio: "Fotografía y viajes"},
	{ID: "u4", Username: "juan", DisplayName: "Juan Pérez", Bio: "Tecnología y startups"},
}

// Seed loads demo profiles, follows and posts. Posts are back-dated so the
// feed has a stable chronological shape.
func Seed(ctx context.Context, profileStore storage.ProfileStore, relationships storage.RelationshipStore, content storage.ContentStore, log *logger.Logger) error {
	if log == nil {
		log = logger.NewDefault("demo")
	}

	// Seeding twice would duplicate posts, so bail out once the default
	// profile exists.
	if _, err := profileStore.GetProfile(ctx, DefaultUser); err == nil {
		log.Debug("demo fixtures already present")
		return nil
	}

	for _, p := range profiles {
		if _, err := profileStore.CreateProfile(ctx, p); err != nil {
			return err
		}
	}

	for _, followee := range []string{"u2", "u3", "u4"} {
		if err := relationships.Follow(ctx, DefaultUser, followee); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	posts := []post.Post{
		{
			ID:         "p1",
			AuthorID:   "u1",
			Content:    "Bienvenido a TheFreed.v1, feed cronológico y sin complicaciones.",
			Language:   "es",
			Hashtags:   []string{"thefreed", "welcome"},
			Visibility: feed.VisibilityPublic,
			CreatedAt:  now,
		},
		{
			ID:         "p2",
			AuthorID:   "u2",
			Content:    "Implementando DMs 1:1 con paginación por cursor y caché.",
			Language:   "es",
			Hashtags:   []string{"dev", "dm", "cursor"},
			Visibility: feed.VisibilityPublic,
			CreatedAt:  now.Add(-1 * time.Hour),
		},
		{
			ID:         "p3",
			AuthorID:   "u3",
			Content:    "New photo series from the mountains.",
			Language:   "en",
			Hashtags:   []string{"photo", "travel"},
			Visibility: feed.VisibilityPublic,
			CreatedAt:  now.Add(-2 * time.Hour),
		},
		{
			ID:         "p4",
			AuthorID:   "u4",
			Content:    "Buscando gente para charlar sobre producto y growth.",
			Language:   "es",
			Hashtags:   []string{"growth", "product"},
			Visibility: feed.VisibilityPublic,
			CreatedAt:  now.Add(-3 * time.Hour),
		},
	}
	for _, p := range posts {
		if _, err := content.CreatePost(ctx, p); err != nil {
			return err
		}
	}

	log.WithField("profiles", len(profiles)).
		WithField("posts", len(posts)).
		Info("demo fixtures loaded")
	return nil
}
