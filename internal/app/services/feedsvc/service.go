// Package feedsvc assembles chronological feed pages, fronted by a short-TTL
// read-through cache.
package feedsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thefreed/feedcore/internal/app/cache"
	"github.com/thefreed/feedcore/internal/app/domain/feed"
	"github.com/thefreed/feedcore/internal/app/domain/post"
	"github.com/thefreed/feedcore/internal/app/metrics"
	"github.com/thefreed/feedcore/internal/app/pagination"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/apperrors"
	"github.com/thefreed/feedcore/pkg/logger"
)

// DefaultTTL is how long an assembled page stays fresh in the cache.
const DefaultTTL = 15 * time.Second

const cacheName = "feed"

// Option mutates service configuration.
type Option func(*Service)

// WithTTL overrides the cache TTL for assembled pages.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// Service builds feed pages from the subject's following set plus their own
// posts, newest first.
type Service struct {
	relationships storage.RelationshipStore
	content       storage.ContentStore
	cache         cache.Cache
	ttl           time.Duration
	log           *logger.Logger
}

// New constructs a feed service. A nil cache disables caching-by-key and
// every call assembles a fresh page.
func New(relationships storage.RelationshipStore, content storage.ContentStore, pageCache cache.Cache, log *logger.Logger, options ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("feed")
	}
	s := &Service{
		relationships: relationships,
		content:       content,
		cache:         pageCache,
		ttl:           DefaultTTL,
		log:           log,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Build returns the subject's feed page for (limit, cursor), serving a cached
// copy when one is still fresh.
func (s *Service) Build(ctx context.Context, subjectID string, limit int, cursor string) (feed.Page, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return feed.Page{}, apperrors.RequiredError("subject")
	}
	limit = pagination.ClampLimit(limit)
	start := time.Now()

	key := cacheKey(subjectID, limit, cursor)
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var page feed.Page
			if err := json.Unmarshal(payload, &page); err == nil {
				metrics.RecordCacheHit(cacheName)
				metrics.RecordFeedBuilt(page.Mode, time.Since(start), len(page.Items))
				return page, nil
			}
			s.cache.Remove(ctx, key)
		}
		metrics.RecordCacheMiss(cacheName)
	}
	page, err := s.assemble(ctx, subjectID, limit, cursor)
	if err != nil {
		return feed.Page{}, err
	}
	metrics.RecordFeedBuilt(page.Mode, time.Since(start), len(page.Items))

	if s.cache != nil {
		if payload, err := json.Marshal(page); err == nil {
			s.cache.Put(ctx, key, payload, s.ttl)
		}
	}

	s.log.WithField("subject_id", subjectID).
		WithField("items", len(page.Items)).
		WithField("has_more", page.HasMore).
		Debug("feed page assembled")
	return page, nil
}

// Publish stores a new post and drops the author's cached first feed page so
// the post shows up without waiting out the TTL.
func (s *Service) Publish(ctx context.Context, p post.Post) (post.Post, error) {
	p.AuthorID = strings.TrimSpace(p.AuthorID)
	if p.AuthorID == "" {
		return post.Post{}, apperrors.RequiredError("author")
	}
	if strings.TrimSpace(p.Content) == "" {
		return post.Post{}, apperrors.RequiredError("content")
	}

	stored, err := s.content.CreatePost(ctx, p)
	if err != nil {
		return post.Post{}, err
	}
	s.Invalidate(ctx, stored.AuthorID)

	s.log.WithField("post_id", stored.ID).
		WithField("author_id", stored.AuthorID).
		Info("post published")
	return stored, nil
}

// Invalidate drops the cached first page for the subject at the default
// limit. Deeper pages age out on their own.
func (s *Service) Invalidate(ctx context.Context, subjectID string) {
	if s.cache == nil {
		return
	}
	s.cache.Remove(ctx, cacheKey(subjectID, pagination.DefaultLimit, ""))
}

func (s *Service) assemble(ctx context.Context, subjectID string, limit int, cursor string) (feed.Page, error) {
	following, err := s.relationships.FetchFollowing(ctx, subjectID)
	if err != nil {
		return feed.Page{}, err
	}
	authors := append([]string{subjectID}, following...)

	// Over-fetch one item to learn whether another page exists.
	candidates, err := s.content.FetchCandidates(ctx, authors, limit+1, cursor)
	if err != nil {
		return feed.Page{}, err
	}

	hasMore := len(candidates) > limit
	if hasMore {
		candidates = candidates[:limit]
	}

	page := feed.Page{
		Items:   candidates,
		HasMore: hasMore,
		Mode:    feed.ModeChronological,
	}
	if hasMore && len(candidates) > 0 {
		last := candidates[len(candidates)-1]
		page.NextCursor = pagination.Token(last.CreatedAt, last.PostRef)
	}
	return page, nil
}

func cacheKey(subjectID string, limit int, cursor string) string {
	if cursor == "" {
		cursor = "start"
	}
	return fmt.Sprintf("feed:%s:%d:%s", subjectID, limit, cursor)
}
