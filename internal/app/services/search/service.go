// Package search provides substring scoring over profiles and posts.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/thefreed/feedcore/internal/app/domain/post"
	"github.com/thefreed/feedcore/internal/app/domain/profile"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/apperrors"
	"github.com/thefreed/feedcore/pkg/logger"
)

// Field weights for scoring matches.
const (
	weightUsername    = 3
	weightDisplayName = 2
	weightBio         = 1
	weightContent     = 3
	weightHashtag     = 1
)

// UserResult is a profile match with its relevance score.
type UserResult struct {
	Profile profile.Profile `json:"profile"`
	Score   int             `json:"score"`
}

// PostResult is a post match with its relevance score.
type PostResult struct {
	Post  post.Post `json:"post"`
	Score int       `json:"score"`
}

// HashtagResult is a tag aggregated from post usage.
type HashtagResult struct {
	Tag   string `json:"tag"`
	Usage int    `json:"usage"`
}

// Results bundles matches across all corpora.
type Results struct {
	Users    []UserResult    `json:"users"`
	Posts    []PostResult    `json:"posts"`
	Hashtags []HashtagResult `json:"hashtags"`
}

// Service scores case-insensitive substring matches over stored profiles
// and posts.
type Service struct {
	profiles storage.ProfileStore
	content  storage.ContentStore
	log      *logger.Logger
}

// New constructs a search service.
func New(profiles storage.ProfileStore, content storage.ContentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("search")
	}
	return &Service{profiles: profiles, content: content, log: log}
}

// Users returns profiles matching the query, best score first.
func (s *Service) Users(ctx context.Context, query string) ([]UserResult, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, apperrors.RequiredError("q")
	}

	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]UserResult, 0)
	for _, p := range profiles {
		score := 0
		if strings.Contains(strings.ToLower(p.Username), query) {
			score += weightUsername
		}
		if strings.Contains(strings.ToLower(p.DisplayName), query) {
			score += weightDisplayName
		}
		if strings.Contains(strings.ToLower(p.Bio), query) {
			score += weightBio
		}
		if score > 0 {
			results = append(results, UserResult{Profile: p, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Profile.Username < results[j].Profile.Username
	})
	return results, nil
}

// Posts returns posts matching the query, optionally filtered by language,
// best score first and ties broken by recency.
func (s *Service) Posts(ctx context.Context, query, lang string) ([]PostResult, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, apperrors.RequiredError("q")
	}
	lang = strings.ToLower(strings.TrimSpace(lang))

	posts, err := s.content.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]PostResult, 0)
	for _, p := range posts {
		if lang != "" && strings.ToLower(p.Language) != lang {
			continue
		}
		score := 0
		if strings.Contains(strings.ToLower(p.Content), query) {
			score += weightContent
		}
		for _, tag := range p.Hashtags {
			if strings.Contains(strings.ToLower(tag), query) {
				score += weightHashtag
			}
		}
		if score > 0 {
			results = append(results, PostResult{Post: p, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Post.CreatedAt.After(results[j].Post.CreatedAt)
	})
	return results, nil
}

// Hashtags returns tags matching the query, most used first. Usage counts
// are aggregated from stored posts.
func (s *Service) Hashtags(ctx context.Context, query string) ([]HashtagResult, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, apperrors.RequiredError("q")
	}

	posts, err := s.content.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	usage := make(map[string]int)
	for _, p := range posts {
		for _, tag := range p.Hashtags {
			usage[strings.ToLower(tag)]++
		}
	}

	results := make([]HashtagResult, 0)
	for tag, count := range usage {
		if strings.Contains(tag, query) {
			results = append(results, HashtagResult{Tag: tag, Usage: count})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Usage != results[j].Usage {
			return results[i].Usage > results[j].Usage
		}
		return results[i].Tag < results[j].Tag
	})
	return results, nil
}

// All searches every corpus with one query.
func (s *Service) All(ctx context.Context, query, lang string) (Results, error) {
	users, err := s.Users(ctx, query)
	if err != nil {
		return Results{}, err
	}
	posts, err := s.Posts(ctx, query, lang)
	if err != nil {
		return Results{}, err
	}
	hashtags, err := s.Hashtags(ctx, query)
	if err != nil {
		return Results{}, err
	}
	return Results{Users: users, Posts: posts, Hashtags: hashtags}, nil
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
