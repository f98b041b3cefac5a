package app

import (
	"context"
	"fmt"
	"time"

	"github.com/thefreed/feedcore/internal/app/cache"
	"github.com/thefreed/feedcore/internal/app/services/directory"
	"github.com/thefreed/feedcore/internal/app/services/feedsvc"
	"github.com/thefreed/feedcore/internal/app/services/messaging"
	"github.com/thefreed/feedcore/internal/app/services/search"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/app/storage/memory"
	"github.com/thefreed/feedcore/internal/app/system"
	"github.com/thefreed/feedcore/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Conversations storage.ConversationStore
	Messages      storage.MessageStore
	Relationships storage.RelationshipStore
	Content       storage.ContentStore
	Profiles      storage.ProfileStore
}

// Option mutates application configuration.
type Option func(*settings)

type settings struct {
	cache   cache.Cache
	feedTTL time.Duration
}

// WithCache overrides the feed page cache. Nil disables caching.
func WithCache(c cache.Cache) Option {
	return func(s *settings) { s.cache = c }
}

// WithFeedTTL overrides how long assembled feed pages stay fresh.
func WithFeedTTL(ttl time.Duration) Option {
	return func(s *settings) { s.feedTTL = ttl }
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Cache     cache.Cache
	Directory *directory.Service
	Messages  *messaging.Service
	Feed      *feedsvc.Service
	Search    *search.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger, options ...Option) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	cfg := settings{cache: cache.NewMemory()}
	for _, option := range options {
		option(&cfg)
	}

	mem := memory.New()
	if stores.Conversations == nil {
		stores.Conversations = mem
	}
	if stores.Messages == nil {
		stores.Messages = mem
	}
	if stores.Relationships == nil {
		stores.Relationships = mem
	}
	if stores.Content == nil {
		stores.Content = mem
	}
	if stores.Profiles == nil {
		stores.Profiles = mem
	}

	manager := system.NewManager()

	var feedOptions []feedsvc.Option
	if cfg.feedTTL > 0 {
		feedOptions = append(feedOptions, feedsvc.WithTTL(cfg.feedTTL))
	}

	directoryService := directory.New(stores.Conversations, log)
	messagingService := messaging.New(directoryService, stores.Messages, log)
	feedService := feedsvc.New(stores.Relationships, stores.Content, cfg.cache, log, feedOptions...)
	searchService := search.New(stores.Profiles, stores.Content, log)

	for _, name := range []string{"directory", "messaging", "feed", "search"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	// Cache backends with their own lifecycle (e.g. redis) join the manager.
	if svc, ok := cfg.cache.(system.Service); ok {
		if err := manager.Register(svc); err != nil {
			return nil, fmt.Errorf("register %s: %w", svc.Name(), err)
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Cache:     cfg.cache,
		Directory: directoryService,
		Messages:  messagingService,
		Feed:      feedService,
		Search:    searchService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
