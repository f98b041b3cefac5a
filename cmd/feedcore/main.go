// Package main runs the feed core HTTP service: 1:1 direct messages,
// chronological feed assembly and search.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/thefreed/feedcore/internal/app"
	"github.com/thefreed/feedcore/internal/app/cache"
	"github.com/thefreed/feedcore/internal/app/demo"
	"github.com/thefreed/feedcore/internal/app/httpapi"
	"github.com/thefreed/feedcore/internal/app/metrics"
	"github.com/thefreed/feedcore/internal/app/storage/memory"
	"github.com/thefreed/feedcore/internal/app/storage/postgres"
	"github.com/thefreed/feedcore/internal/config"
	"github.com/thefreed/feedcore/internal/middleware"
	"github.com/thefreed/feedcore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("main").WithError(err).Error("load configuration")
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := memory.New()
	stores := app.Stores{
		Conversations: mem,
		Messages:      mem,
		Relationships: mem,
		Content:       mem,
		Profiles:      mem,
	}

	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.Apply(ctx, db); err != nil {
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}

		pg := postgres.New(db)
		stores.Conversations = pg
		stores.Messages = pg
		log.Info("using postgres for conversations and messages")
	}

	options := []app.Option{app.WithFeedTTL(cfg.Cache.TTL)}
	if cfg.Cache.RedisAddr != "" {
		options = append(options, app.WithCache(cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, log)))
		log.WithField("addr", cfg.Cache.RedisAddr).Info("using redis feed cache")
	} else if cfg.Cache.MaxEntries > 0 {
		options = append(options, app.WithCache(cache.NewMemory(cache.WithMaxEntries(cfg.Cache.MaxEntries))))
	}

	application, err := app.New(stores, log, options...)
	if err != nil {
		log.WithError(err).Error("build application")
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application")
		os.Exit(1)
	}

	demoUser := ""
	if cfg.Demo.Seed {
		if err := demo.Seed(ctx, mem, mem, mem, log); err != nil {
			log.WithError(err).Error("seed demo fixtures")
			os.Exit(1)
		}
		demoUser = cfg.Demo.User
		if demoUser == "" {
			demoUser = demo.DefaultUser
		}
	}

	handler := httpapi.NewHandler(application)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", handler)

	tracing := middleware.NewTracing(log)
	identity := middleware.NewIdentity(demoUser, "/metrics", "/healthz")
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)

	var root http.Handler = mux
	root = limiter.Handler(root)
	root = identity.Handler(root)
	root = metrics.InstrumentHandler(root)
	root = tracing.Handler(root)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("http server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("http server")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}
}
