package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/handler"
	"github.com/iliyamo/film-catalog/internal/logging"
	"github.com/iliyamo/film-catalog/internal/middleware"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/rating"
	"github.com/iliyamo/film-catalog/internal/repository"
	"github.com/iliyamo/film-catalog/internal/repository/memory"
	"github.com/iliyamo/film-catalog/internal/router"
	"github.com/iliyamo/film-catalog/internal/service"
)

func serveCommand(envErr error) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serve(ctx, envErr)
		},
	}
}

func serve(ctx context.Context, envErr error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Debug("no .env file loaded", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, ping, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	} else if cfg.Redis.Enabled {
		log.Warn("redis unreachable, running without caching and rate limiting", zap.String("addr", cfg.Redis.Addr))
	}

	ratings, ratingCache := ratingLookup(cfg.Rating, rdb, log)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue, cfg.Events.Timeout, log)
		if ratingCache != nil {
			consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, ratingCache, log)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("event consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	catalog := service.NewCatalog(store, log,
		service.WithRatings(ratings),
		service.WithEvents(events),
		service.WithPublishTimeout(cfg.Events.Timeout),
		service.WithRatingTimeout(cfg.Rating.Timeout))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))
	router.RegisterRoutes(e, handler.NewHealth(ping))
	router.RegisterCatalog(e, handler.NewCatalogHandler(catalog, log),
		middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		middleware.NewRedisCache(cfg.Cache, rdb, log))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the configured entity store, a health check for it
// and a function releasing its resources.
func openStore(cfg config.Config, log *zap.Logger) (repository.Store, func(context.Context) error, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil, func() {}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	store := repository.NewMySQLStore(db)
	return store, store.DB().PingContext, func() { _ = db.Close() }, nil
}

// ratingLookup builds the rating lookup chain.  The cache is returned
// separately so the event consumer can invalidate it; it is nil when
// ratings are not cached.
func ratingLookup(cfg config.RatingConfig, rdb *redis.Client, log *zap.Logger) (rating.Lookup, *rating.Cached) {
	if cfg.APIKey == "" {
		log.Info("RATING_API_KEY not set, film ratings disabled")
		return rating.Nop{}, nil
	}
	client := rating.NewClient(cfg.URL, cfg.APIKey, cfg.Timeout, log)
	if rdb == nil {
		return client, nil
	}
	cached := rating.NewCached(client, rdb, cfg.CacheTTL, cfg.CachePrefix, log)
	return cached, cached
}
