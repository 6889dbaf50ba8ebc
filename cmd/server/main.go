package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neexbeast/weather-trip-planner/internal/api"
	"github.com/neexbeast/weather-trip-planner/internal/cache"
	"github.com/neexbeast/weather-trip-planner/internal/config"
	"github.com/neexbeast/weather-trip-planner/internal/links"
	"github.com/neexbeast/weather-trip-planner/internal/location"
	"github.com/neexbeast/weather-trip-planner/internal/planner"
	"github.com/neexbeast/weather-trip-planner/internal/storage"
	"github.com/neexbeast/weather-trip-planner/internal/timeanddate"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	ctx := context.Background()

	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	applied, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", "files", applied)

	// Connect to Redis.
	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire dependencies.
	repo := storage.NewRepository(pool)
	cacheLayer := cache.NewCacheWithTTL(redisClient, cfg.ForecastCacheTTL)
	site := timeanddate.NewClient(timeanddate.Options{
		BaseURL: cfg.TimeAndDateURL,
		Timeout: cfg.HTTPTimeout,
		Retries: cfg.FetchRetries,
		Delay:   cfg.FetchDelay,
	}, log)
	tripPlanner := planner.New(planner.Deps{
		Searcher:  site,
		Forecasts: site,
		Resolver:  location.NewResolver(location.Regions, cfg.CountryMarker, log),
		Links:     links.NewBuilder(),
		Cache:     cacheLayer,
		Store:     repo,
		Log:       log,
	})
	handlers := api.NewHandlers(tripPlanner, repo, cacheLayer, log)

	router := api.NewRouter(handlers, cfg.BearerToken, pool, cache.Pinger{Client: redisClient}, log)

	// Planning fetches several pages per city, so writes get a longer budget
	// than reads.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}
