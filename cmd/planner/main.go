package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"

	"github.com/neexbeast/weather-trip-planner/internal/cache"
	"github.com/neexbeast/weather-trip-planner/internal/cli"
	"github.com/neexbeast/weather-trip-planner/internal/config"
	"github.com/neexbeast/weather-trip-planner/internal/links"
	"github.com/neexbeast/weather-trip-planner/internal/location"
	"github.com/neexbeast/weather-trip-planner/internal/planner"
	"github.com/neexbeast/weather-trip-planner/internal/storage"
	"github.com/neexbeast/weather-trip-planner/internal/timeanddate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	openSel := fs.String("open", "", `open these summary entries without prompting ("all" or "1,3")`)
	noPrompt := fs.Bool("no-prompt", false, "print the summary and exit without asking which links to open")
	verbose := fs.Bool("v", false, "log progress to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, cli.Usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	req, err := cli.ParseArgs(fs.Args())
	if err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fs.Usage()
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup := dependencies(ctx, cfg, log)
	defer cleanup()

	report, err := planner.New(deps).Plan(ctx, req)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	for _, c := range report.Cities {
		cli.RenderCity(stdout, c)
	}
	cli.RenderSkipped(stdout, report.Skipped)
	if !cli.RenderSummary(stdout, report.Entries) {
		return 0
	}

	answer := *openSel
	if answer == "" {
		if *noPrompt {
			return 0
		}
		if answer, err = cli.Prompt(stdin, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if _, err := cli.OpenSelection(stdout, report.Entries, answer, browser.OpenURL); err != nil {
		return 1
	}
	return 0
}

// dependencies wires the site client and, when configured, Redis and
// PostgreSQL. An unreachable backing store is logged and left out.
func dependencies(ctx context.Context, cfg config.Config, log *slog.Logger) (planner.Deps, func()) {
	site := timeanddate.NewClient(timeanddate.Options{
		BaseURL: cfg.TimeAndDateURL,
		Timeout: cfg.HTTPTimeout,
		Retries: cfg.FetchRetries,
		Delay:   cfg.FetchDelay,
	}, log)

	deps := planner.Deps{
		Searcher:  site,
		Forecasts: site,
		Resolver:  location.NewResolver(location.Regions, cfg.CountryMarker, log),
		Links:     links.NewBuilder(),
		Log:       log,
	}
	var closers []func()

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", "err", err)
		} else {
			deps.Cache = cache.NewCacheWithTTL(client, cfg.ForecastCacheTTL)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	if cfg.DatabaseURL != "" {
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn("database unavailable, report will not be saved", "err", err)
		} else if _, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Warn("migrations failed, report will not be saved", "err", err)
			pool.Close()
		} else {
			deps.Store = storage.NewRepository(pool)
			closers = append(closers, pool.Close)
		}
	}

	return deps, func() {
		for _, c := range closers {
			c()
		}
	}
}
