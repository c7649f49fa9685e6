package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/lascramble/scramble/internal/config"
	"github.com/lascramble/scramble/internal/database"
	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/migrations"
	"github.com/lascramble/scramble/internal/scramble"
	"github.com/lascramble/scramble/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")
	}

	// --- Game wiring ---
	catalog, err := scramble.LoadCatalog()
	if err != nil {
		return fmt.Errorf("loading challenge catalog: %w", err)
	}
	logger.Info("catalog loaded", "stations", len(catalog.Stations), "templates", len(catalog.Templates))

	store := server.NewSQLiteStore(db)
	broker := server.NewBroker()

	var notifier server.Notifier = broker
	var bridge *server.RedisBridge
	if rdb != nil {
		bridge = server.NewRedisBridge(rdb, broker, logger)
		notifier = bridge
	}

	eng := engine.New(store, catalog)
	timers := server.NewTimerRegistry(store, notifier, logger)
	defer timers.Close()

	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, store, timers); err != nil {
			return fmt.Errorf("seeding demo game: %w", err)
		}
	}

	// Resume countdowns for games that were active when the process last
	// stopped.
	active, err := store.ActiveGames(ctx)
	if err != nil {
		return fmt.Errorf("listing active games: %w", err)
	}
	for _, sess := range active {
		timers.Watch(ctx, sess)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:    store,
		Engine:   eng,
		Notifier: notifier,
		Broker:   broker,
		Timers:   timers,
		Redis:    rdb,
		SPADir:   cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	if bridge != nil {
		g.Go(func() error {
			if err := bridge.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
