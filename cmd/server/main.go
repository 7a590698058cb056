package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/birthmatrix/internal/catalog"
	"github.com/JonMunkholm/birthmatrix/internal/config"
	"github.com/JonMunkholm/birthmatrix/internal/core"
	"github.com/JonMunkholm/birthmatrix/internal/logging"
	"github.com/JonMunkholm/birthmatrix/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"redis", cfg.Cache.RedisURL != "",
		"history", cfg.History.Enabled,
		"family", cfg.Family.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	opts := []core.Option{core.WithMetrics(core.NewMetrics(prometheus.DefaultRegisterer))}
	var checks []web.ServerOption

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		checks = append(checks, web.WithHealthCheck("postgres", pool.Ping))
	}

	if cfg.History.Enabled {
		history, err := openHistory(ctx, cfg, pool)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithHistory(history))
	}

	if cfg.Family.Enabled {
		family, err := openFamily(ctx, cfg, pool)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithFamily(family, cfg.Family.MaxMembers))
	}

	if cfg.Cache.RedisURL != "" {
		cache, err := openRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer cache.Close()
		checks = append(checks, web.WithHealthCheck("redis", cache.Health))
		opts = append(opts, core.WithCache(cache))
	} else {
		opts = append(opts, core.WithCache(core.NewMemoryCache(cfg.Cache.MemoryEntries)))
	}

	service := core.NewService(cat, opts...)
	server := web.NewServer(service, cfg, checks...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		service.StartRetentionScheduler(gctx, core.RetentionConfig{
			RetentionDays: cfg.History.RetentionDays,
			CheckInterval: cfg.History.CheckInterval,
		})
		return nil
	})

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openDatabase connects to PostgreSQL when DATABASE_URL is set. The pool is
// nil otherwise, and stores fall back to memory.
func openDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if !cfg.Database.Enabled() {
		return nil, nil
	}
	if !cfg.History.Enabled && !cfg.Family.Enabled {
		slog.Info("DATABASE_URL set but no store uses it")
		return nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// openHistory keeps history in PostgreSQL when pool is set, else in memory.
func openHistory(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (core.HistoryStore, error) {
	if pool == nil {
		slog.Warn("DATABASE_URL not set, keeping history in memory")
		return core.NewMemoryHistory(cfg.History.MemoryEntries), nil
	}
	history := core.NewPostgresHistory(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return history, nil
}

// openFamily keeps family trees in PostgreSQL when pool is set, else in memory.
func openFamily(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (core.FamilyStore, error) {
	if pool == nil {
		slog.Warn("DATABASE_URL not set, keeping family trees in memory")
		return core.NewMemoryFamily(cfg.Family.MemoryTrees), nil
	}
	family := core.NewPostgresFamily(pool)
	if err := family.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return family, nil
}

// openRedis connects the shared reading cache.
func openRedis(ctx context.Context, cfg *config.Config) (*core.RedisCache, error) {
	opt, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = cfg.Cache.PoolSize
	opt.DialTimeout = cfg.Cache.DialTimeout

	cache := core.NewRedisCache(redis.NewClient(opt), cfg.Cache.TTL)
	if err := cache.Health(ctx); err != nil {
		_ = cache.Close()
		return nil, err
	}
	slog.Info("connected to redis", "addr", opt.Addr)
	return cache, nil
}
