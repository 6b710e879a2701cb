package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mohammed-shakir/unl-locationid/internal/cache/lrustore"
	"github.com/mohammed-shakir/unl-locationid/internal/cache/redisstore"
	"github.com/mohammed-shakir/unl-locationid/internal/core/config"
	"github.com/mohammed-shakir/unl-locationid/internal/core/health"
	"github.com/mohammed-shakir/unl-locationid/internal/core/httpclient"
	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
	"github.com/mohammed-shakir/unl-locationid/internal/core/router"
	"github.com/mohammed-shakir/unl-locationid/internal/core/server"
	"github.com/mohammed-shakir/unl-locationid/internal/hotness/expdecay"
	"github.com/mohammed-shakir/unl-locationid/internal/hotness/metricswrap"
	"github.com/mohammed-shakir/unl-locationid/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/unl-locationid/internal/logger"
	h3mapper "github.com/mohammed-shakir/unl-locationid/internal/mapper/h3"
	unlmapper "github.com/mohammed-shakir/unl-locationid/internal/mapper/unl"
	"github.com/mohammed-shakir/unl-locationid/internal/metrics"
	"github.com/mohammed-shakir/unl-locationid/internal/words"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// a missing .env is fine; real deployments use the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "unl-locationid",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	slog.SetDefault(appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prom := metrics.Init(metrics.Config{
		Addr: cfg.Metrics.Addr,
		Path: cfg.Metrics.Path,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	if err := observability.Init(prom.Registerer()); err != nil {
		appLog.Error("metrics registration failed", "err", err)
		return 1
	}
	// /metrics is always on the API port; METRICS_ENABLED adds a second listener
	if cfg.Metrics.Enabled {
		go func() {
			if err := prom.Serve(ctx, appLog); err != nil {
				appLog.Error("metrics server exited", "err", err)
			}
		}()
	}

	appLog.Info("starting unl-locationid",
		"addr", cfg.Addr,
		"version", Version,
		"default_precision", cfg.DefaultPrecision,
		"redis", cfg.Cache.RedisEnabled,
		"invalidation", cfg.Invalidation.Enabled)

	tiers := []words.Tier{{Name: "lru", Store: lrustore.New(cfg.Cache.LRUSize, cfg.Cache.TTL)}}
	checks := map[string]health.Checker{}

	if cfg.Cache.RedisEnabled {
		rc, err := redisstore.New(ctx, cfg.Cache.RedisAddr,
			redisstore.WithOpTimeout(cfg.Cache.OpTimeout),
			redisstore.WithAuth(cfg.Cache.RedisUser, cfg.Cache.RedisPass),
			redisstore.WithDB(cfg.Cache.RedisDB),
		)
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.Cache.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		tiers = append(tiers, words.Tier{Name: "redis", Store: rc, Gated: true})
		checks["redis"] = rc.Ping
	}

	if cfg.Words.APIKey == "" {
		appLog.Warn("WORDS_API_KEY not set; words lookups will answer 503")
	}
	tracker := expdecay.New(cfg.Cache.HotHalfLife)
	hotLog := zl.With().Str("component", "hotness").Logger()
	hot := metricswrap.New(tracker, "words", cfg.Cache.RedisMinScore, 0.01, &hotLog)
	go pruneHotness(ctx, tracker)

	upstream := words.New(cfg.Words.URL, cfg.Words.APIKey, httpclient.NewOutbound(cfg.Words.Timeout, "unl-locationid/"+Version))
	resolver := words.NewResolver(upstream, appLog.With("component", "words"), words.ResolverOptions{
		TTL:       cfg.Cache.TTL,
		OpTimeout: cfg.Cache.OpTimeout,
		Hotness:   hot,
		MinScore:  cfg.Cache.RedisMinScore,
	}, tiers...)

	cells := unlmapper.New(cfg.CellsMax)

	if cfg.Invalidation.Enabled {
		consumerLog := zl.With().Str("component", "kafka_consumer").Logger()
		cons := kafkaconsumer.New(kafkaconsumer.ConfigFrom(cfg.Invalidation), appLog, &consumerLog, resolver, cells)
		go func() {
			if err := cons.Start(ctx); err != nil {
				appLog.Error("invalidation consumer stopped", "err", err)
			}
		}()
	}

	h := server.NewHandler(appLog, router.Deps{
		Logger: appLog,
		Config: cfg,
		Cells:  cells,
		H3:     h3mapper.New(),
		Words:  resolver,
	}, server.Options{Checks: checks, Metrics: prom.Handler()})

	if err := server.Run(ctx, cfg, appLog, h); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// pruneHotness drops keys that have decayed to nothing so the tracker does
// not grow with every key ever looked up.
func pruneHotness(ctx context.Context, t *expdecay.Tracker) {
	tick := time.NewTicker(t.HalfLife)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.Prune(0.01)
		}
	}
}
