package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/unl-locationid/internal/core/config"
	"github.com/mohammed-shakir/unl-locationid/internal/core/health"
	middleware "github.com/mohammed-shakir/unl-locationid/internal/core/middleware"
	"github.com/mohammed-shakir/unl-locationid/internal/core/router"
)

type Options struct {
	// Checks back /readyz; an empty map is always ready.
	Checks       map[string]health.Checker
	ReadyTimeout time.Duration
	// Metrics serves /metrics; nil falls back to the default registry.
	Metrics http.Handler
}

// NewHandler wires the middlewares, probes, metrics and the /v1 API.
func NewHandler(logger *slog.Logger, d router.Deps, o Options) http.Handler {
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = 2 * time.Second
	}
	if o.Metrics == nil {
		o.Metrics = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(o.ReadyTimeout, o.Checks))
	r.Method(http.MethodGet, "/metrics", o.Metrics)

	if d.Logger == nil {
		d.Logger = logger
	}
	router.Mount(r, d)
	return r
}

// Run serves h on cfg.Addr until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, h http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
