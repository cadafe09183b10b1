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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scoring-api/internal/api"
	"scoring-api/internal/config"
	"scoring-api/internal/logger"
	"scoring-api/internal/metrics"
	appMiddleware "scoring-api/internal/middleware"
	"scoring-api/internal/scoring"
	"scoring-api/internal/store"
)

const shutdownTimeout = 10 * time.Second

// main только собирает зависимости и запускает сервер,
// вся логика живёт в internal/.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scoring-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog() //nolint:errcheck // процесс всё равно завершается

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := scoring.NewService(st, log, m,
		scoring.WithCacheTTL(cfg.ScoreCacheTTL),
		scoring.WithAttempts(cfg.InterestAttempts),
	)
	methods := api.NewMethodHandler(svc, log, m)
	handler := api.NewHandler(methods, st, log, m, api.HandlerConfig{
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(handler, reg, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore поднимает Redis, если задан REDIS_URL, иначе хранилище в памяти.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (store.Store, func(), error) {
	if cfg.Redis.URL == "" {
		log.Warn("REDIS_URL is not set, using in-memory store")
		return store.NewMemory(nil), func() {}, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
	defer cancel()

	rdb, err := store.NewRedis(dialCtx, cfg.Redis, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	metrics.RegisterPool(reg, rdb.PoolStats)

	return rdb, func() {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}, nil
}

// newRouter навешивает общесервисные middleware и /metrics на роутер API.
func newRouter(h *api.Handler, reg *prometheus.Registry, cfg config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.RequestIDMiddleware)
	r.Use(appMiddleware.LoggingMiddleware(log))
	r.Use(chiMiddleware.Recoverer)

	r.With(appMiddleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPassword)).
		Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Mount("/", h.Router())
	return r
}
