package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/config"
	"github.com/mkrause/hauslist/internal/realtime"
	"github.com/mkrause/hauslist/internal/service"
	"github.com/mkrause/hauslist/internal/storage/sqlite"
	"github.com/mkrause/hauslist/pkg/logging"
	"github.com/mkrause/hauslist/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(os.Stderr, cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize storage", "db_path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("storage initialized", "database", cfg.DBPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngine(registry)

	// Wire the services behind the JSON API.
	profiles := service.NewProfileStore(store)
	authenticator := auth.NewPasswordAuthenticator(profiles)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	handlers := &api{
		accounts: service.NewAccountService(authenticator, jwtManager, profiles, logger),
		lists:    service.NewListService(store, logger),
		catalog:  service.NewCatalogService(store, logger),
		orders:   service.NewOrderService(store, logger),
		billing:  service.NewBillingService(store, logger, cfg.ExcludedCategories),
		logger:   logger,
	}

	// Open a sync session that keeps the core resources warm and logs
	// their churn; it also exercises the engine metrics exposed below.
	session := realtime.NewSession(store, realtime.Options{
		DebounceWindow: cfg.DebounceWindow,
		Logger:         logger,
		Metrics:        engineMetrics,
	})
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchResource(ctx, session, service.ListDescriptor, logger)
	watchResource(ctx, session, service.ProductDescriptor, logger)
	watchResource(ctx, session, service.CategoryDescriptor, logger)

	mux := http.NewServeMux()
	handlers.routes(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: loggingMiddleware(logger, mux),
	}

	go func() {
		logger.Info("http server starting", "address", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

// watchResource binds one resource, keeps it fresh for the lifetime of
// ctx and logs every applied snapshot.
func watchResource[T any](ctx context.Context, session *realtime.Session, desc realtime.Descriptor[T], logger *slog.Logger) {
	binding := realtime.Bind(session, desc)
	binding.OnRows(func(rows []T) {
		logger.Debug("rows refreshed", "resource", desc.Resource, "count", len(rows))
	})
	binding.OnError(func(err error) {
		logger.Warn("refresh failed", "resource", desc.Resource, "error", err)
	})
	binding.SetScope(ctx, nil, nil, []realtime.WatchSpec{{Resource: desc.Resource}})
}

// loggingMiddleware logs all incoming requests.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
