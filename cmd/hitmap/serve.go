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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/config"
	"github.com/kailas-cloud/hitmap/internal/converter"
	"github.com/kailas-cloud/hitmap/internal/db/elastic"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/metrics"
	chiTransport "github.com/kailas-cloud/hitmap/internal/transport/chi"
	healthuc "github.com/kailas-cloud/hitmap/internal/usecase/health"
	searchuc "github.com/kailas-cloud/hitmap/internal/usecase/search"
	"github.com/kailas-cloud/hitmap/internal/version"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), cfg, g.env, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting hitmap API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
	)

	registry, err := mapping.FromConfig(cfg.Mapping, nil, logger)
	if err != nil {
		return fmt.Errorf("build type registry: %w", err)
	}
	logger.Info("Type mapping loaded", zap.Strings("types", registry.Types()))

	store, err := elastic.NewStore(elastic.Config{
		Addrs:    cfg.Elasticsearch.Addrs,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
	})
	if err != nil {
		return fmt.Errorf("create search store: %w", err)
	}
	defer store.Close()

	readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("search backend not ready: %w", err)
	}
	logger.Info("Connected to search backend")

	// Register metrics explicitly (no init())
	metrics.Register()

	conv := converter.NewInstrumented(converter.New(), logger)
	searchSvc := searchuc.New(store, registry, conv, cfg.AggregationPrefix())
	healthSvc := healthuc.New(store, registry)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger, int64(cfg.HTTP.MaxBodyBytes))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
