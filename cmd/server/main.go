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

	"go.uber.org/zap"

	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/logger"
	"github.com/cloud-ru/fincalc-go/internal/server"
	"github.com/cloud-ru/fincalc-go/internal/storage"
	"github.com/cloud-ru/fincalc-go/internal/tools"
	"github.com/cloud-ru/fincalc-go/internal/tracing"
	"github.com/cloud-ru/fincalc-go/internal/validators"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fincalc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L()

	shutdownTracing, err := tracing.InitTracing(cfg.OTELServiceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	structures, err := validators.BuildRateStructures(cfg, cfg.RateStructures)
	if err != nil {
		return fmt.Errorf("rate structures: %w", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("scenario store: %w", err)
	}
	defer store.Close()

	registry := tools.NewRegistry(cfg, tracing.Tracer, store, structures)

	var limiter *server.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = server.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer limiter.Stop()
	}

	router := server.NewRouter(cfg, server.NewHandler(registry, structures), limiter)
	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), router)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("fincalc server started",
			zap.Int("port", cfg.Port),
			zap.String("store", cfg.StoreBackend),
			zap.Int("rate_structures", len(structures)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
