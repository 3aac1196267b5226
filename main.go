// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catfish-cull/config"
	"catfish-cull/logger"
	"catfish-cull/services"
	"catfish-cull/store"
	"catfish-cull/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.InitLogger(cfg.LogDir, cfg.Debug); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Sync()
	logger.SetLogLevel(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Error.Printf("[main] Failed to open data source: %v", err)
		stop()
		logger.Sync()
		os.Exit(1)
	}
	defer closeRepo()

	a := newApp(ctx, cfg, repo, newMetrics(cfg))
	go a.feed.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info.Printf("[main] Listening on %s (env=%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Printf("[main] Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info.Println("[main] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn.Printf("[main] Graceful shutdown failed: %v", err)
	}
	a.displays.CloseAll()
}

// openRepository connects to Postgres when DATABASE_URL is set and falls back
// to the in-memory source otherwise.
func openRepository(ctx context.Context, cfg *config.Config) (services.Repository, func(), error) {
	if !cfg.UsesDatabase() {
		logger.Warn.Println("[openRepository] DATABASE_URL not set; using in-memory data source")
		return services.NewMemorySource(cfg.ProtestDeadline, cfg.PrizegivingTime), func() {}, nil
	}

	db, err := store.Setup(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info.Println("[openRepository] Connected to Postgres")
	return store.NewRepository(db), func() {
		if err := db.Close(); err != nil {
			logger.Warn.Printf("[openRepository] Closing database: %v", err)
		}
	}, nil
}

// newMetrics returns CloudWatch metrics when enabled, NoopMetrics otherwise.
func newMetrics(cfg *config.Config) websocket.Metrics {
	if !cfg.MetricsEnabled {
		return websocket.NoopMetrics{}
	}
	m, err := websocket.NewCloudWatchMetrics(cfg.MetricsNamespace)
	if err != nil {
		logger.Warn.Printf("[newMetrics] CloudWatch unavailable, metrics disabled: %v", err)
		return websocket.NoopMetrics{}
	}
	return m
}
