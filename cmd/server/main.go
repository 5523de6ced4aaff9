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

	"github.com/dom/vehicle-reservation/internal/api"
	"github.com/dom/vehicle-reservation/internal/cache"
	"github.com/dom/vehicle-reservation/internal/config"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/logging"
	"github.com/dom/vehicle-reservation/internal/repository/postgres"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/dom/vehicle-reservation/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL, cfg.MaxDBConns, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema migrated")
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Change events
	bus := events.NewBus(log)
	defer bus.Close()

	// View cache
	var views cache.ViewCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, cfg.ViewCacheTTL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rc.Close()
		views = rc
		log.Info("view cache enabled", zap.Duration("ttl", cfg.ViewCacheTTL))
	}

	// Initialize services
	services := service.NewServices(repos, cfg, bus, views, log)

	// Initialize WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()
	feed, err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to change events: %w", err)
	}
	go hub.Forward(ctx, feed)

	// Initialize router
	router := api.NewRouter(services, hub, cfg, log)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
