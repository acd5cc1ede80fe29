package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"congestion-toll-backend/config"
	"congestion-toll-backend/internal/api"
	"congestion-toll-backend/internal/db"
	"congestion-toll-backend/internal/store"
	"congestion-toll-backend/internal/toll"
)

func main() {
	logger := log.New(os.Stdout, "congestion-toll ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	appStore, closeStore, err := openStore(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize %s store: %v", cfg.Database.Driver, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Printf("failed to close store: %v", err)
		}
	}()
	logger.Printf("%s store initialized", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Seed(ctx, appStore, cfg.Seed); err != nil {
		logger.Fatalf("failed to seed store: %v", err)
	}

	calculator := toll.NewCalculator(appStore, appStore, appStore, toll.Policy{
		DailyCap: cfg.Toll.DailyCap,
		Window:   time.Duration(cfg.Toll.HourlyWindowMinutes) * time.Minute,
	})

	router := api.NewRouter(appStore, calculator, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("HTTP server starting on port %d (timezone %s)", cfg.Server.Port, cfg.Toll.Location)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Println("Shutdown signal received, stopping services...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server Shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Printf("server stopped with error: %v", err)
		return
	}
	logger.Println("Server gracefully stopped")
}

// openStore builds the backend named by cfg.Driver. The returned func
// releases it.
func openStore(cfg *config.DatabaseConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), func() error { return nil }, nil
	case config.DriverBolt:
		return store.OpenBoltStore(cfg.BoltPath)
	default:
		gormDB, err := db.Init(cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewGormStore(gormDB), sqlDB.Close, nil
	}
}
