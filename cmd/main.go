package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wealth-one/wealth_service/internal/api/routes"
	"github.com/wealth-one/wealth_service/internal/infrastructure/cache"
	"github.com/wealth-one/wealth_service/internal/infrastructure/config"
	"github.com/wealth-one/wealth_service/internal/infrastructure/database"
	"github.com/wealth-one/wealth_service/internal/infrastructure/di"
	"github.com/wealth-one/wealth_service/internal/workers/pricerefresh"
	"github.com/wealth-one/wealth_service/pkg/logger"
	"github.com/wealth-one/wealth_service/pkg/tracing"
	"github.com/wealth-one/wealth_service/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	log.Infow("Starting wealth service",
		"version", version.Version,
		"environment", cfg.Environment,
	)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "wealth-service",
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	log.Info("Database migrations applied")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	container := di.New(cfg, log, db, redisClient)

	refresher := pricerefresh.NewScheduler(cfg.Markets.RefreshCron, log.Zap())
	refresher.Register(container.CryptoPrices.Class(), container.CryptoPrices, container.TransactionRepo)
	refresher.Register(container.StockPrices.Class(), container.StockPrices, container.HoldingRepo)
	if err := refresher.Start(); err != nil {
		log.Fatal("Failed to start price refresh scheduler", "error", err)
	}

	router := routes.SetupRoutes(container)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Infow("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Forced server shutdown", "error", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Errorw("Failed to flush traces", "error", err)
	}

	log.Info("Shutdown complete")
}
