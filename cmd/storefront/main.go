// cmd/storefront/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/session"
	"github.com/your-org/storefront/internal/infrastructure/api"
	"github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/interfaces/http"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg)
	logr.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	m := metrics.New()

	// Redis is optional: tokens and product cache fall back to memory
	var (
		redisClient *redis.Client
		tokens      auth.TokenStore = auth.NewMemoryTokenStore()
		cache       product.Cache
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(cfg, logr)
		if err != nil {
			logr.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()

		tokens = auth.NewRedisTokenStore(redisClient.GetClient(), cfg.Redis.SessionTTL)
		cache = redisClient
	}

	client := api.NewClient(cfg.API, logr)
	products := product.NewService(client, cache, cfg.Redis.ProductCacheTTL, logr)

	registry := session.NewRegistry(session.Dependencies{
		Backend: func(src func(ctx context.Context) (string, error)) session.Backend {
			return client.WithToken(src)
		},
		Products: products.Fresh(),
		Tokens:   tokens,
		Recorder: m,
		Logger:   logr,
	}, cfg)

	ctx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go registry.Run(ctx)

	server := http.NewServer(cfg, registry, products, redisClient, m, logr)

	go func() {
		if err := server.Start(); err != nil {
			logr.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	logr.Info("✅ All systems operational!")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("👋 Shutting down gracefully...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logr.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logr.Info("✅ Server shutdown completed")
}
