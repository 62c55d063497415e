package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"currency-converter-api/internal/api"
	"currency-converter-api/internal/cache"
	"currency-converter-api/internal/config"
	"currency-converter-api/internal/logger"
	"currency-converter-api/internal/platform"
	"currency-converter-api/internal/ratelimit"
	"currency-converter-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)

	// Wiring: upstream client, response cache, rate limiter, handlers
	exchangeClient := service.NewFrankfurterClient(cfg, appLogger)
	responseCache := cache.NewMemoryCache()
	rateLimiter := ratelimit.NewLimiter(cfg, appLogger)

	handlers := api.NewHandlers(api.HandlerConfig{
		Logger:      appLogger,
		Config:      cfg,
		Client:      exchangeClient,
		Cache:       responseCache,
		RateLimiter: rateLimiter,
	})

	router := handlers.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		appLogger.Info("Starting currency converter on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	shutdownCtx, stop := platform.NewShutdownContext(context.Background())
	defer stop()
	<-shutdownCtx.Done()

	appLogger.Info("Shutting down server...")

	rateLimiter.Stop()
	responseCache.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}
