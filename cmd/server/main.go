package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/routes"
	"jobscout/internal/config"
	"jobscout/internal/llm"
	"jobscout/internal/logging"
	"jobscout/internal/pipeline"
	"jobscout/internal/scheduler"
	"jobscout/internal/scraper"
	"jobscout/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := logging.GetGlobalLogger()
	logger.Info("Starting JobScout discovery service")

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Fatal("Failed to start LLM manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize store
	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := st.Ping(context.Background()); err != nil {
		logger.Warn("Store not reachable at startup", map[string]interface{}{
			"backend": cfg.Store.Backend,
			"error":   err.Error(),
		})
	}

	// Initialize scraping stack and pipeline
	limiter := scraper.NewRateLimiter(cfg.Workers.RateLimit)
	factory := scraper.NewScraperFactory(cfg, llmManager, limiter)
	pipe := pipeline.New(cfg, factory, st)
	profiles := pipeline.NewProfileCache()

	// Optional periodic re-scan
	sched := scheduler.New(cfg, pipe, profiles)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, pipe, st, llmManager, profiles)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Stopping scheduler...")
		sched.Stop()

		logger.Info("Stopping scrapers...")
		factory.Cleanup()

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Closing store...")
		if err := st.Close(); err != nil {
			logger.Error("Error closing store", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": address,
	})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
