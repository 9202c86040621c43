package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobscout/internal/api/handlers"
	"jobscout/internal/api/middleware"
	"jobscout/internal/config"
	"jobscout/internal/llm"
	"jobscout/internal/pipeline"
	"jobscout/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, pipe *pipeline.Pipeline, st store.Store, llmManager *llm.Manager, profiles *pipeline.ProfileCache) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Discovery runs outlive a request timeout; only non-streaming
	// endpoints get the response deadline
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.WriteTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(st, llmManager))
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(st, llmManager))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/discover", handlers.DiscoverHandler(pipe, profiles))
		v1.POST("/discover/stream", handlers.DiscoverStreamHandler(pipe, profiles))

		plans := v1.Group("/plans")
		{
			plans.GET("/current", handlers.CurrentPlanHandler(st))
			plans.GET("/history", handlers.PlanHistoryHandler(st))
		}

		listings := v1.Group("/listings")
		{
			listings.GET("", handlers.GetListingsHandler(st))
			listings.PATCH("/:id", handlers.UpdateListingHandler(st))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "JobScout Discovery Service",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
