package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/llm"
	"jobscout/internal/logging"
	"jobscout/internal/store"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
	}
	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler reports whether the service can accept discovery
// runs. The store must be reachable; a degraded LLM only disables
// text-extraction boards, so it is reported but not fatal.
func ReadinessHandler(st store.Store, llmManager *llm.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}
		status := http.StatusOK
		overall := "ready"

		if err := st.Ping(c.Request().Context()); err != nil {
			checks["store"] = "unreachable: " + err.Error()
			status = http.StatusServiceUnavailable
			overall = "not_ready"
		} else {
			checks["store"] = "ok"
		}

		if llmManager.IsHealthy() {
			checks["llm"] = "ok"
		} else {
			checks["llm"] = "degraded"
		}

		return c.JSON(status, models.HealthResponse{
			Status:    overall,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// StatusHandler provides detailed service status
func StatusHandler(st store.Store, llmManager *llm.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api": "operational",
			"llm": llmManager.GetProviderName(),
		}
		if err := st.Ping(c.Request().Context()); err != nil {
			checks["store"] = "unreachable"
		} else {
			checks["store"] = "operational"
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}
