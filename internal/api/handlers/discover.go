package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobscout/internal/logging"
	"jobscout/internal/pipeline"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

var validate = validator.New()

// DiscoverHandler starts a discovery run for the submitted profile.
// With execute=false the plan is created and returned without running.
func DiscoverHandler(pipe *pipeline.Pipeline, profiles *pipeline.ProfileCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		req, errResp := bindDiscoverRequest(c, requestID)
		if errResp != nil {
			return errResp
		}

		profiles.Put(&req.Profile)
		logger.Info("Discovery request received", map[string]interface{}{
			"request_id": requestID,
			"user":       req.Profile.UserID,
			"mode":       string(req.Mode),
			"execute":    req.Execute,
		})

		if !req.Execute {
			plan := pipe.CreatePlan(&req.Profile, req.Mode)
			return c.JSON(http.StatusOK, models.DiscoverResponse{Success: true, Plan: plan})
		}

		plan, err := pipe.Discover(c.Request().Context(), &req.Profile, req.Mode, pipeline.NopSink)
		if err != nil {
			logger.Error("Discovery run failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "discovery_failed",
				Message:   fmt.Sprintf("Discovery run failed: %v", err),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.DiscoverResponse{Success: true, Plan: plan})
	}
}

// DiscoverStreamHandler runs discovery while streaming progress events
// over SSE. The stream ends after the complete or error event.
func DiscoverStreamHandler(pipe *pipeline.Pipeline, profiles *pipeline.ProfileCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		req, errResp := bindDiscoverRequest(c, requestID)
		if errResp != nil {
			return errResp
		}

		profiles.Put(&req.Profile)
		logger.Info("Discovery stream started", map[string]interface{}{
			"request_id": requestID,
			"user":       req.Profile.UserID,
			"mode":       string(req.Mode),
		})

		resp := c.Response()
		resp.Header().Set(echo.HeaderContentType, "text/event-stream")
		resp.Header().Set("Cache-Control", "no-cache")
		resp.Header().Set("Connection", "keep-alive")
		resp.WriteHeader(http.StatusOK)

		// Events arrive from worker goroutines; writes must not
		// interleave
		var mu sync.Mutex
		sink := func(event models.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()

			data, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to encode progress event", map[string]interface{}{
					"request_id": requestID,
					"error":      err.Error(),
				})
				return
			}
			fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event.Type, data)
			resp.Flush()
		}

		_, err := pipe.Discover(c.Request().Context(), &req.Profile, req.Mode, sink)
		if err != nil {
			// The error event already went down the stream; nothing
			// more to send
			logger.Warn("Streamed discovery ended with error", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		}
		return nil
	}
}

// bindDiscoverRequest parses and validates the discovery payload
func bindDiscoverRequest(c echo.Context, requestID string) (*models.DiscoverRequest, error) {
	var req models.DiscoverRequest
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "invalid_request",
			Message:   "Invalid request format",
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}

	if err := validate.Struct(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "validation_failed",
			Message:   err.Error(),
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}
	return &req, nil
}
