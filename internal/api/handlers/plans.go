package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/store"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// CurrentPlanHandler returns the user's most recent scrape plan
func CurrentPlanHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		userID := c.QueryParam("user")
		if userID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "missing_user",
				Message:   "user query parameter is required",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		plan, err := st.GetCurrentScrapePlan(c.Request().Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNoPlan) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "no_plan",
					Message:   "No scrape plan recorded for this user",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, plan)
	}
}

// PlanHistoryHandler returns the user's finished runs, most recent
// first
func PlanHistoryHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		userID := c.QueryParam("user")
		if userID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "missing_user",
				Message:   "user query parameter is required",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		history, err := st.GetHistory(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"history": history,
			"count":   len(history),
		})
	}
}
