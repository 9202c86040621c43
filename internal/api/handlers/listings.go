package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/store"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// GetListingsHandler returns a user's stored listings, optionally
// filtered by minimum score and interaction status
func GetListingsHandler(st store.Store) echo.HandlerFunc {
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

		var minScore float64
		if raw := c.QueryParam("minScore"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:     "invalid_min_score",
					Message:   "minScore must be a number",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			minScore = parsed
		}
		status := models.ListingStatus(c.QueryParam("status"))

		listings, err := st.GetListings(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		filtered := make([]models.EnhancedJobListing, 0, len(listings))
		for _, listing := range listings {
			if status != "" && listing.Status != status {
				continue
			}
			if minScore > 0 && (listing.MatchScore == nil || *listing.MatchScore < minScore) {
				continue
			}
			filtered = append(filtered, listing)
		}

		return c.JSON(http.StatusOK, models.ListingsResponse{
			Listings: filtered,
			Count:    len(filtered),
		})
	}
}

// UpdateListingHandler updates the interaction state of one stored
// listing
func UpdateListingHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		userID := c.QueryParam("user")
		listingID := c.Param("id")
		if userID == "" || listingID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "missing_parameters",
				Message:   "user query parameter and listing id are required",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		var req models.UpdateListingRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		update := store.ListingUpdate{}
		if req.Status != "" {
			status := req.Status
			update.Status = &status
		}
		if req.Notes != "" {
			notes := req.Notes
			update.Notes = &notes
		}

		listing, err := st.UpdateListing(c.Request().Context(), userID, listingID, update)
		if err != nil {
			if errors.Is(err, store.ErrListingNotFound) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "listing_not_found",
					Message:   "No stored listing with that id for this user",
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

		return c.JSON(http.StatusOK, listing)
	}
}
