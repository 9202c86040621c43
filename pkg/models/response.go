package models

import "time"

// DiscoverResponse wraps the plan returned by the discover endpoint
type DiscoverResponse struct {
	Success bool        `json:"success"`
	Plan    *ScrapePlan `json:"plan"`
}

// ListingsResponse is the stored-listings query response
type ListingsResponse struct {
	Listings []EnhancedJobListing `json:"listings"`
	Count    int                  `json:"count"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse is the generic API error envelope
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
