package llm

import (
	"context"

	"jobscout/pkg/models"
)

// Provider extracts job-listing stubs from unstructured page text. Used
// by the fallback retrieval strategies when structured extraction is
// unavailable for a board.
type Provider interface {
	// ExtractListings pulls a bounded list of {title, company, location}
	// stubs out of search-results text
	ExtractListings(ctx context.Context, text, sourceSite string, limit int) ([]models.JobListing, error)

	// IsHealthy checks if the provider is reachable
	IsHealthy(ctx context.Context) error

	// Name returns the provider name
	Name() string
}
