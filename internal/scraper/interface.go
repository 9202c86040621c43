package scraper

import (
	"context"

	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
)

// BoardScraper defines the interface for all scraping engines
type BoardScraper interface {
	// Search runs one query against a board and returns the listings
	// found on its results page(s)
	Search(ctx context.Context, board boards.Board, query models.SearchQuery) ([]models.JobListing, error)

	// Cleanup releases any resources used by the scraper
	Cleanup()

	// IsHealthy returns true if the scraper is ready to process tasks
	IsHealthy() bool
}

// ScraperFactory creates scrapers keyed by board strategy
type ScraperFactory interface {
	// ScraperFor returns the scraper matching the board's strategy
	ScraperFor(board boards.Board) (BoardScraper, error)

	// Cleanup releases every scraper the factory handed out
	Cleanup()
}
