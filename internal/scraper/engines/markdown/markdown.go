package markdown

import (
	"context"
	"fmt"
	"time"

	"github.com/mendableai/firecrawl-go"

	"jobscout/internal/config"
	"jobscout/internal/llm"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Scraper fetches a board's search-results page as markdown through
// Firecrawl and has the LLM pull listing stubs out of the text. Used
// for boards whose markup is too irregular for schema extraction.
type Scraper struct {
	config     *config.Config
	llmManager *llm.Manager
	app        *firecrawl.FirecrawlApp
	logger     types.Logger
}

// NewScraper creates a new markdown scraper instance
func NewScraper(cfg *config.Config, llmManager *llm.Manager) *Scraper {
	logger := logging.GetGlobalLogger()

	app, err := firecrawl.NewFirecrawlApp(
		cfg.Firecrawl.APIKey,
		cfg.Firecrawl.APIURL,
	)
	if err != nil {
		logger.Error("Failed to initialize Firecrawl", map[string]interface{}{
			"error": err.Error(),
		})
		return &Scraper{config: cfg, llmManager: llmManager, logger: logger}
	}

	return &Scraper{
		config:     cfg,
		llmManager: llmManager,
		app:        app,
		logger:     logger,
	}
}

// Search scrapes the board's results page as markdown and extracts
// listing stubs from the text
func (s *Scraper) Search(ctx context.Context, board boards.Board, query models.SearchQuery) ([]models.JobListing, error) {
	if s.app == nil {
		return nil, fmt.Errorf("firecrawl app not initialized")
	}

	searchURL := board.SearchURL(query.Query, query.Location)
	if searchURL == "" {
		return nil, fmt.Errorf("board %s produced no search URL", board.ID)
	}

	content, err := s.scrapeMarkdown(ctx, searchURL)
	if err != nil {
		return nil, utils.NewScrapingError(fmt.Sprintf("scraping %s failed: %v", board.ID, err))
	}

	extractCtx, cancel := context.WithTimeout(ctx, board.Timeout)
	defer cancel()

	listings, err := s.llmManager.ExtractListings(extractCtx, content, board.ID, s.config.LLM.MaxListings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract listings from markdown: %w", err)
	}

	s.logger.Info("Board search completed", map[string]interface{}{
		"board":    board.ID,
		"query":    query.Query,
		"listings": len(listings),
	})
	return listings, nil
}

// scrapeMarkdown performs the actual Firecrawl scrape with retries
func (s *Scraper) scrapeMarkdown(ctx context.Context, url string) (string, error) {
	scrapeParams := &firecrawl.ScrapeParams{
		Formats: []string{"markdown"},
	}

	var result *firecrawl.FirecrawlDocument
	var err error
	for attempt := 1; attempt <= s.config.Firecrawl.MaxRetries; attempt++ {
		result, err = s.app.ScrapeURL(url, scrapeParams)
		if err == nil {
			break
		}

		s.logger.Debug("Firecrawl scrape attempt failed", map[string]interface{}{
			"attempt": attempt,
			"url":     url,
			"error":   err.Error(),
		})

		if attempt < s.config.Firecrawl.MaxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("firecrawl scraping failed after %d attempts: %w", s.config.Firecrawl.MaxRetries, err)
	}
	if result == nil {
		return "", fmt.Errorf("no result returned from Firecrawl")
	}

	if result.Markdown != "" {
		return result.Markdown, nil
	}
	if result.HTML != "" {
		return result.HTML, nil
	}
	return "", fmt.Errorf("no content found in Firecrawl response")
}

// Cleanup releases any resources used by the scraper
func (s *Scraper) Cleanup() {
	s.logger.Debug("Cleaning up markdown scraper resources")
}

// IsHealthy checks if the scraper is ready to process requests
func (s *Scraper) IsHealthy() bool {
	return s.app != nil && s.config.Firecrawl.APIKey != "" && s.llmManager.IsHealthy()
}
