package scraper

import (
	"context"
	"fmt"
	"sync"

	"jobscout/internal/config"
	"jobscout/internal/llm"
	"jobscout/internal/logging"
	"jobscout/internal/scraper/boards"
	"jobscout/internal/scraper/engines/extract"
	"jobscout/internal/scraper/engines/markdown"
	"jobscout/internal/scraper/engines/rendered"
	"jobscout/pkg/models"
)

// DefaultScraperFactory implements ScraperFactory. Scrapers are created
// lazily and shared across tasks.
type DefaultScraperFactory struct {
	config     *config.Config
	llmManager *llm.Manager
	limiter    *RateLimiter

	mu       sync.Mutex
	scrapers map[boards.Strategy]BoardScraper
}

// NewScraperFactory creates a new scraper factory
func NewScraperFactory(cfg *config.Config, llmManager *llm.Manager, limiter *RateLimiter) ScraperFactory {
	return &DefaultScraperFactory{
		config:     cfg,
		llmManager: llmManager,
		limiter:    limiter,
		scrapers:   make(map[boards.Strategy]BoardScraper),
	}
}

// ScraperFor returns the scraper matching the board's strategy
func (f *DefaultScraperFactory) ScraperFor(board boards.Board) (BoardScraper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.scrapers[board.Strategy]; ok {
		return s, nil
	}

	var s BoardScraper
	switch board.Strategy {
	case boards.StrategyExtract:
		s = newRateLimited(extract.NewScraper(f.config), f.limiter)
	case boards.StrategyMarkdown:
		s = newRateLimited(markdown.NewScraper(f.config, f.llmManager), f.limiter)
	case boards.StrategyRendered:
		s = newRateLimited(rendered.NewScraper(f.config, f.llmManager), f.limiter)
	case boards.StrategyUnsupported:
		s = newUnsupportedScraper()
	default:
		return nil, fmt.Errorf("unsupported scraping strategy: %s", board.Strategy)
	}

	f.scrapers[board.Strategy] = s
	return s, nil
}

// Cleanup releases every scraper the factory handed out
func (f *DefaultScraperFactory) Cleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.scrapers {
		s.Cleanup()
	}
	f.scrapers = make(map[boards.Strategy]BoardScraper)
}

// rateLimitedScraper wraps an engine with the per-board rate limiter
// and circuit breaker
type rateLimitedScraper struct {
	inner   BoardScraper
	limiter *RateLimiter
}

func newRateLimited(inner BoardScraper, limiter *RateLimiter) BoardScraper {
	if limiter == nil {
		return inner
	}
	return &rateLimitedScraper{inner: inner, limiter: limiter}
}

func (rs *rateLimitedScraper) Search(ctx context.Context, board boards.Board, query models.SearchQuery) ([]models.JobListing, error) {
	if !rs.limiter.Allow(board.ID) {
		return nil, fmt.Errorf("rate limit exceeded for board %s", board.ID)
	}

	listings, err := rs.inner.Search(ctx, board, query)
	if err != nil {
		rs.limiter.RecordFailure(board.ID, err)
		return nil, err
	}
	rs.limiter.RecordSuccess(board.ID)
	return listings, nil
}

func (rs *rateLimitedScraper) Cleanup() {
	rs.inner.Cleanup()
}

func (rs *rateLimitedScraper) IsHealthy() bool {
	return rs.inner.IsHealthy()
}

// unsupportedScraper answers for boards that cannot be scraped. Tasks
// against them complete immediately with zero listings.
type unsupportedScraper struct {
	logger logging.Logger
}

func newUnsupportedScraper() BoardScraper {
	return &unsupportedScraper{logger: logging.GetGlobalLogger()}
}

func (us *unsupportedScraper) Search(_ context.Context, board boards.Board, query models.SearchQuery) ([]models.JobListing, error) {
	us.logger.Info("Skipping unsupported board", map[string]interface{}{
		"board": board.ID,
		"query": query.Query,
	})
	return []models.JobListing{}, nil
}

func (us *unsupportedScraper) Cleanup() {}

func (us *unsupportedScraper) IsHealthy() bool { return true }
