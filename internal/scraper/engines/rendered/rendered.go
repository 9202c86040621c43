package rendered

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"jobscout/internal/config"
	"jobscout/internal/llm"
	"jobscout/internal/llm/processors"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Scraper drives a headless browser for boards that only populate
// their results client-side. The rendered page text is handed to the
// LLM for stub extraction.
type Scraper struct {
	config     *config.Config
	llmManager *llm.Manager
	extractor  *processors.PageTextExtractor
	logger     types.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewScraper creates a new rendered-page scraper. The browser is
// launched lazily on first use.
func NewScraper(cfg *config.Config, llmManager *llm.Manager) *Scraper {
	return &Scraper{
		config:     cfg,
		llmManager: llmManager,
		extractor:  processors.NewPageTextExtractor(),
		logger:     logging.GetGlobalLogger(),
	}
}

// Search renders the board's results page and extracts listing stubs
// from its text
func (s *Scraper) Search(ctx context.Context, board boards.Board, query models.SearchQuery) ([]models.JobListing, error) {
	searchURL := board.SearchURL(query.Query, query.Location)
	if searchURL == "" {
		return nil, fmt.Errorf("board %s produced no search URL", board.ID)
	}

	html, err := s.renderPage(ctx, searchURL, board.Timeout)
	if err != nil {
		return nil, utils.NewScrapingError(fmt.Sprintf("rendering %s failed: %v", board.ID, err))
	}

	text, err := s.extractor.ExtractResultsText(html)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page text: %w", err)
	}
	s.logger.Debug("Rendered page text extracted", map[string]interface{}{
		"board":         board.ID,
		"approx_tokens": s.extractor.ApproxTokens(text),
	})

	extractCtx, cancel := context.WithTimeout(ctx, board.Timeout)
	defer cancel()

	listings, err := s.llmManager.ExtractListings(extractCtx, text, board.ID, s.config.LLM.MaxListings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract listings from rendered page: %w", err)
	}

	s.logger.Info("Board search completed", map[string]interface{}{
		"board":    board.ID,
		"query":    query.Query,
		"listings": len(listings),
	})
	return listings, nil
}

// renderPage navigates a stealth page to the URL, waits for the
// client-side results to settle, and returns the final HTML
func (s *Scraper) renderPage(ctx context.Context, url string, timeout time.Duration) (string, error) {
	browser, err := s.getBrowser()
	if err != nil {
		return "", err
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("failed to create stealth page: %w", err)
	}
	defer func() {
		_ = rod.Try(func() { page.MustClose() })
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if s.config.Rendered.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: s.config.Rendered.UserAgent,
		}); err != nil {
			s.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rod.Try(func() {
		page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	}); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	// Result lists are populated after the load event fires
	select {
	case <-navCtx.Done():
		return "", navCtx.Err()
	case <-time.After(s.config.Rendered.RenderWait):
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// getBrowser launches the shared browser on first use
func (s *Scraper) getBrowser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().
		Headless(s.config.Rendered.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if s.config.Rendered.UserAgent != "" {
		l = l.Set("user-agent", s.config.Rendered.UserAgent)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s.logger.Info("Headless browser launched", map[string]interface{}{
		"headless": s.config.Rendered.HeadlessMode,
	})
	s.browser = browser
	return browser, nil
}

// Cleanup closes the shared browser
func (s *Scraper) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("Failed to close browser", map[string]interface{}{
				"error": err.Error(),
			})
		}
		s.browser = nil
	}
}

// IsHealthy checks if the scraper is ready to process requests
func (s *Scraper) IsHealthy() bool {
	return s.llmManager.IsHealthy()
}
