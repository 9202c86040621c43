package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Scraper retrieves search-results pages through the Firecrawl v2
// scrape API with a structured extraction schema. Boards whose result
// markup is stable enough for schema extraction use this engine.
type Scraper struct {
	config *config.Config
	client *http.Client
	logger types.Logger
}

// NewScraper creates a new schema-extraction scraper
func NewScraper(cfg *config.Config) *Scraper {
	return &Scraper{
		config: cfg,
		client: &http.Client{Timeout: cfg.Firecrawl.Timeout},
		logger: logging.GetGlobalLogger(),
	}
}

// extractedListing is the JSON shape the extraction schema asks for
type extractedListing struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	TechStack      []string `json:"tech_stack"`
	EmploymentType string   `json:"employment_type"`
	PostedDate     string   `json:"posted_date"`
	ApplicationURL string   `json:"application_url"`
	Salary         struct {
		Currency string  `json:"currency"`
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Period   string  `json:"period"`
	} `json:"salary"`
}

// Search runs one query against a board, paginating until the target
// number of listings is reached or pages stop yielding new ones
func (s *Scraper) Search(ctx context.Context, board boards.Board, query models.SearchQuery) ([]models.JobListing, error) {
	searchURL := board.SearchURL(query.Query, query.Location)
	if searchURL == "" {
		return nil, fmt.Errorf("board %s produced no search URL", board.ID)
	}

	maxPages := 1
	if board.Paginated && s.config.Firecrawl.MaxPages > maxPages {
		maxPages = s.config.Firecrawl.MaxPages
	}

	var listings []models.JobListing
	seen := make(map[string]bool)

	for page := 1; page <= maxPages; page++ {
		pageURL := board.PageURL(searchURL, page)

		pageCtx, cancel := context.WithTimeout(ctx, board.Timeout)
		extracted, err := s.extractPage(pageCtx, pageURL)
		cancel()
		if err != nil {
			if page == 1 {
				return nil, utils.NewScrapingError(fmt.Sprintf("extracting %s failed: %v", board.ID, err))
			}
			// Later pages failing is not fatal; keep what we have
			s.logger.Warn("Pagination stopped early", map[string]interface{}{
				"board": board.ID,
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		added := 0
		now := time.Now()
		for _, e := range extracted {
			if strings.TrimSpace(e.Title) == "" {
				continue
			}
			key := strings.ToLower(e.Company + "|" + e.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			listings = append(listings, s.toListing(e, board, now))
			added++
		}

		s.logger.Debug("Extracted search-results page", map[string]interface{}{
			"board": board.ID,
			"page":  page,
			"found": len(extracted),
			"new":   added,
		})

		if added == 0 || len(listings) >= s.config.Firecrawl.TargetJobs {
			break
		}
	}

	s.logger.Info("Board search completed", map[string]interface{}{
		"board":    board.ID,
		"query":    query.Query,
		"listings": len(listings),
	})
	return listings, nil
}

// extractPage calls the v2 scrape endpoint with the listing schema and
// retries transient failures
func (s *Scraper) extractPage(ctx context.Context, pageURL string) ([]extractedListing, error) {
	base := strings.TrimRight(s.config.Firecrawl.APIURL, "/")
	endpoint := base + "/v2/scrape"

	payload := map[string]interface{}{
		"url":             pageURL,
		"onlyMainContent": true,
		"formats": []map[string]interface{}{
			{
				"type":   "json",
				"schema": s.listingSchema(),
			},
		},
	}
	bodyBytes, _ := json.Marshal(payload)

	var lastErr error
	for attempt := 1; attempt <= s.config.Firecrawl.MaxRetries; attempt++ {
		extracted, err := s.doExtract(ctx, endpoint, bodyBytes)
		if err == nil {
			return extracted, nil
		}
		lastErr = err

		s.logger.Debug("Extract attempt failed", map[string]interface{}{
			"attempt": attempt,
			"url":     pageURL,
			"error":   err.Error(),
		})

		if attempt < s.config.Firecrawl.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return nil, fmt.Errorf("extraction failed after %d attempts: %w", s.config.Firecrawl.MaxRetries, lastErr)
}

func (s *Scraper) doExtract(ctx context.Context, endpoint string, body []byte) ([]extractedListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.Firecrawl.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.Firecrawl.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extract request returned status %d", resp.StatusCode)
	}

	var root interface{}
	if err := json.Unmarshal(respBody, &root); err != nil {
		return nil, fmt.Errorf("failed to parse extract response: %w", err)
	}

	arr := findListingsArray(root)
	if arr == nil {
		return nil, fmt.Errorf("extract response did not contain a listings array")
	}

	arrBytes, _ := json.Marshal(arr)
	var extracted []extractedListing
	if err := json.Unmarshal(arrBytes, &extracted); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extracted listings: %w", err)
	}
	return extracted, nil
}

// findListingsArray walks arbitrary JSON and returns the first array
// under a "listings" key, or the first array of objects with a title
// field
func findListingsArray(v interface{}) []interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if arr, ok := t["listings"].([]interface{}); ok {
			return arr
		}
		for _, child := range t {
			if arr := findListingsArray(child); arr != nil {
				return arr
			}
		}
	case []interface{}:
		if len(t) > 0 {
			if m, ok := t[0].(map[string]interface{}); ok {
				if _, hasTitle := m["title"]; hasTitle {
					return t
				}
			}
		}
		for _, item := range t {
			if arr := findListingsArray(item); arr != nil {
				return arr
			}
		}
	}
	return nil
}

func (s *Scraper) toListing(e extractedListing, board boards.Board, scrapedAt time.Time) models.JobListing {
	listing := models.JobListing{
		Title:          e.Title,
		Company:        e.Company,
		Location:       e.Location,
		Description:    e.Description,
		Requirements:   e.Requirements,
		TechStack:      e.TechStack,
		EmploymentType: models.EmploymentType(strings.ToLower(e.EmploymentType)),
		PostedDate:     e.PostedDate,
		ApplicationURL: e.ApplicationURL,
		SourceSite:     board.ID,
		ScrapedAt:      scrapedAt,
	}
	if e.Salary.Min > 0 || e.Salary.Max > 0 {
		listing.Salary = models.SalaryRange{
			Min:      int(e.Salary.Min),
			Max:      int(e.Salary.Max),
			Currency: strings.ToUpper(e.Salary.Currency),
			Period:   models.SalaryPeriod(strings.ToLower(e.Salary.Period)),
		}
	}
	return listing
}

func (s *Scraper) listingSchema() map[string]interface{} {
	var schema map[string]interface{}
	_ = json.Unmarshal([]byte(listingExtractionSchema), &schema)
	return schema
}

// Cleanup releases any resources used by the scraper
func (s *Scraper) Cleanup() {
	s.logger.Debug("Cleaning up extract scraper resources")
}

// IsHealthy checks if the scraper is ready to process requests
func (s *Scraper) IsHealthy() bool {
	return s.config.Firecrawl.APIKey != ""
}

const listingExtractionSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["listings"],
  "properties": {
    "listings": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["title", "company"],
        "properties": {
          "title": { "type": "string" },
          "company": { "type": "string" },
          "location": { "type": "string" },
          "description": { "type": "string" },
          "requirements": { "type": "array", "items": { "type": "string" } },
          "tech_stack": { "type": "array", "items": { "type": "string" } },
          "employment_type": { "type": "string" },
          "posted_date": { "type": "string" },
          "application_url": { "type": "string", "format": "uri" },
          "salary": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "currency": { "type": "string" },
              "min": { "type": "number" },
              "max": { "type": "number" },
              "period": { "type": "string" }
            }
          }
        }
      }
    }
  }
}`
