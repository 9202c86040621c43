package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// ClaudeProvider extracts listing stubs from page text using
// Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// listingStub is the JSON shape Claude is asked to return
type listingStub struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// ExtractListings asks Claude for a bounded list of listing stubs from
// search-results text
func (cp *ClaudeProvider) ExtractListings(ctx context.Context, text, sourceSite string, limit int) ([]models.JobListing, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = cp.config.LLM.MaxListings
	}

	// Rough estimation: 3 chars per token
	maxContentLength := cp.config.LLM.MaxTokens * 3
	if len(text) > maxContentLength {
		text = text[:maxContentLength]
	}

	cp.logger.Debug("Starting listing extraction with Claude", map[string]interface{}{
		"source":      sourceSite,
		"text_length": len(text),
		"limit":       limit,
	})

	prompt := cp.buildExtractionPrompt(text, limit)

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(cp.config.LLM.Temperature),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	stubs, err := cp.parseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response: %w", err)
	}

	if len(stubs) > limit {
		stubs = stubs[:limit]
	}

	listings := make([]models.JobListing, 0, len(stubs))
	now := time.Now()
	for _, stub := range stubs {
		if strings.TrimSpace(stub.Title) == "" {
			continue
		}
		listings = append(listings, models.JobListing{
			Title:      stub.Title,
			Company:    stub.Company,
			Location:   stub.Location,
			SourceSite: sourceSite,
			ScrapedAt:  now,
		})
	}

	cp.logger.Info("Listing extraction completed", map[string]interface{}{
		"source":   sourceSite,
		"listings": len(listings),
		"duration": time.Since(startTime).String(),
	})

	return listings, nil
}

// buildExtractionPrompt creates the prompt for Claude
func (cp *ClaudeProvider) buildExtractionPrompt(content string, limit int) string {
	return fmt.Sprintf(`You are a job search results parser. The content below is the text of a job board search results page. Extract the individual job postings and return them as a JSON array.

Return at most %d entries, each with exactly these fields:

[
  {
    "title": "string - The job title",
    "company": "string - The hiring company name",
    "location": "string - The job location, or 'Remote'"
  }
]

IMPORTANT RULES:
1. Return ONLY a valid JSON array, no additional text or explanation
2. Skip navigation items, ads, and anything that is not a job posting
3. Use empty string "" for fields that are not shown
4. Do not invent postings that are not present in the content

SEARCH RESULTS CONTENT:
%s`, limit, content)
}

// parseResponse extracts the stub array from the Claude API response
func (cp *ClaudeProvider) parseResponse(response *anthropic.Message) ([]listingStub, error) {
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in Claude response")
	}

	// Strip markdown code fences if present
	responseText = strings.TrimSpace(responseText)
	if strings.HasPrefix(responseText, "```json") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	} else if strings.HasPrefix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	}

	var stubs []listingStub
	if err := json.Unmarshal([]byte(responseText), &stubs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w", err)
	}

	return stubs, nil
}

// IsHealthy checks if the Claude provider is reachable
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// Name returns the name of the LLM provider
func (cp *ClaudeProvider) Name() string {
	return "claude"
}
