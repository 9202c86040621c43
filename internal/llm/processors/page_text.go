package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageTextExtractor reduces a job board's search-results HTML to plain
// text suitable for LLM extraction
type PageTextExtractor struct {
	removeTags      []string
	resultSelectors []string
}

// NewPageTextExtractor creates an extractor tuned for search-results
// pages
func NewPageTextExtractor() *PageTextExtractor {
	return &PageTextExtractor{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "title", "base",
		},
		resultSelectors: []string{
			// Common result-list containers
			"main", "[role='main']", "#main", ".main",
			".jobs", ".job-list", ".job-listings", ".search-results",
			".results", ".listings", ".vacancies",
			// Individual result cards
			"article", "li[class*='job']", "div[class*='job-card']",
			"[data-testid*='job']", "[data-test*='job']",
		},
	}
}

var (
	extraWhitespace = regexp.MustCompile(`[ \t]+`)
	extraNewlines   = regexp.MustCompile(`\n{3,}`)

	// Boilerplate that wastes extraction tokens
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bjavascript\s+is\s+disabled\b[^.]*\.`),
		regexp.MustCompile(`(?i)\bplease\s+enable\s+(javascript|cookies)\b[^.]*\.?`),
		regexp.MustCompile(`(?i)\baccept\s+(all\s+)?cookies\b[^.]*\.?`),
	}
)

// ExtractResultsText pulls the text of the search-result area out of a
// page, falling back to the whole body when no known container matches
func (pe *PageTextExtractor) ExtractResultsText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range pe.removeTags {
		doc.Find(tag).Remove()
	}

	var parts []string
	seen := make(map[string]bool)
	for _, selector := range pe.resultSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 50 && !seen[text] {
				seen[text] = true
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			break
		}
	}

	if len(parts) == 0 {
		parts = append(parts, doc.Find("body").Text())
	}

	return pe.cleanText(strings.Join(parts, "\n\n")), nil
}

func (pe *PageTextExtractor) cleanText(text string) string {
	text = extraWhitespace.ReplaceAllString(text, " ")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	for _, pattern := range noisePatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// ApproxTokens estimates the token count of extracted text
func (pe *PageTextExtractor) ApproxTokens(text string) int {
	return len(text) / 4
}
