package boards

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Strategy names how a board's results are retrieved
type Strategy string

const (
	// StrategyExtract requests the page through the scraping API with a
	// structured extraction schema, optionally paginating.
	StrategyExtract Strategy = "extract"

	// StrategyMarkdown fetches the page as markdown and has an LLM pull
	// listing stubs out of the text.
	StrategyMarkdown Strategy = "markdown"

	// StrategyRendered drives a headless browser for boards that only
	// populate results client-side, then extracts from the page text.
	StrategyRendered Strategy = "rendered"

	// StrategyUnsupported marks boards that cannot be scraped (auth
	// walls, bot blocking). Tasks against them return empty immediately.
	StrategyUnsupported Strategy = "unsupported"
)

// Board describes one external job board and how to search it
type Board struct {
	ID          string
	Name        string
	Region      string // "ch", "global"
	Specialized bool   // focused on engineering/ML roles
	Strategy    Strategy
	Paginated   bool
	PageParam   string
	Timeout     time.Duration

	buildURL func(query, location string) string
}

// SearchURL builds the board's search URL for a query and optional location
func (b Board) SearchURL(query, location string) string {
	if b.buildURL == nil {
		return ""
	}
	return b.buildURL(query, location)
}

// PageURL appends the board's page parameter to a search URL
func (b Board) PageURL(searchURL string, page int) string {
	if !b.Paginated || page <= 1 {
		return searchURL
	}
	sep := "?"
	if strings.Contains(searchURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%d", searchURL, sep, b.PageParam, page)
}

// Supported reports whether the board can actually be scraped
func (b Board) Supported() bool {
	return b.Strategy != StrategyUnsupported
}

var catalog = []Board{
	{
		ID:          "swissdevjobs",
		Name:        "SwissDevJobs",
		Region:      "ch",
		Specialized: true,
		Strategy:    StrategyExtract,
		Paginated:   true,
		PageParam:   "page",
		Timeout:     60 * time.Second,
		buildURL: func(query, location string) string {
			u := "https://swissdevjobs.ch/jobs/search?technology=" + url.QueryEscape(query)
			if location != "" {
				u += "&location=" + url.QueryEscape(cityOf(location))
			}
			return u
		},
	},
	{
		ID:       "jobsch",
		Name:     "Jobs.ch",
		Region:   "ch",
		Strategy: StrategyExtract,
		Timeout:  60 * time.Second,
		buildURL: func(query, location string) string {
			u := "https://www.jobs.ch/en/vacancies/?term=" + url.QueryEscape(query)
			if location != "" {
				u += "&location=" + url.QueryEscape(cityOf(location))
			}
			return u
		},
	},
	{
		ID:       "jobup",
		Name:     "JobUp",
		Region:   "ch",
		Strategy: StrategyMarkdown,
		Timeout:  45 * time.Second,
		buildURL: func(query, location string) string {
			u := "https://www.jobup.ch/en/jobs/?term=" + url.QueryEscape(query)
			if location != "" {
				u += "&location=" + url.QueryEscape(cityOf(location))
			}
			return u
		},
	},
	{
		ID:          "remoteok",
		Name:        "RemoteOK",
		Region:      "global",
		Specialized: true,
		Strategy:    StrategyMarkdown,
		Timeout:     45 * time.Second,
		buildURL: func(query, _ string) string {
			// RemoteOK routes searches through slugged paths
			slug := strings.ToLower(strings.Join(strings.Fields(query), "-"))
			return "https://remoteok.com/remote-" + url.PathEscape(slug) + "-jobs"
		},
	},
	{
		ID:       "weworkremotely",
		Name:     "We Work Remotely",
		Region:   "global",
		Strategy: StrategyRendered,
		Timeout:  90 * time.Second,
		buildURL: func(query, _ string) string {
			return "https://weworkremotely.com/remote-jobs/search?term=" + url.QueryEscape(query)
		},
	},
	{
		ID:       "linkedin",
		Name:     "LinkedIn",
		Region:   "global",
		Strategy: StrategyUnsupported, // auth-walled interactive UI
		buildURL: func(query, location string) string {
			u := "https://www.linkedin.com/jobs/search/?keywords=" + url.QueryEscape(query)
			if location != "" {
				u += "&location=" + url.QueryEscape(location)
			}
			return u
		},
	},
	{
		ID:       "indeed",
		Name:     "Indeed",
		Region:   "global",
		Strategy: StrategyUnsupported, // aggressive bot blocking on the public endpoint
		buildURL: func(query, location string) string {
			u := "https://www.indeed.com/jobs?q=" + url.QueryEscape(query)
			if location != "" {
				u += "&l=" + url.QueryEscape(location)
			}
			return u
		},
	},
}

// All returns the full board catalog in declaration order
func All() []Board {
	out := make([]Board, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks a board up by id
func Get(id string) (Board, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Board{}, false
}

// cityOf reduces "Zurich, Switzerland" to "Zurich" for boards whose
// location filter only accepts a city
func cityOf(location string) string {
	if i := strings.Index(location, ","); i >= 0 {
		return strings.TrimSpace(location[:i])
	}
	return strings.TrimSpace(location)
}
