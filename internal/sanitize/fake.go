package sanitize

import (
	"regexp"
	"strings"

	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// Fake-listing signal weights. The score per listing is the sum of all
// triggered signals, capped at 100.
type fakeSignal struct {
	name   string
	weight int
	hit    func(f *FakeFilter, listing models.JobListing) bool
}

// Pattern families for spam/fraud detection. Kept as data so new
// patterns can be added without touching the scoring logic.
var (
	suspiciousTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bget\s+rich\b|\bquick\s+(money|cash)\b|\bunlimited\s+(income|earnings)\b`),
		regexp.MustCompile(`(?i)earn\s+\$?\d[\d,']*\s*(per|a|/)\s*(day|week|hour)`),
		regexp.MustCompile(`(?i)no\s+(interview|experience)\s+(needed|required|necessary)`),
		regexp.MustCompile(`(?i)\bwork\s+from\s+home\b.{0,30}\bno\s+experience\b`),
		regexp.MustCompile(`(?i)hiring\s+immediately.{0,20}no\s+(interview|questions)`),
	}

	placeholderCompanyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(test|testing|asdf+|xxx+|abc|n/?a|unknown|company|confidential)$`),
		regexp.MustCompile(`(?i)lorem|ipsum|placeholder|example\s*(inc|corp|ltd)?$`),
	}

	suspiciousDescriptionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)wire\s+transfer|western\s+union|moneygram`),
		regexp.MustCompile(`(?i)(upfront|registration|training|starter)\s+fee`),
		regexp.MustCompile(`(?i)\bmlm\b|multi[\s-]?level\s+marketing|pyramid\s+(scheme|structure)`),
		regexp.MustCompile(`(?i)lorem\s+ipsum`),
		regexp.MustCompile(`(?i)recruit\s+(your\s+)?(friends|family|downline)`),
	}
)

var fakeSignals = []fakeSignal{
	{
		name:   "Suspicious title phrasing",
		weight: 30,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return matchesAny(l.Title, suspiciousTitlePatterns)
		},
	},
	{
		name:   "Placeholder company name",
		weight: 25,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return matchesAny(strings.TrimSpace(l.Company), placeholderCompanyPatterns)
		},
	},
	{
		name:   "Suspicious description phrasing",
		weight: 30,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return matchesAny(l.Description, suspiciousDescriptionPatterns)
		},
	},
	{
		name:   "Missing company",
		weight: 15,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return strings.TrimSpace(l.Company) == ""
		},
	},
	{
		name:   "Missing description",
		weight: 10,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return strings.TrimSpace(l.Description) == ""
		},
	},
	{
		name:   "Missing location",
		weight: 5,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return strings.TrimSpace(l.Location) == "" && l.RemotePolicy != models.RemoteFull
		},
	},
	{
		name:   "Missing application URL",
		weight: 10,
		hit: func(_ *FakeFilter, l models.JobListing) bool {
			return strings.TrimSpace(l.ApplicationURL) == ""
		},
	},
	{
		name:   "Unrealistically high salary",
		weight: 20,
		hit: func(f *FakeFilter, l models.JobListing) bool {
			return l.Salary.Annualized() > f.salaryCeiling
		},
	},
}

// RemovedListing is the audit record for a filtered-out listing
type RemovedListing struct {
	Listing models.JobListing `json:"listing"`
	Score   int               `json:"score"`
	Reasons []string          `json:"reasons"`
}

// FilterResult splits listings into accepted and removed sets
type FilterResult struct {
	Accepted []models.JobListing
	Removed  []RemovedListing
}

// FakeFilter scores listings for spam/fraud likelihood and removes
// those at or above the threshold
type FakeFilter struct {
	threshold     int
	salaryCeiling int
	logger        logging.Logger
}

// NewFakeFilter builds a filter. Non-positive arguments fall back to
// the reference defaults (threshold 50, ceiling 1M annualized).
func NewFakeFilter(threshold, salaryCeiling int) *FakeFilter {
	if threshold <= 0 {
		threshold = 50
	}
	if salaryCeiling <= 0 {
		salaryCeiling = 1_000_000
	}
	return &FakeFilter{
		threshold:     threshold,
		salaryCeiling: salaryCeiling,
		logger:        logging.GetGlobalLogger(),
	}
}

// Score computes the 0-100 fake score and the triggered signal names
func (f *FakeFilter) Score(listing models.JobListing) (int, []string) {
	score := 0
	var reasons []string
	for _, signal := range fakeSignals {
		if signal.hit(f, listing) {
			score += signal.weight
			reasons = append(reasons, signal.name)
		}
	}
	if score > 100 {
		score = 100
	}
	return score, reasons
}

// Filter removes listings scoring at or above the threshold. Removed
// listings are retained with their score and reasons for audit.
func (f *FakeFilter) Filter(listings []models.JobListing) FilterResult {
	result := FilterResult{Accepted: make([]models.JobListing, 0, len(listings))}
	for _, listing := range listings {
		score, reasons := f.Score(listing)
		if score >= f.threshold {
			f.logger.Info("listing removed as likely fake", map[string]interface{}{
				"title":   listing.Title,
				"company": listing.Company,
				"score":   score,
				"reasons": strings.Join(reasons, "; "),
			})
			result.Removed = append(result.Removed, RemovedListing{
				Listing: listing,
				Score:   score,
				Reasons: reasons,
			})
			continue
		}
		result.Accepted = append(result.Accepted, listing)
	}
	return result
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
