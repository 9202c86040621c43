package models

import "time"

// SalaryPeriod is the unit a salary figure is quoted in
type SalaryPeriod string

const (
	SalaryHourly  SalaryPeriod = "hourly"
	SalaryDaily   SalaryPeriod = "daily"
	SalaryMonthly SalaryPeriod = "monthly"
	SalaryYearly  SalaryPeriod = "yearly"
)

// SalaryRange is the advertised salary of a listing. Min/Max of zero
// means unknown.
type SalaryRange struct {
	Min      int          `json:"min,omitempty"`
	Max      int          `json:"max,omitempty"`
	Currency string       `json:"currency,omitempty"`
	Period   SalaryPeriod `json:"period,omitempty"`
}

// Annualized converts the upper bound of the range to a yearly figure.
// Returns 0 when the salary is unknown.
func (s SalaryRange) Annualized() int {
	amount := s.Max
	if amount == 0 {
		amount = s.Min
	}
	switch s.Period {
	case SalaryHourly:
		return amount * 2080
	case SalaryDaily:
		return amount * 260
	case SalaryMonthly:
		return amount * 12
	default:
		return amount
	}
}

// JobListing is a normalized job record scraped from a board. Raw
// scraped data is provisional until it passes sanitization and
// validation.
type JobListing struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	Location       string         `json:"location,omitempty"`
	Salary         SalaryRange    `json:"salary,omitempty"`
	Description    string         `json:"description,omitempty"`
	Requirements   []string       `json:"requirements,omitempty"`
	TechStack      []string       `json:"techStack,omitempty"`
	EmploymentType EmploymentType `json:"employmentType,omitempty"`
	RemotePolicy   RemotePolicy   `json:"remotePolicy,omitempty"`
	PostedDate     string         `json:"postedDate,omitempty"`
	ApplicationURL string         `json:"applicationUrl,omitempty"`
	SourceSite     string         `json:"sourceSite"`
	ScrapedAt      time.Time      `json:"scrapedAt"`
}

// ListingStatus tracks the user's interaction with a stored listing
type ListingStatus string

const (
	ListingNew      ListingStatus = "new"
	ListingViewed   ListingStatus = "viewed"
	ListingSaved    ListingStatus = "saved"
	ListingApplied  ListingStatus = "applied"
	ListingHidden   ListingStatus = "hidden"
	ListingRejected ListingStatus = "rejected"
)

// EnhancedJobListing is a JobListing plus interaction state and the
// derived fields set by downstream scoring. MatchScore, when present,
// is always in [0,100].
type EnhancedJobListing struct {
	JobListing

	Status    ListingStatus `json:"status"`
	ViewedAt  *time.Time    `json:"viewedAt,omitempty"`
	SavedAt   *time.Time    `json:"savedAt,omitempty"`
	AppliedAt *time.Time    `json:"appliedAt,omitempty"`
	Notes     string        `json:"notes,omitempty"`

	MatchScore   *float64       `json:"matchScore,omitempty"`
	Seniority    SeniorityLevel `json:"seniority,omitempty"`
	CompanySize  CompanySize    `json:"companySize,omitempty"`
	ScoreSource  string         `json:"scoreSource,omitempty"` // "heuristic" or "ai"
	MatchSummary *JobMatchResult `json:"matchSummary,omitempty"`
}

// NewEnhancedListing wraps a sanitized listing in its initial state
func NewEnhancedListing(listing JobListing) EnhancedJobListing {
	return EnhancedJobListing{
		JobListing: listing,
		Status:     ListingNew,
	}
}
