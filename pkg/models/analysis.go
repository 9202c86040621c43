package models

// RankedSkill is one profile skill after normalization and ranking
type RankedSkill struct {
	Name     string  `json:"name"`     // normalized form
	Weight   int     `json:"weight"`   // proficiency weight, expert=10 .. beginner=2
	Years    float64 `json:"years"`    // tie-breaker
	Critical bool    `json:"critical"` // domain-critical skill
}

// ProfileAnalysis is the output of the profile analyzer and the input
// to plan generation
type ProfileAnalysis struct {
	Queries         []SearchQuery   `json:"queries"`
	BoardPriorities []BoardPriority `json:"boardPriorities"`
	TopSkills       []RankedSkill   `json:"topSkills"`
	TargetTitles    []string        `json:"targetTitles"`
	Locations       []string        `json:"locations"`
	PrimaryRegion   string          `json:"primaryRegion"`
}

// MatchScoreBreakdown holds the per-factor scores, each in [0,100].
// The overall score is a fixed convex combination of these.
type MatchScoreBreakdown struct {
	Skills         float64 `json:"skills"`
	Location       float64 `json:"location"`
	Salary         float64 `json:"salary"`
	Seniority      float64 `json:"seniority"`
	EmploymentType float64 `json:"employmentType"`
	CompanySize    float64 `json:"companySize"`
	Remote         float64 `json:"remote"`
	Education      float64 `json:"education"`
	Experience     float64 `json:"experience"`
}

// JobMatchResult is the derived scoring view for one listing. Never
// persisted independently of the listing it scores.
type JobMatchResult struct {
	JobID         string              `json:"jobId"`
	Score         float64             `json:"score"`
	Breakdown     MatchScoreBreakdown `json:"breakdown"`
	MatchedSkills []string            `json:"matchedSkills,omitempty"`
	MissingSkills []string            `json:"missingSkills,omitempty"`
	Highlights    []string            `json:"highlights,omitempty"`
	Concerns      []string            `json:"concerns,omitempty"`

	// Set only by the AI rescorer
	Reasoning      string `json:"reasoning,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}
