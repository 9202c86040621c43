package models

// Enum vocabularies for candidate profiles. These mirror the values the
// profile subsystem produces; the pipeline treats profiles as read-only
// input.

// SkillProficiency is the candidate's self-assessed level for a skill
type SkillProficiency string

const (
	ProficiencyBeginner     SkillProficiency = "beginner"
	ProficiencyIntermediate SkillProficiency = "intermediate"
	ProficiencyAdvanced     SkillProficiency = "advanced"
	ProficiencyExpert       SkillProficiency = "expert"
)

// EmploymentType describes the contract form of a role
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentFreelance  EmploymentType = "freelance"
	EmploymentInternship EmploymentType = "internship"
)

// RemotePolicy describes where the work happens
type RemotePolicy string

const (
	RemoteFull   RemotePolicy = "remote"
	RemoteHybrid RemotePolicy = "hybrid"
	RemoteOnSite RemotePolicy = "on-site"
)

// CompanySize buckets employers by headcount
type CompanySize string

const (
	CompanyStartup    CompanySize = "startup"
	CompanySmall      CompanySize = "small"
	CompanyMedium     CompanySize = "medium"
	CompanyLarge      CompanySize = "large"
	CompanyEnterprise CompanySize = "enterprise"
)

// DegreeType is the highest formal qualification of an education entry
type DegreeType string

const (
	DegreeHighSchool DegreeType = "high-school"
	DegreeAssociate  DegreeType = "associate"
	DegreeBachelor   DegreeType = "bachelor"
	DegreeMaster     DegreeType = "master"
	DegreeDoctorate  DegreeType = "doctorate"
)

// SeniorityLevel is the rung on the career ladder a role targets
type SeniorityLevel string

const (
	SeniorityJunior    SeniorityLevel = "junior"
	SeniorityMid       SeniorityLevel = "mid"
	SenioritySenior    SeniorityLevel = "senior"
	SeniorityPrincipal SeniorityLevel = "principal"
)

// Location is where the candidate lives and whether they would move
type Location struct {
	City              string   `json:"city,omitempty"`
	Country           string   `json:"country"`
	WillingToRelocate bool     `json:"willingToRelocate,omitempty"`
	RelocationTargets []string `json:"relocationTargets,omitempty"`
}

// PersonalInfo holds the candidate's identity and home location
type PersonalInfo struct {
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Email     string   `json:"email,omitempty" validate:"omitempty,email"`
	Location  Location `json:"location"`
	Summary   string   `json:"summary,omitempty"`
}

// WorkExperience is one entry of the candidate's work history, most
// recent first. EndDate empty plus IsCurrent means the role is ongoing.
type WorkExperience struct {
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	Location       string         `json:"location,omitempty"`
	StartDate      string         `json:"startDate"` // ISO date
	EndDate        string         `json:"endDate,omitempty"`
	IsCurrent      bool           `json:"isCurrent,omitempty"`
	EmploymentType EmploymentType `json:"employmentType,omitempty"`
	SkillsUsed     []string       `json:"skillsUsed,omitempty"`
}

// Education is one study entry
type Education struct {
	Institution    string     `json:"institution"`
	Degree         DegreeType `json:"degree"`
	Field          string     `json:"field,omitempty"`
	GraduationDate string     `json:"graduationDate,omitempty"`
}

// TechnicalSkill is a ranked skill with proficiency and tenure
type TechnicalSkill struct {
	Name              string           `json:"name" validate:"required"`
	Proficiency       SkillProficiency `json:"proficiency"`
	YearsOfExperience float64          `json:"yearsOfExperience,omitempty"`
}

// LanguageSkill is a spoken language entry
type LanguageSkill struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Skills groups the candidate's skill sections
type Skills struct {
	Technical []TechnicalSkill `json:"technical,omitempty"`
	Soft      []string         `json:"soft,omitempty"`
	Languages []LanguageSkill  `json:"languages,omitempty"`
}

// SalaryExpectation is the candidate's annual expectation in a currency
type SalaryExpectation struct {
	Minimum  int    `json:"minimum,omitempty"`
	Target   int    `json:"target,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// JobPreferences captures what the candidate wants from the next role
type JobPreferences struct {
	Titles            []string          `json:"titles,omitempty"`
	Locations         []string          `json:"locations,omitempty"`
	RemotePolicy      RemotePolicy      `json:"remotePolicy,omitempty"`
	Salary            SalaryExpectation `json:"salary,omitempty"`
	EmploymentTypes   []EmploymentType  `json:"employmentTypes,omitempty"`
	AcceptableRegions []string          `json:"acceptableRegions,omitempty"`
}

// AdvancedPreferences are the softer constraints
type AdvancedPreferences struct {
	Industries      []string         `json:"industries,omitempty"`
	CompanySizes    []CompanySize    `json:"companySizes,omitempty"`
	SeniorityLevels []SeniorityLevel `json:"seniorityLevels,omitempty"`
	DealBreakers    []string         `json:"dealBreakers,omitempty"`
}

// CandidateProfile is the read-only input to the discovery pipeline
type CandidateProfile struct {
	UserID         string              `json:"userId" validate:"required"`
	PersonalInfo   PersonalInfo        `json:"personalInfo"`
	WorkExperience []WorkExperience    `json:"workExperience,omitempty"`
	Education      []Education         `json:"education,omitempty"`
	Skills         Skills              `json:"skills"`
	Preferences    JobPreferences      `json:"preferences,omitempty"`
	Advanced       AdvancedPreferences `json:"advanced,omitempty"`

	// SearchKeywords, when present, short-circuits fallback query
	// generation: every keyword becomes a high-priority query.
	SearchKeywords []string `json:"searchKeywords,omitempty"`
}

// HighestDegree returns the top-ranked degree across education entries
func (p *CandidateProfile) HighestDegree() DegreeType {
	best := DegreeType("")
	bestRank := -1
	for _, edu := range p.Education {
		if r := DegreeRank(edu.Degree); r > bestRank {
			bestRank = r
			best = edu.Degree
		}
	}
	return best
}

// DegreeRank orders degrees for comparison; unknown degrees rank lowest
func DegreeRank(d DegreeType) int {
	switch d {
	case DegreeDoctorate:
		return 4
	case DegreeMaster:
		return 3
	case DegreeBachelor:
		return 2
	case DegreeAssociate:
		return 1
	case DegreeHighSchool:
		return 0
	default:
		return -1
	}
}
