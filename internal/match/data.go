package match

import (
	"regexp"

	"jobscout/pkg/models"
)

// Static vocabulary for match scoring, kept as data so thresholds and
// keyword families can evolve without touching the scoring logic.

// homeRegionCities is the fixed city list that scores 95 on the
// location ladder
var homeRegionCities = []string{
	"zurich", "zürich", "geneva", "genève", "basel", "bern", "lausanne",
	"zug", "lugano", "winterthur", "st. gallen", "st gallen",
}

// seniorityTitleKeywords maps title phrasing onto levels. Checked in
// order; first hit wins.
var seniorityTitleKeywords = []struct {
	Level    models.SeniorityLevel
	Keywords []string
}{
	{models.SeniorityPrincipal, []string{"principal", "staff", "lead", "head of", "director", "architect"}},
	{models.SenioritySenior, []string{"senior", "sr.", "sr "}},
	{models.SeniorityJunior, []string{"junior", "jr.", "jr ", "graduate", "entry level", "entry-level", "intern"}},
}

// seniorityOrder positions levels for distance-based decay
var seniorityOrder = map[models.SeniorityLevel]int{
	models.SeniorityJunior:    0,
	models.SeniorityMid:       1,
	models.SenioritySenior:    2,
	models.SeniorityPrincipal: 3,
}

// seniorityDecay scores by distance between listing level and the
// nearest acceptable level
var seniorityDecay = []float64{100, 75, 50, 30}

// employmentDefaultScores apply when the candidate states no
// employment-type preference. Full-time is generally acceptable.
var employmentDefaultScores = map[models.EmploymentType]float64{
	models.EmploymentFullTime:   90,
	models.EmploymentContract:   65,
	models.EmploymentPartTime:   60,
	models.EmploymentFreelance:  60,
	models.EmploymentInternship: 30,
}

// companySizeOrder ranks sizes for adjacency scoring
var companySizeOrder = map[models.CompanySize]int{
	models.CompanyStartup:    0,
	models.CompanySmall:      1,
	models.CompanyMedium:     2,
	models.CompanyLarge:      3,
	models.CompanyEnterprise: 4,
}

// companySizeDefaultScores apply when the candidate states no size
// preference
var companySizeDefaultScores = map[models.CompanySize]float64{
	models.CompanyMedium:     85,
	models.CompanySmall:      80,
	models.CompanyLarge:      80,
	models.CompanyStartup:    75,
	models.CompanyEnterprise: 70,
}

// companySizeKeywords infer a listing's company size from its text
var companySizeKeywords = []struct {
	Size     models.CompanySize
	Keywords []string
}{
	{models.CompanyStartup, []string{"startup", "start-up", "early stage", "early-stage", "seed stage"}},
	{models.CompanyEnterprise, []string{"enterprise", "fortune 500", "multinational", "global leader", "10000+ employees"}},
	{models.CompanyLarge, []string{"large company", "1000+ employees", "established company"}},
	{models.CompanySmall, []string{"small team", "small company", "boutique"}},
	{models.CompanyMedium, []string{"mid-size", "midsize", "scale-up", "scaleup", "growing company"}},
}

// remotePreferenceScores scores listing policy (outer key: candidate
// preference, inner: listing policy)
var remotePreferenceScores = map[models.RemotePolicy]map[models.RemotePolicy]float64{
	models.RemoteFull: {
		models.RemoteFull:   100,
		models.RemoteHybrid: 70,
		models.RemoteOnSite: 30,
	},
	models.RemoteHybrid: {
		models.RemoteHybrid: 100,
		models.RemoteFull:   80,
		models.RemoteOnSite: 60,
	},
	models.RemoteOnSite: {
		models.RemoteOnSite: 100,
		models.RemoteHybrid: 75,
		models.RemoteFull:   50,
	},
}

// remoteDefaultScores apply when the candidate states no remote
// preference
var remoteDefaultScores = map[models.RemotePolicy]float64{
	models.RemoteFull:   90,
	models.RemoteHybrid: 85,
	models.RemoteOnSite: 75,
}

// degreeKeywords detect the degree a listing requires. Checked from
// highest to lowest; first hit wins.
var degreeKeywords = []struct {
	Degree   models.DegreeType
	Keywords []string
}{
	{models.DegreeDoctorate, []string{"phd", "ph.d", "doctorate", "doctoral"}},
	{models.DegreeMaster, []string{"master's", "masters degree", "master degree", "msc", "m.sc"}},
	{models.DegreeBachelor, []string{"bachelor", "bsc", "b.sc", "bs degree", "undergraduate degree", "university degree"}},
}

// topInstitutions earn an education bonus on competitive listings
var topInstitutions = []string{
	"eth zurich", "eth zürich", "epfl", "mit", "stanford", "cambridge",
	"oxford", "carnegie mellon", "berkeley",
}

var competitiveListingPattern = regexp.MustCompile(`(?i)\b(world[- ]class|top[- ]tier|leading|cutting[- ]edge|highly competitive)\b`)

// Experience extraction patterns, most specific first
var (
	rangedYearsPattern  = regexp.MustCompile(`(?i)(\d+)\s*[-–]\s*(\d+)\s*\+?\s*years?`)
	minimumYearsPattern = regexp.MustCompile(`(?i)(?:minimum|at least|min\.?)\s*(?:of\s*)?(\d+)\s*\+?\s*years?`)
	plainYearsPattern   = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?`)
)

// experienceByLevel is the fallback required-years table when the
// listing names a level but no year figure
var experienceByLevel = map[models.SeniorityLevel]float64{
	models.SeniorityJunior:    1,
	models.SeniorityMid:       3,
	models.SenioritySenior:    6,
	models.SeniorityPrincipal: 9,
}

// yearsToLevel maps a required-years figure onto a seniority level
func yearsToLevel(years float64) models.SeniorityLevel {
	switch {
	case years < 2:
		return models.SeniorityJunior
	case years < 5:
		return models.SeniorityMid
	case years < 9:
		return models.SenioritySenior
	default:
		return models.SeniorityPrincipal
	}
}
