package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/pkg/models"
)

func mlProfile() *models.CandidateProfile {
	return &models.CandidateProfile{
		UserID: "user-1",
		PersonalInfo: models.PersonalInfo{
			FirstName: "Lena",
			LastName:  "Keller",
			Location:  models.Location{City: "Zurich", Country: "Switzerland"},
		},
		Skills: models.Skills{
			Technical: []models.TechnicalSkill{
				{Name: "Python", Proficiency: models.ProficiencyExpert, YearsOfExperience: 6},
				{Name: "TensorFlow", Proficiency: models.ProficiencyExpert, YearsOfExperience: 4},
				{Name: "ml", Proficiency: models.ProficiencyAdvanced, YearsOfExperience: 5},
				{Name: "Docker", Proficiency: models.ProficiencyIntermediate, YearsOfExperience: 3},
			},
		},
		WorkExperience: []models.WorkExperience{
			{Title: "Machine Learning Engineer", Company: "Alpine AI", StartDate: "2021-03-01", IsCurrent: true},
		},
	}
}

func TestNormalizeSkillSynonyms(t *testing.T) {
	assert.Equal(t, "machine learning", NormalizeSkill("ML"))
	assert.Equal(t, "machine learning", NormalizeSkill("machine learning"))
	assert.Equal(t, "kubernetes", NormalizeSkill("k8s"))
	assert.Equal(t, "go", NormalizeSkill("Golang"))
	assert.Equal(t, "cobol", NormalizeSkill(" COBOL "))
}

func TestExpandSkillIncludesVariants(t *testing.T) {
	expanded := ExpandSkill("ml")
	assert.Contains(t, expanded, "machine learning")
	assert.Contains(t, expanded, "ml")
}

func TestRankSkillsOrderAndCap(t *testing.T) {
	var technical []models.TechnicalSkill
	for _, name := range []string{
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
		"k", "l", "m", "n", "o", "p", "q", "r",
	} {
		technical = append(technical, models.TechnicalSkill{
			Name:        name,
			Proficiency: models.ProficiencyIntermediate,
		})
	}
	technical[5].Proficiency = models.ProficiencyExpert
	technical[5].YearsOfExperience = 2
	technical[9].Proficiency = models.ProficiencyExpert
	technical[9].YearsOfExperience = 8

	ranked := rankSkills(technical)
	require.Len(t, ranked, 15)

	// Higher years wins the tie between the two experts
	assert.Equal(t, "j", ranked[0].Name)
	assert.Equal(t, "f", ranked[1].Name)
	assert.Equal(t, 10, ranked[0].Weight)
}

func TestRankSkillsDeduplicatesSynonyms(t *testing.T) {
	ranked := rankSkills([]models.TechnicalSkill{
		{Name: "ml", Proficiency: models.ProficiencyIntermediate},
		{Name: "Machine Learning", Proficiency: models.ProficiencyExpert, YearsOfExperience: 4},
	})
	require.Len(t, ranked, 1)
	assert.Equal(t, "machine learning", ranked[0].Name)
	assert.Equal(t, 10, ranked[0].Weight, "stronger claim wins")
	assert.True(t, ranked[0].Critical)
}

func TestTargetTitlesFallbackGuarantee(t *testing.T) {
	profile := &models.CandidateProfile{UserID: "u"}
	analysis := Analyze(profile)
	assert.NotEmpty(t, analysis.TargetTitles)

	// Specialized profiles get the ML fallback list
	specialized := &models.CandidateProfile{
		UserID: "u",
		Skills: models.Skills{Technical: []models.TechnicalSkill{
			{Name: "pytorch", Proficiency: models.ProficiencyAdvanced},
		}},
	}
	analysis = Analyze(specialized)
	assert.Contains(t, analysis.TargetTitles, "Machine Learning Engineer")
}

func TestTargetTitlesPreferExplicit(t *testing.T) {
	profile := mlProfile()
	profile.Preferences.Titles = []string{"Staff ML Engineer"}
	analysis := Analyze(profile)
	assert.Equal(t, []string{"Staff ML Engineer"}, analysis.TargetTitles)
}

func TestLocationsNeverEmpty(t *testing.T) {
	analysis := Analyze(&models.CandidateProfile{UserID: "u"})
	assert.NotEmpty(t, analysis.Locations)

	analysis = Analyze(mlProfile())
	assert.Contains(t, analysis.Locations, "Zurich, Switzerland")
}

func TestQueriesSortedByPriority(t *testing.T) {
	analysis := Analyze(mlProfile())
	require.NotEmpty(t, analysis.Queries)

	for i := 1; i < len(analysis.Queries); i++ {
		assert.GreaterOrEqual(t,
			analysis.Queries[i-1].Priority, analysis.Queries[i].Priority,
			"queries must be sorted descending by priority")
	}
	assert.Equal(t, 10, analysis.Queries[0].Priority)
}

func TestKeywordModeShortCircuitsFallback(t *testing.T) {
	profile := mlProfile()
	profile.SearchKeywords = []string{"LLM engineer Zurich", "RAG engineer"}

	analysis := Analyze(profile)
	for _, q := range analysis.Queries {
		assert.Contains(t,
			[]models.QueryCategory{models.CategoryKeyword, models.CategoryRemote},
			q.Category,
			"keyword mode must not emit fallback-generator queries")
	}
}

func TestFallbackQueriesIncludeSpecialized(t *testing.T) {
	analysis := Analyze(mlProfile())

	var categories []models.QueryCategory
	for _, q := range analysis.Queries {
		categories = append(categories, q.Category)
	}
	assert.Contains(t, categories, models.CategoryTitle)
	assert.Contains(t, categories, models.CategorySpecialized)
	assert.Contains(t, categories, models.CategoryRemote)
}

func TestBoardPrioritiesRegionBoost(t *testing.T) {
	analysis := Analyze(mlProfile())
	require.NotEmpty(t, analysis.BoardPriorities)
	assert.Equal(t, "ch", analysis.PrimaryRegion)

	// Swiss specialized board must outrank everything for this profile
	assert.Equal(t, "swissdevjobs", analysis.BoardPriorities[0].Board)

	for i := 1; i < len(analysis.BoardPriorities); i++ {
		assert.GreaterOrEqual(t,
			analysis.BoardPriorities[i-1].Priority,
			analysis.BoardPriorities[i].Priority)
	}

	for _, bp := range analysis.BoardPriorities {
		assert.NotContains(t, []string{"linkedin", "indeed"}, bp.Board,
			"unsupported boards are never prioritized")
	}
}
