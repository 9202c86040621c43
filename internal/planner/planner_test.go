package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
)

func testProfile() *models.CandidateProfile {
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
				{Name: "PyTorch", Proficiency: models.ProficiencyAdvanced, YearsOfExperience: 4},
				{Name: "Kubernetes", Proficiency: models.ProficiencyIntermediate, YearsOfExperience: 3},
			},
		},
		Preferences: models.JobPreferences{
			Titles: []string{"Machine Learning Engineer"},
		},
	}
}

func TestCreatePlanQuickMode(t *testing.T) {
	plan := CreatePlan(testProfile(), models.ModeQuick, Options{})
	require.NotNil(t, plan)

	assert.Equal(t, models.PlanPending, plan.Status)
	assert.Equal(t, models.ModeQuick, plan.Mode)
	assert.Equal(t, "user-1", plan.UserID)
	assert.NotEmpty(t, plan.ID)

	boardsUsed := make(map[string]int)
	for _, task := range plan.Tasks {
		boardsUsed[task.Board]++
		assert.Equal(t, models.TaskPending, task.Status)
		assert.NotEmpty(t, task.ID)
	}
	assert.LessOrEqual(t, len(boardsUsed), 2, "quick mode uses top 2 boards")
	for board, count := range boardsUsed {
		assert.LessOrEqual(t, count, 3, "quick mode caps queries for %s", board)
	}
}

func TestCreatePlanFullMode(t *testing.T) {
	plan := CreatePlan(testProfile(), models.ModeFull, Options{})

	boardsUsed := make(map[string]int)
	for _, task := range plan.Tasks {
		boardsUsed[task.Board]++
	}
	assert.Greater(t, len(boardsUsed), 2, "full mode reaches beyond the top boards")
	for board, count := range boardsUsed {
		assert.LessOrEqual(t, count, 8, "full mode caps queries for %s", board)
	}
}

func TestCreatePlanUnknownModeDefaultsToFull(t *testing.T) {
	plan := CreatePlan(testProfile(), models.ScrapeMode("bogus"), Options{})
	assert.Equal(t, models.ModeFull, plan.Mode)
}

func TestTaskIDsUnique(t *testing.T) {
	plan := CreatePlan(testProfile(), models.ModeFull, Options{})
	seen := make(map[string]bool)
	for _, task := range plan.Tasks {
		assert.False(t, seen[task.ID], "duplicate task id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestSelectQueriesForBoardCategoryOrder(t *testing.T) {
	queries := []models.SearchQuery{
		{Query: "ML Engineer", Priority: 10, Category: models.CategoryTitle},
		{Query: "python developer", Priority: 8, Category: models.CategoryPrimarySkill},
		{Query: "LLM Engineer", Priority: 9, Category: models.CategorySpecialized},
		{Query: "kubernetes", Priority: 5, Category: models.CategorySecondarySkill},
	}

	specialized, ok := boards.Get("swissdevjobs")
	require.True(t, ok)
	selected := selectQueriesForBoard(specialized, queries, 2)
	require.Len(t, selected, 2)
	assert.Equal(t, "LLM Engineer", selected[0].Query, "specialized boards lead with specialized queries")
	assert.Equal(t, "python developer", selected[1].Query)

	general, ok := boards.Get("jobsch")
	require.True(t, ok)
	selected = selectQueriesForBoard(general, queries, 2)
	require.Len(t, selected, 2)
	assert.Equal(t, "ML Engineer", selected[0].Query, "general boards lead with title queries")
	assert.Equal(t, "LLM Engineer", selected[1].Query)
}

func TestSelectQueriesForBoardExcludesDuplicates(t *testing.T) {
	queries := []models.SearchQuery{
		{Query: "ML Engineer", Priority: 10, Category: models.CategoryTitle},
		{Query: "ml engineer", Priority: 9, Category: models.CategorySpecialized},
		{Query: "python developer", Priority: 8, Category: models.CategoryPrimarySkill},
	}

	board, ok := boards.Get("jobsch")
	require.True(t, ok)
	selected := selectQueriesForBoard(board, queries, 5)
	require.Len(t, selected, 2, "case-insensitive duplicate excluded")
}

func TestSelectQueriesForBoardFillsFromPriorityOrder(t *testing.T) {
	queries := []models.SearchQuery{
		{Query: "remote ml", Priority: 7, Category: models.CategoryRemote},
		{Query: "kubernetes", Priority: 5, Category: models.CategorySecondarySkill},
	}

	board, ok := boards.Get("jobsch")
	require.True(t, ok)
	selected := selectQueriesForBoard(board, queries, 2)
	require.Len(t, selected, 2, "non-preferred categories still fill remaining slots")
	assert.Equal(t, "remote ml", selected[0].Query)
}
