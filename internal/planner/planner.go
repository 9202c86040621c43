package planner

import (
	"sort"
	"strings"
	"time"

	"jobscout/internal/analyzer"
	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Options bounds plan breadth; zero values fall back to the defaults
type Options struct {
	QuickBoards       int // boards used in quick mode
	QuickQueriesBoard int // queries per board in quick mode
	FullQueriesBoard  int // queries per board in full mode
}

func (o Options) withDefaults() Options {
	if o.QuickBoards <= 0 {
		o.QuickBoards = 2
	}
	if o.QuickQueriesBoard <= 0 {
		o.QuickQueriesBoard = 3
	}
	if o.FullQueriesBoard <= 0 {
		o.FullQueriesBoard = 8
	}
	return o
}

// Query-category preference orders per board kind. Remaining slots are
// filled from the full query list in priority order.
var specializedBoardOrder = []models.QueryCategory{
	models.CategorySpecialized,
	models.CategoryPrimarySkill,
	models.CategoryTitle,
	models.CategoryCombination,
}

var generalBoardOrder = []models.QueryCategory{
	models.CategoryTitle,
	models.CategorySpecialized,
	models.CategoryPrimarySkill,
	models.CategoryCombination,
}

// CreatePlan analyzes the profile once and generates the task list for
// the requested mode. The returned plan is pending; nothing has run.
func CreatePlan(profile *models.CandidateProfile, mode models.ScrapeMode, opts Options) *models.ScrapePlan {
	if mode != models.ModeQuick {
		mode = models.ModeFull
	}

	analysis := analyzer.Analyze(profile)

	plan := &models.ScrapePlan{
		ID:        utils.GenerateRequestID(),
		UserID:    profile.UserID,
		Mode:      mode,
		Status:    models.PlanPending,
		Tasks:     generateTasks(analysis, mode, opts.withDefaults()),
		CreatedAt: time.Now(),
	}
	return plan
}

// generateTasks walks boards in priority order and assigns each its
// query selection. Quick mode uses only the top boards with a tighter
// per-board query cap.
func generateTasks(analysis *models.ProfileAnalysis, mode models.ScrapeMode, opts Options) []models.ScrapeTask {
	priorities := make([]models.BoardPriority, len(analysis.BoardPriorities))
	copy(priorities, analysis.BoardPriorities)
	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].Priority > priorities[j].Priority
	})

	queriesPerBoard := opts.FullQueriesBoard
	if mode == models.ModeQuick {
		queriesPerBoard = opts.QuickQueriesBoard
		if len(priorities) > opts.QuickBoards {
			priorities = priorities[:opts.QuickBoards]
		}
	}

	var tasks []models.ScrapeTask
	for _, bp := range priorities {
		board, ok := boards.Get(bp.Board)
		if !ok {
			continue
		}
		for _, query := range selectQueriesForBoard(board, analysis.Queries, queriesPerBoard) {
			tasks = append(tasks, models.ScrapeTask{
				ID:     utils.GenerateRequestID(),
				Board:  board.ID,
				Query:  query,
				Status: models.TaskPending,
			})
		}
	}
	return tasks
}

// selectQueriesForBoard picks up to limit queries for one board:
// preferred categories first, then the remaining queries in their
// original priority order. Duplicate query strings are excluded.
func selectQueriesForBoard(board boards.Board, queries []models.SearchQuery, limit int) []models.SearchQuery {
	order := generalBoardOrder
	if board.Specialized {
		order = specializedBoardOrder
	}

	var selected []models.SearchQuery
	seen := make(map[string]bool)

	take := func(q models.SearchQuery) bool {
		key := strings.ToLower(strings.TrimSpace(q.Query))
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
		selected = append(selected, q)
		return len(selected) >= limit
	}

	for _, category := range order {
		for _, q := range queries {
			if q.Category != category {
				continue
			}
			if take(q) {
				return selected
			}
		}
	}

	// Fill remaining slots from the full list in priority order
	for _, q := range queries {
		if take(q) {
			return selected
		}
	}
	return selected
}
