package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/internal/config"
	"jobscout/internal/scraper"
	"jobscout/internal/scraper/boards"
	"jobscout/internal/store"
	"jobscout/pkg/models"
)

// stubScraper returns canned listings or errors per board
type stubScraper struct {
	listings map[string][]models.JobListing
	errs     map[string]error
}

func (s *stubScraper) Search(_ context.Context, board boards.Board, _ models.SearchQuery) ([]models.JobListing, error) {
	if err := s.errs[board.ID]; err != nil {
		return nil, err
	}
	return s.listings[board.ID], nil
}

func (s *stubScraper) Cleanup()        {}
func (s *stubScraper) IsHealthy() bool { return true }

type stubFactory struct {
	scraper *stubScraper
}

func (f *stubFactory) ScraperFor(boards.Board) (scraper.BoardScraper, error) {
	return f.scraper, nil
}

func (f *stubFactory) Cleanup() {}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Workers.PoolSize = 2
	cfg.Store.HistoryLimit = 10
	return cfg
}

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
				{Name: "Machine Learning", Proficiency: models.ProficiencyAdvanced, YearsOfExperience: 4},
			},
		},
	}
}

func scrapedListing(title, company, location string) models.JobListing {
	return models.JobListing{
		Title:          title,
		Company:        company,
		Location:       location,
		Description:    "We are looking for an engineer to build and operate machine learning systems in production.",
		TechStack:      []string{"Python", "Machine Learning"},
		ApplicationURL: "https://example.com/jobs/apply",
		SourceSite:     "swissdevjobs",
		ScrapedAt:      time.Now(),
	}
}

func testPlan(taskBoards ...string) *models.ScrapePlan {
	plan := &models.ScrapePlan{
		ID:        "plan-1",
		UserID:    "user-1",
		Mode:      models.ModeQuick,
		Status:    models.PlanPending,
		CreatedAt: time.Now(),
	}
	for i, board := range taskBoards {
		plan.Tasks = append(plan.Tasks, models.ScrapeTask{
			ID:     fmt.Sprintf("task-%d", i),
			Board:  board,
			Query:  models.SearchQuery{Query: "ML Engineer", Priority: 10, Category: models.CategoryTitle},
			Status: models.TaskPending,
		})
	}
	return plan
}

func collectSink(events *[]models.ProgressEvent) EventSink {
	return func(e models.ProgressEvent) {
		*events = append(*events, e)
	}
}

func TestRunEmitsEventsInCausalOrder(t *testing.T) {
	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
			"jobsch":       {scrapedListing("Data Engineer", "Beta AG", "Bern")},
		},
	}}
	p := New(testConfig(), factory, store.NewMemoryStore(10))

	var events []models.ProgressEvent
	plan, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs", "jobsch"), collectSink(&events))
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, plan.Status)

	require.GreaterOrEqual(t, len(events), 4)
	assert.Equal(t, models.EventPlanCreated, events[0].Type)
	assert.Equal(t, models.EventPlanReady, events[1].Type)
	assert.Equal(t, models.EventComplete, events[len(events)-1].Type)

	progress := 0
	for _, e := range events[2 : len(events)-1] {
		assert.Equal(t, models.EventProgress, e.Type)
		progress++
	}
	assert.Equal(t, 2, progress, "one progress event per completed task")

	// Event snapshots are independent of the live plan
	assert.Equal(t, models.PlanPending, events[0].Plan.Status)
	assert.Equal(t, models.PlanRunning, events[1].Plan.Status)
}

func TestRunPersistsScoredListings(t *testing.T) {
	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
			// Same role again with cosmetic variation: within-run
			// duplicate
			"jobsch": {scrapedListing("ML Engineer", "Acme Corp.", "Zürich")},
		},
	}}
	st := store.NewMemoryStore(10)
	p := New(testConfig(), factory, st)

	plan, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs", "jobsch"), NopSink)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.TotalJobsFound)
	assert.Equal(t, 1, plan.NewJobsAdded)
	assert.Equal(t, 1, plan.DuplicatesSkipped)

	listings, err := st.GetListings(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listings, 1)

	stored := listings[0]
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, models.ListingNew, stored.Status)
	assert.Equal(t, "heuristic", stored.ScoreSource)
	require.NotNil(t, stored.MatchScore)
	assert.GreaterOrEqual(t, *stored.MatchScore, 0.0)
	assert.LessOrEqual(t, *stored.MatchScore, 100.0)
	require.NotNil(t, stored.MatchSummary)
	assert.Equal(t, stored.ID, stored.MatchSummary.JobID)

	history, err := st.GetHistory(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "plan-1", history[0].PlanID)
	assert.Equal(t, models.PlanCompleted, history[0].Status)

	persisted, err := st.GetCurrentScrapePlan(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, persisted.Status)
}

func TestRunTaskFailureDoesNotFailSiblings(t *testing.T) {
	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
		},
		errs: map[string]error{
			"jobsch": errors.New("board unreachable"),
		},
	}}
	p := New(testConfig(), factory, store.NewMemoryStore(10))

	plan, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs", "jobsch"), NopSink)
	require.NoError(t, err)

	assert.Equal(t, models.PlanCompleted, plan.Status)
	assert.Equal(t, 1, plan.TasksFailed)
	assert.Equal(t, 1, plan.NewJobsAdded)

	var failed *models.ScrapeTask
	for i := range plan.Tasks {
		if plan.Tasks[i].Board == "jobsch" {
			failed = &plan.Tasks[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, models.TaskFailed, failed.Status)
	assert.Contains(t, failed.Error, "board unreachable")
}

func TestRunAllTasksFailedMarksPlanFailed(t *testing.T) {
	factory := &stubFactory{scraper: &stubScraper{
		errs: map[string]error{
			"swissdevjobs": errors.New("boom"),
			"jobsch":       errors.New("boom"),
		},
	}}
	p := New(testConfig(), factory, store.NewMemoryStore(10))

	plan, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs", "jobsch"), NopSink)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFailed, plan.Status)
	assert.Equal(t, 2, plan.TasksFailed)
}

func TestRunCancelledPlanEndsWithErrorEvent(t *testing.T) {
	factory := &stubFactory{scraper: &stubScraper{}}
	p := New(testConfig(), factory, store.NewMemoryStore(10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []models.ProgressEvent
	plan, err := p.Run(ctx, testProfile(), testPlan("swissdevjobs", "jobsch"), collectSink(&events))
	require.Error(t, err)
	assert.Equal(t, models.PlanCancelled, plan.Status)

	for _, task := range plan.Tasks {
		assert.Equal(t, models.TaskSkipped, task.Status)
	}

	last := events[len(events)-1]
	assert.Equal(t, models.EventError, last.Type)
}

func TestRescorerOverridesWholeBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Jobs []struct {
				ID string `json:"id"`
			} `json:"jobs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Jobs)

		matches := make([]map[string]interface{}, 0, len(req.Jobs))
		for _, job := range req.Jobs {
			matches = append(matches, map[string]interface{}{
				"job_id":         job.ID,
				"score":          91.5,
				"reasoning":      "strong production ML background",
				"recommendation": "apply",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"matches": matches})
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Rescorer.Enabled = true
	cfg.Rescorer.BaseURL = server.URL
	cfg.Rescorer.Timeout = 5 * time.Second

	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
		},
	}}
	st := store.NewMemoryStore(10)
	p := New(cfg, factory, st)

	_, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs"), NopSink)
	require.NoError(t, err)

	listings, err := st.GetListings(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "ai", listings[0].ScoreSource)
	require.NotNil(t, listings[0].MatchScore)
	assert.InDelta(t, 91.5, *listings[0].MatchScore, 0.01)
	require.NotNil(t, listings[0].MatchSummary)
	assert.Equal(t, "apply", listings[0].MatchSummary.Recommendation)
}

func TestRescorerPartialResponseKeepsHeuristics(t *testing.T) {
	// Backend scores only one of the submitted jobs (a min_score
	// threshold does exactly this); the whole batch must stay on
	// heuristic scores rather than mixing sources
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Jobs []struct {
				ID string `json:"id"`
			} `json:"jobs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Jobs, 2)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"matches": []map[string]interface{}{
				{
					"job_id":         req.Jobs[0].ID,
					"score":          88,
					"recommendation": "apply",
				},
			},
		})
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Rescorer.Enabled = true
	cfg.Rescorer.BaseURL = server.URL
	cfg.Rescorer.MinScore = 60
	cfg.Rescorer.Timeout = 5 * time.Second

	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
			"jobsch":       {scrapedListing("Data Engineer", "Beta AG", "Bern")},
		},
	}}
	st := store.NewMemoryStore(10)
	p := New(cfg, factory, st)

	plan, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs", "jobsch"), NopSink)
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, plan.Status)

	listings, err := st.GetListings(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	for _, listing := range listings {
		assert.Equal(t, "heuristic", listing.ScoreSource)
		require.NotNil(t, listing.MatchScore)
	}
}

func TestRunCancelledDuringRescoreReturnsPromptly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backend cancels the run on arrival and then stalls; the rescore
	// call must abort with the run instead of waiting out its own
	// timeout
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Rescorer.Enabled = true
	cfg.Rescorer.BaseURL = server.URL
	cfg.Rescorer.Timeout = 30 * time.Second

	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
		},
	}}
	st := store.NewMemoryStore(10)
	p := New(cfg, factory, st)

	start := time.Now()
	plan, err := p.Run(ctx, testProfile(), testPlan("swissdevjobs"), NopSink)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.PlanCancelled, plan.Status)
	assert.Less(t, time.Since(start), 5*time.Second)

	listings, err := st.GetListings(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "heuristic", listings[0].ScoreSource)
}

func TestRescorerFailureFallsBackToHeuristics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Rescorer.Enabled = true
	cfg.Rescorer.BaseURL = server.URL
	cfg.Rescorer.Timeout = 5 * time.Second

	factory := &stubFactory{scraper: &stubScraper{
		listings: map[string][]models.JobListing{
			"swissdevjobs": {scrapedListing("ML Engineer", "Acme Corp", "Zurich")},
			"jobsch":       {scrapedListing("Data Engineer", "Beta AG", "Bern")},
		},
	}}
	st := store.NewMemoryStore(10)
	p := New(cfg, factory, st)

	plan, err := p.Run(context.Background(), testProfile(), testPlan("swissdevjobs", "jobsch"), NopSink)
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, plan.Status, "rescorer failure must not fail the run")

	listings, err := st.GetListings(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	for _, listing := range listings {
		assert.Equal(t, "heuristic", listing.ScoreSource)
		require.NotNil(t, listing.MatchScore)
	}
}
