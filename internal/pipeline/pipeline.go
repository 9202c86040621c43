package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/internal/match"
	"jobscout/internal/planner"
	"jobscout/internal/sanitize"
	"jobscout/internal/scraper"
	"jobscout/internal/scraper/boards"
	"jobscout/internal/store"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Pipeline runs one discovery cycle: plan, scrape, sanitize, score,
// persist. It owns the plan while a run is in flight; observers only
// ever see cloned snapshots carried by events.
type Pipeline struct {
	cfg        *config.Config
	factory    scraper.ScraperFactory
	store      store.Store
	sanitizer  *sanitize.Sanitizer
	fakeFilter *sanitize.FakeFilter
	rescorer   *match.Rescorer
	matchOpts  match.Options
	logger     logging.Logger
}

// New wires a pipeline from the configuration
func New(cfg *config.Config, factory scraper.ScraperFactory, st store.Store) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		factory: factory,
		store:   st,
		sanitizer: sanitize.New(sanitize.Limits{
			MaxTitleLen:       cfg.Sanitizer.MaxTitleLen,
			MaxCompanyLen:     cfg.Sanitizer.MaxCompanyLen,
			MaxLocationLen:    cfg.Sanitizer.MaxLocationLen,
			MaxDescriptionLen: cfg.Sanitizer.MaxDescriptionLen,
			MaxItemLen:        cfg.Sanitizer.MaxItemLen,
			MaxURLLen:         cfg.Sanitizer.MaxURLLen,
			MaxRequirements:   cfg.Sanitizer.MaxRequirements,
			MaxTechStack:      cfg.Sanitizer.MaxTechStack,
			MaxListings:       cfg.Sanitizer.MaxListings,
			SalaryCeiling:     cfg.Sanitizer.SalaryCeiling,
		}),
		fakeFilter: sanitize.NewFakeFilter(cfg.FakeFilter.Threshold, cfg.FakeFilter.SalaryCeiling),
		matchOpts: match.Options{
			Weights:            cfg.Weights(),
			CriticalMultiplier: cfg.Matcher.CriticalSkillMultiplier,
		},
		logger: logging.GetGlobalLogger(),
	}

	if cfg.Rescorer.Enabled && cfg.Rescorer.BaseURL != "" {
		p.rescorer = match.NewRescorer(cfg.Rescorer.BaseURL, cfg.Rescorer.MinScore, cfg.Rescorer.Timeout)
	}
	return p
}

// CreatePlan analyzes the profile and generates a plan without
// executing it
func (p *Pipeline) CreatePlan(profile *models.CandidateProfile, mode models.ScrapeMode) *models.ScrapePlan {
	return planner.CreatePlan(profile, mode, planner.Options{
		QuickBoards:       p.cfg.Planner.QuickBoards,
		QuickQueriesBoard: p.cfg.Planner.QuickQueriesBoard,
		FullQueriesBoard:  p.cfg.Planner.FullQueriesBoard,
	})
}

// Discover creates a plan for the profile and runs it to completion
func (p *Pipeline) Discover(ctx context.Context, profile *models.CandidateProfile, mode models.ScrapeMode, sink EventSink) (*models.ScrapePlan, error) {
	plan := p.CreatePlan(profile, mode)
	return p.Run(ctx, profile, plan, sink)
}

// Run executes an already-created plan. The returned plan is the final
// snapshot; the stream sink receives plan_created, plan_ready, progress
// events per completed task, and exactly one of complete or error.
func (p *Pipeline) Run(ctx context.Context, profile *models.CandidateProfile, plan *models.ScrapePlan, sink EventSink) (*models.ScrapePlan, error) {
	em := newEmitter(sink)
	em.emit(models.ProgressEvent{Type: models.EventPlanCreated, Plan: plan.Clone()})

	started := time.Now()
	plan.Status = models.PlanRunning
	plan.StartedAt = &started
	p.savePlan(plan)
	em.emit(models.ProgressEvent{Type: models.EventPlanReady, Plan: plan.Clone()})

	p.logger.Info("Discovery run started", map[string]interface{}{
		"plan_id": plan.ID,
		"user":    plan.UserID,
		"mode":    string(plan.Mode),
		"tasks":   len(plan.Tasks),
	})

	// Guards plan mutation across worker goroutines
	var mu sync.Mutex

	executor := NewExecutor(p.cfg.Workers.PoolSize)
	outcomes := executor.Run(ctx, len(plan.Tasks),
		func(taskCtx context.Context, i int) ([]models.JobListing, error) {
			mu.Lock()
			now := time.Now()
			plan.Tasks[i].Status = models.TaskRunning
			plan.Tasks[i].StartedAt = &now
			task := plan.Tasks[i]
			mu.Unlock()

			return p.runTask(taskCtx, task)
		},
		func(i int, outcome TaskOutcome) {
			mu.Lock()
			now := time.Now()
			task := &plan.Tasks[i]
			task.EndedAt = &now
			switch {
			case outcome.Skipped:
				task.Status = models.TaskSkipped
			case outcome.Err != nil:
				task.Status = models.TaskFailed
				task.Error = outcome.Err.Error()
				plan.TasksFailed++
			default:
				task.Status = models.TaskCompleted
				task.JobsFound = len(outcome.Listings)
				plan.TotalJobsFound += len(outcome.Listings)
			}
			snapshot := plan.Clone()
			mu.Unlock()

			em.emit(models.ProgressEvent{
				Type:         models.EventProgress,
				Plan:         snapshot,
				RunningTasks: snapshot.RunningTasks(),
				RunningJobs:  len(snapshot.RunningTasks()),
			})
		})

	// Results stay in task order so the listing set is deterministic
	// for a given plan
	var raw []models.JobListing
	for _, outcome := range outcomes {
		raw = append(raw, outcome.Listings...)
	}

	enhanced, duplicates := p.processListings(ctx, profile, raw)

	added, storeDups := p.persistListings(plan.UserID, enhanced)
	plan.NewJobsAdded = added
	plan.DuplicatesSkipped = duplicates + storeDups

	completed := time.Now()
	plan.CompletedAt = &completed
	plan.Status = p.finalStatus(ctx, plan)

	p.savePlan(plan)
	p.appendHistory(plan)

	p.logger.Info("Discovery run finished", map[string]interface{}{
		"plan_id":    plan.ID,
		"status":     string(plan.Status),
		"found":      plan.TotalJobsFound,
		"added":      plan.NewJobsAdded,
		"duplicates": plan.DuplicatesSkipped,
		"failed":     plan.TasksFailed,
		"duration":   utils.FormatDuration(completed.Sub(started)),
	})

	if plan.Status == models.PlanCancelled {
		em.emit(models.ProgressEvent{
			Type:    models.EventError,
			Plan:    plan.Clone(),
			Message: "run cancelled",
		})
		return plan, ctx.Err()
	}

	em.emit(models.ProgressEvent{Type: models.EventComplete, Plan: plan.Clone()})
	return plan, nil
}

// runTask executes one (board, query) unit of work
func (p *Pipeline) runTask(ctx context.Context, task models.ScrapeTask) ([]models.JobListing, error) {
	board, ok := boards.Get(task.Board)
	if !ok {
		return nil, utils.NewUnsupportedBoardError(task.Board)
	}

	scr, err := p.factory.ScraperFor(board)
	if err != nil {
		return nil, err
	}
	return scr.Search(ctx, board, task.Query)
}

// processListings runs the post-scrape phases: sanitize, fake-filter,
// dedupe, score. Returns the enriched listings and the within-run
// duplicate count.
func (p *Pipeline) processListings(ctx context.Context, profile *models.CandidateProfile, raw []models.JobListing) ([]models.EnhancedJobListing, int) {
	if len(raw) == 0 {
		return nil, 0
	}

	clean := p.sanitizer.SanitizeListings(raw)
	filtered := p.fakeFilter.Filter(clean)
	deduped, duplicates := sanitize.DedupeWithinRun(filtered.Accepted)

	for i := range deduped {
		if deduped[i].ID == "" {
			deduped[i].ID = uuid.New().String()
		}
	}

	results := p.scoreListings(ctx, profile, deduped)

	enhanced := make([]models.EnhancedJobListing, 0, len(deduped))
	for _, listing := range deduped {
		e := models.NewEnhancedListing(listing)
		e.Seniority = match.InferSeniority(listing)
		e.CompanySize = match.InferCompanySize(listing)
		if result, ok := results[listing.ID]; ok {
			score := result.match.Score
			e.MatchScore = &score
			e.ScoreSource = result.source
			summary := result.match
			e.MatchSummary = &summary
		}
		enhanced = append(enhanced, e)
	}
	return enhanced, duplicates
}

type scoredResult struct {
	match  models.JobMatchResult
	source string
}

// scoreListings scores every listing heuristically, then lets the AI
// rescorer override the whole batch. Any rescorer failure falls back
// to the heuristic scores for all listings.
func (p *Pipeline) scoreListings(ctx context.Context, profile *models.CandidateProfile, listings []models.JobListing) map[string]scoredResult {
	results := make(map[string]scoredResult, len(listings))
	for _, listing := range listings {
		results[listing.ID] = scoredResult{
			match:  match.ScoreJob(profile, listing, p.matchOpts),
			source: "heuristic",
		}
	}

	if p.rescorer == nil || ctx.Err() != nil || len(listings) == 0 {
		return results
	}

	// Bounded by the rescore timeout but still tied to the run, so a
	// cancelled run does not sit out the full timeout
	rescoreCtx, cancel := context.WithTimeout(ctx, p.cfg.Rescorer.Timeout)
	defer cancel()

	aiResults, err := p.rescorer.Rescore(rescoreCtx, profile, listings)
	if err != nil {
		p.logger.Warn("AI rescoring failed, keeping heuristic scores", map[string]interface{}{
			"listings": len(listings),
			"error":    err.Error(),
		})
		return results
	}

	for id, aiMatch := range aiResults {
		if _, ok := results[id]; !ok {
			continue
		}
		results[id] = scoredResult{match: aiMatch, source: "ai"}
	}
	return results
}

// persistListings writes the run's listings to the store using the
// configured policy
func (p *Pipeline) persistListings(userID string, listings []models.EnhancedJobListing) (added, duplicates int) {
	if len(listings) == 0 {
		return 0, 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if p.cfg.Store.ReplacePolicy {
		added, err = p.store.ReplaceListings(ctx, userID, listings)
	} else {
		added, duplicates, err = p.store.AddListings(ctx, userID, listings)
	}
	if err != nil {
		p.logger.Error("Failed to persist listings", map[string]interface{}{
			"user":  userID,
			"error": err.Error(),
		})
		return 0, 0
	}
	return added, duplicates
}

func (p *Pipeline) finalStatus(ctx context.Context, plan *models.ScrapePlan) models.PlanStatus {
	if ctx.Err() != nil {
		return models.PlanCancelled
	}
	if len(plan.Tasks) > 0 && plan.TasksFailed == len(plan.Tasks) {
		return models.PlanFailed
	}
	return models.PlanCompleted
}

// savePlan persists a snapshot of the plan, logging on failure.
// Persistence uses its own context so a cancelled run still records
// its final state.
func (p *Pipeline) savePlan(plan *models.ScrapePlan) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.store.SaveScrapePlan(ctx, plan.UserID, plan); err != nil {
		p.logger.Error("Failed to save scrape plan", map[string]interface{}{
			"plan_id": plan.ID,
			"error":   err.Error(),
		})
	}
}

func (p *Pipeline) appendHistory(plan *models.ScrapePlan) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := models.HistoryEntry{
		PlanID:         plan.ID,
		Mode:           plan.Mode,
		Status:         plan.Status,
		TotalJobsFound: plan.TotalJobsFound,
		NewJobsAdded:   plan.NewJobsAdded,
		TasksFailed:    plan.TasksFailed,
		CompletedAt:    time.Now(),
	}
	if err := p.store.AppendHistoryEntry(ctx, plan.UserID, entry); err != nil {
		p.logger.Error("Failed to append history entry", map[string]interface{}{
			"plan_id": plan.ID,
			"error":   err.Error(),
		})
	}
}
