package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// TaskOutcome is the result of executing one scrape task
type TaskOutcome struct {
	Listings []models.JobListing
	Err      error
	Skipped  bool
}

// Executor runs scrape tasks with a bounded number of workers. Workers
// pull the next task index from a shared counter, so faster workers
// pick up more tasks. Results come back in input order regardless of
// completion order.
type Executor struct {
	workers int
	logger  logging.Logger
}

// NewExecutor creates an executor with the given worker count
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = 2
	}
	return &Executor{
		workers: workers,
		logger:  logging.GetGlobalLogger(),
	}
}

// Run executes work for indexes 0..n-1 and returns the outcomes in
// index order. onDone fires exactly once per index, from the worker
// that ran it, as soon as its outcome is known. After ctx is
// cancelled, not-yet-started tasks are marked skipped without calling
// work.
func (e *Executor) Run(ctx context.Context, n int, work func(ctx context.Context, index int) ([]models.JobListing, error), onDone func(index int, outcome TaskOutcome)) []TaskOutcome {
	outcomes := make([]TaskOutcome, n)
	if n == 0 {
		return outcomes
	}

	var next int64
	var wg sync.WaitGroup

	workers := e.workers
	if workers > n {
		workers = n
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				index := int(atomic.AddInt64(&next, 1)) - 1
				if index >= n {
					return
				}

				var outcome TaskOutcome
				if ctx.Err() != nil {
					outcome = TaskOutcome{Skipped: true}
				} else {
					outcome = e.runOne(ctx, index, work)
				}

				outcomes[index] = outcome
				if onDone != nil {
					onDone(index, outcome)
				}
			}
		}()
	}

	wg.Wait()
	return outcomes
}

// runOne executes one task, converting panics into task errors so one
// misbehaving board cannot take down the run
func (e *Executor) runOne(ctx context.Context, index int, work func(ctx context.Context, index int) ([]models.JobListing, error)) (outcome TaskOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Scrape task panicked", map[string]interface{}{
				"index": index,
				"panic": fmt.Sprintf("%v", r),
			})
			outcome = TaskOutcome{Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()

	listings, err := work(ctx, index)
	return TaskOutcome{Listings: listings, Err: err}
}
