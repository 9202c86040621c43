package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/pkg/models"
)

func TestExecutorPreservesInputOrder(t *testing.T) {
	e := NewExecutor(2)

	// Earlier tasks sleep longer, so completion order inverts input
	// order
	outcomes := e.Run(context.Background(), 4, func(_ context.Context, i int) ([]models.JobListing, error) {
		time.Sleep(time.Duration(4-i) * 10 * time.Millisecond)
		return []models.JobListing{{Title: fmt.Sprintf("job-%d", i)}}, nil
	}, nil)

	require.Len(t, outcomes, 4)
	for i, outcome := range outcomes {
		require.Len(t, outcome.Listings, 1)
		assert.Equal(t, fmt.Sprintf("job-%d", i), outcome.Listings[0].Title)
	}
}

func TestExecutorBoundsConcurrency(t *testing.T) {
	e := NewExecutor(2)

	var running, peak int64
	e.Run(context.Background(), 8, func(_ context.Context, _ int) ([]models.JobListing, error) {
		n := atomic.AddInt64(&running, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&running, -1)
		return nil, nil
	}, nil)

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestExecutorCallsOnDoneExactlyOncePerTask(t *testing.T) {
	e := NewExecutor(2)

	var mu sync.Mutex
	calls := make(map[int]int)
	e.Run(context.Background(), 6, func(_ context.Context, i int) ([]models.JobListing, error) {
		if i%2 == 0 {
			return nil, fmt.Errorf("task %d failed", i)
		}
		return nil, nil
	}, func(i int, _ TaskOutcome) {
		mu.Lock()
		calls[i]++
		mu.Unlock()
	})

	require.Len(t, calls, 6)
	for i, n := range calls {
		assert.Equal(t, 1, n, "task %d", i)
	}
}

func TestExecutorSkipsUnstartedTasksOnCancel(t *testing.T) {
	e := NewExecutor(2)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 16)

	outcomes := e.Run(ctx, 10, func(_ context.Context, i int) ([]models.JobListing, error) {
		started <- struct{}{}
		if i < 2 {
			cancel()
		}
		time.Sleep(10 * time.Millisecond)
		return []models.JobListing{{Title: "found"}}, nil
	}, nil)

	skipped := 0
	completed := 0
	for _, o := range outcomes {
		if o.Skipped {
			skipped++
			assert.Nil(t, o.Listings)
		} else {
			completed++
		}
	}
	assert.Greater(t, skipped, 0, "tasks after cancellation must be skipped")
	assert.Greater(t, completed, 0)
	assert.Equal(t, 10, skipped+completed)
}

func TestExecutorRecoversFromPanics(t *testing.T) {
	e := NewExecutor(2)

	outcomes := e.Run(context.Background(), 3, func(_ context.Context, i int) ([]models.JobListing, error) {
		if i == 1 {
			panic("board adapter exploded")
		}
		return []models.JobListing{{Title: "ok"}}, nil
	}, nil)

	require.NoError(t, outcomes[0].Err)
	require.Error(t, outcomes[1].Err)
	assert.Contains(t, outcomes[1].Err.Error(), "board adapter exploded")
	require.NoError(t, outcomes[2].Err)
}

func TestExecutorZeroTasks(t *testing.T) {
	e := NewExecutor(2)

	outcomes := e.Run(context.Background(), 0, func(_ context.Context, _ int) ([]models.JobListing, error) {
		t.Fatal("work must not be called")
		return nil, nil
	}, nil)
	assert.Empty(t, outcomes)
}
