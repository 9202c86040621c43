package scraper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(60)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("swissdevjobs"), "request %d should be within burst", i+1)
	}
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1)

	allowed := 0
	for i := 0; i < 20; i++ {
		if rl.Allow("jobsch") {
			allowed++
		}
	}
	assert.LessOrEqual(t, allowed, 6, "burst of 5 plus at most one refill")
	assert.Greater(t, allowed, 0)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	rl := NewRateLimiter(600)
	boardErr := errors.New("connection refused")

	require.True(t, rl.Allow("jobup"))
	for i := 0; i < 5; i++ {
		rl.RecordFailure("jobup", boardErr)
	}

	assert.False(t, rl.Allow("jobup"), "circuit should be open after 5 failures")
	assert.True(t, rl.Allow("remoteok"), "other boards are unaffected")
}

func TestCircuitBreakerBelowThresholdStaysClosed(t *testing.T) {
	rl := NewRateLimiter(600)
	boardErr := errors.New("timeout")

	for i := 0; i < 4; i++ {
		rl.RecordFailure("weworkremotely", boardErr)
	}
	assert.True(t, rl.Allow("weworkremotely"))
}

func TestRateLimiterStats(t *testing.T) {
	rl := NewRateLimiter(600)

	rl.Allow("swissdevjobs")
	rl.Allow("swissdevjobs")
	rl.RecordFailure("swissdevjobs", errors.New("boom"))

	stats := rl.Stats()
	require.Contains(t, stats, "swissdevjobs")
	assert.Equal(t, int64(2), stats["swissdevjobs"]["requests"])
	assert.Equal(t, int64(1), stats["swissdevjobs"]["failures"])
}

func TestBoardNamesAreCaseInsensitive(t *testing.T) {
	rl := NewRateLimiter(600)

	rl.Allow("SwissDevJobs")
	rl.Allow("swissdevjobs")

	stats := rl.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats["swissdevjobs"]["requests"])
}
