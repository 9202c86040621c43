package scraper

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobscout/internal/logging"
)

// CircuitState represents the state of a board's circuit breaker
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// boardLimiter tracks rate limiting state for one board
type boardLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
	failures int64
	mu       sync.RWMutex
}

// circuitBreaker trips after repeated failures against one board
type circuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	failureCount int
	lastFailTime time.Time
	state        CircuitState
	mu           sync.RWMutex
}

// RateLimiter manages rate limiting and circuit breaking per board.
// Boards that keep failing stop receiving requests for a cool-down
// period instead of burning the worker pool.
type RateLimiter struct {
	requestsPerMinute int
	boardLimiters     map[string]*boardLimiter
	circuitBreakers   map[string]*circuitBreaker
	mu                sync.Mutex
	logger            logging.Logger
}

// NewRateLimiter creates a rate limiter allowing requestsPerMinute per
// board
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		boardLimiters:     make(map[string]*boardLimiter),
		circuitBreakers:   make(map[string]*circuitBreaker),
		logger:            logging.GetGlobalLogger(),
	}
}

// Allow checks whether a request to the board may proceed
func (rl *RateLimiter) Allow(board string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	board = strings.ToLower(board)

	if !rl.circuitAllows(board) {
		rl.logger.Debug("Request rejected by circuit breaker", map[string]interface{}{
			"board": board,
		})
		return false
	}

	limiter := rl.getBoardLimiter(board)
	allowed := limiter.limiter.Allow()
	if allowed {
		limiter.mu.Lock()
		limiter.requests++
		limiter.lastSeen = time.Now()
		limiter.mu.Unlock()
	} else {
		rl.logger.Debug("Request rejected by rate limiter", map[string]interface{}{
			"board": board,
		})
	}
	return allowed
}

// RecordSuccess resets the board's circuit after a successful request
func (rl *RateLimiter) RecordSuccess(board string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	board = strings.ToLower(board)
	if cb, exists := rl.circuitBreakers[board]; exists {
		cb.mu.Lock()
		if cb.state == CircuitHalfOpen {
			cb.state = CircuitClosed
			cb.failureCount = 0
			rl.logger.Info("Circuit breaker closed after successful request", map[string]interface{}{
				"board": board,
			})
		}
		cb.mu.Unlock()
	}
}

// RecordFailure counts a failed request and may open the circuit
func (rl *RateLimiter) RecordFailure(board string, err error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	board = strings.ToLower(board)

	if limiter, exists := rl.boardLimiters[board]; exists {
		limiter.mu.Lock()
		limiter.failures++
		limiter.mu.Unlock()
	}

	cb := rl.getCircuitBreaker(board)
	cb.mu.Lock()
	cb.failureCount++
	cb.lastFailTime = time.Now()
	if cb.failureCount >= cb.maxFailures && cb.state == CircuitClosed {
		cb.state = CircuitOpen
		rl.logger.Warn("Circuit breaker opened due to failures", map[string]interface{}{
			"board":    board,
			"failures": cb.failureCount,
			"error":    err.Error(),
		})
	}
	cb.mu.Unlock()
}

func (rl *RateLimiter) circuitAllows(board string) bool {
	cb, exists := rl.circuitBreakers[board]
	if !exists {
		return true
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.lastFailTime) >= cb.resetTimeout {
			cb.state = CircuitHalfOpen
			rl.logger.Info("Circuit breaker half-open, probing board", map[string]interface{}{
				"board": board,
			})
			return true
		}
		return false
	case CircuitHalfOpen:
		return true
	default:
		return true
	}
}

func (rl *RateLimiter) getBoardLimiter(board string) *boardLimiter {
	if limiter, exists := rl.boardLimiters[board]; exists {
		return limiter
	}

	rps := rate.Limit(float64(rl.requestsPerMinute) / 60.0)
	limiter := &boardLimiter{
		limiter:  rate.NewLimiter(rps, 5),
		lastSeen: time.Now(),
	}
	rl.boardLimiters[board] = limiter
	return limiter
}

func (rl *RateLimiter) getCircuitBreaker(board string) *circuitBreaker {
	if cb, exists := rl.circuitBreakers[board]; exists {
		return cb
	}

	cb := &circuitBreaker{
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		state:        CircuitClosed,
	}
	rl.circuitBreakers[board] = cb
	return cb
}

// Stats reports per-board request/failure counters
func (rl *RateLimiter) Stats() map[string]map[string]int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := make(map[string]map[string]int64, len(rl.boardLimiters))
	for board, limiter := range rl.boardLimiters {
		limiter.mu.RLock()
		stats[board] = map[string]int64{
			"requests": limiter.requests,
			"failures": limiter.failures,
		}
		limiter.mu.RUnlock()
	}
	return stats
}
