package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// Rescorer calls an external AI matching service. Any failure is
// surfaced as an error so the caller can fall back to heuristic
// scoring for the whole batch; mixing AI and heuristic scores inside
// one run is deliberately impossible.
type Rescorer struct {
	baseURL  string
	minScore float64
	client   *http.Client
	logger   logging.Logger
}

// NewRescorer builds a client for the given backend. Timeout defaults
// to two minutes.
func NewRescorer(baseURL string, minScore float64, timeout time.Duration) *Rescorer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Rescorer{
		baseURL:  baseURL,
		minScore: minScore,
		client:   &http.Client{Timeout: timeout},
		logger:   logging.GetGlobalLogger(),
	}
}

// Wire contract of the external service: snake_case on the envelope
type rescoreRequest struct {
	Profile  *models.CandidateProfile `json:"profile"`
	Jobs     []models.JobListing      `json:"jobs"`
	MinScore float64                  `json:"min_score"`
}

type rescoreMatch struct {
	JobID          string   `json:"job_id"`
	Score          float64  `json:"score"`
	Reasoning      string   `json:"reasoning"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Recommendation string   `json:"recommendation"`
}

type rescoreResponse struct {
	Matches []rescoreMatch `json:"matches"`
}

// Rescore submits the batch and returns results keyed by job id. The
// response must cover every submitted job; an error (timeout, non-2xx,
// missing jobs in the result) means the caller must use heuristic
// scores for the entire batch.
func (r *Rescorer) Rescore(ctx context.Context, profile *models.CandidateProfile, listings []models.JobListing) (map[string]models.JobMatchResult, error) {
	if r.baseURL == "" {
		return nil, fmt.Errorf("rescorer not configured")
	}
	if len(listings) == 0 {
		return map[string]models.JobMatchResult{}, nil
	}

	body, err := json.Marshal(rescoreRequest{
		Profile:  profile,
		Jobs:     listings,
		MinScore: r.minScore,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling rescore request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/jobs/match", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rescore call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rescore backend returned %d", resp.StatusCode)
	}

	var parsed rescoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding rescore response: %w", err)
	}
	results := make(map[string]models.JobMatchResult, len(parsed.Matches))
	for _, m := range parsed.Matches {
		results[m.JobID] = models.JobMatchResult{
			JobID:          m.JobID,
			Score:          clamp(m.Score),
			Highlights:     m.Strengths,
			Concerns:       m.Gaps,
			Reasoning:      m.Reasoning,
			Recommendation: m.Recommendation,
		}
	}

	// A subset is as unusable as nothing: accepting it would leave the
	// uncovered jobs on heuristic scores, mixing sources within one run
	for _, listing := range listings {
		if _, ok := results[listing.ID]; !ok {
			return nil, fmt.Errorf("rescore backend covered %d of %d jobs", len(results), len(listings))
		}
	}

	r.logger.Info("AI rescore completed", map[string]interface{}{
		"jobs":     len(listings),
		"matches":  len(parsed.Matches),
		"duration": time.Since(start).String(),
	})
	return results, nil
}
