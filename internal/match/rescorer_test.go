package match

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/pkg/models"
)

func TestRescoreSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/jobs/match", r.URL.Path)

		var req map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "profile")
		assert.Contains(t, req, "jobs")
		assert.Contains(t, req, "min_score")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"matches": []map[string]interface{}{
				{
					"job_id":         "job-1",
					"score":          87.5,
					"reasoning":      "Close skills alignment",
					"strengths":      []string{"Python depth"},
					"gaps":           []string{"No Kubernetes"},
					"recommendation": "apply",
				},
			},
		})
	}))
	defer server.Close()

	r := NewRescorer(server.URL, 0, 5*time.Second)
	results, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing()})
	require.NoError(t, err)
	require.Contains(t, results, "job-1")

	match := results["job-1"]
	assert.InDelta(t, 87.5, match.Score, 0.01)
	assert.Equal(t, "Close skills alignment", match.Reasoning)
	assert.Equal(t, "apply", match.Recommendation)
	assert.Contains(t, match.Highlights, "Python depth")
	assert.Contains(t, match.Concerns, "No Kubernetes")
}

func TestRescoreFailuresReturnError(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		r := NewRescorer(server.URL, 0, 5*time.Second)
		_, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing()})
		assert.Error(t, err)
	})

	t.Run("empty matches", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"matches": []}`))
		}))
		defer server.Close()

		r := NewRescorer(server.URL, 0, 5*time.Second)
		_, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing()})
		assert.Error(t, err)
	})

	t.Run("partial coverage", func(t *testing.T) {
		// Scores for a subset are unusable: accepting them would mix AI
		// and heuristic scores within one batch
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"matches": [{"job_id": "job-1", "score": 80, "recommendation": "apply"}]}`))
		}))
		defer server.Close()

		second := mlListing()
		second.ID = "job-2"

		r := NewRescorer(server.URL, 60, 5*time.Second)
		_, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing(), second})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "covered 1 of 2")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer server.Close()

		r := NewRescorer(server.URL, 0, 50*time.Millisecond)
		_, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing()})
		assert.Error(t, err)
	})

	t.Run("unconfigured", func(t *testing.T) {
		r := NewRescorer("", 0, time.Second)
		_, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing()})
		assert.Error(t, err)
	})
}

func TestRescoreClampsScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"matches": [{"job_id": "job-1", "score": 140}]}`))
	}))
	defer server.Close()

	r := NewRescorer(server.URL, 0, 5*time.Second)
	results, err := r.Rescore(context.Background(), mlProfile(), []models.JobListing{mlListing()})
	require.NoError(t, err)
	assert.InDelta(t, 100, results["job-1"].Score, 0.01)
}
