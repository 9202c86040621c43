package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/pkg/models"
)

func storedListing(id, title, company, location string) models.EnhancedJobListing {
	return models.NewEnhancedListing(models.JobListing{
		ID:         id,
		Title:      title,
		Company:    company,
		Location:   location,
		SourceSite: "swissdevjobs",
		ScrapedAt:  time.Now(),
	})
}

func TestAddListingsCountsDuplicatesAcrossCalls(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	added, dups, err := s.AddListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("a", "ML Engineer", "Acme Corp", "Zurich"),
		storedListing("b", "Data Engineer", "Beta AG", "Bern"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, dups)

	// Same roles again, one with cosmetic differences in the identity
	// fields
	added, dups, err = s.AddListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("c", "ML Engineer", "Acme Corp.", "Zürich"),
		storedListing("d", "Platform Engineer", "Gamma GmbH", "Basel"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, dups)

	listings, err := s.GetListings(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestListingsAreIsolatedPerUser(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	_, _, err := s.AddListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("a", "ML Engineer", "Acme Corp", "Zurich"),
	})
	require.NoError(t, err)

	added, dups, err := s.AddListings(ctx, "user-2", []models.EnhancedJobListing{
		storedListing("b", "ML Engineer", "Acme Corp", "Zurich"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 0, dups)
}

func TestReplaceListingsResetsDedupeState(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	_, _, err := s.AddListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("a", "ML Engineer", "Acme Corp", "Zurich"),
	})
	require.NoError(t, err)

	count, err := s.ReplaceListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("b", "Data Engineer", "Beta AG", "Bern"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The replaced-away listing is addable again
	added, dups, err := s.AddListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("c", "ML Engineer", "Acme Corp", "Zurich"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 0, dups)
}

func TestUpdateListingStampsTransitionTimes(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	_, _, err := s.AddListings(ctx, "user-1", []models.EnhancedJobListing{
		storedListing("a", "ML Engineer", "Acme Corp", "Zurich"),
	})
	require.NoError(t, err)

	saved := models.ListingSaved
	updated, err := s.UpdateListing(ctx, "user-1", "a", ListingUpdate{Status: &saved})
	require.NoError(t, err)
	assert.Equal(t, models.ListingSaved, updated.Status)
	require.NotNil(t, updated.SavedAt)
	assert.Nil(t, updated.ViewedAt)

	notes := "referred by Dana"
	updated, err = s.UpdateListing(ctx, "user-1", "a", ListingUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "referred by Dana", updated.Notes)
	assert.Equal(t, models.ListingSaved, updated.Status, "notes-only update leaves status alone")
}

func TestUpdateListingNotFound(t *testing.T) {
	s := NewMemoryStore(10)

	_, err := s.UpdateListing(context.Background(), "user-1", "missing", ListingUpdate{})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestPlanRoundTripReturnsClones(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	plan := &models.ScrapePlan{
		ID:     "plan-1",
		UserID: "user-1",
		Mode:   models.ModeQuick,
		Status: models.PlanRunning,
		Tasks: []models.ScrapeTask{
			{ID: "t1", Board: "swissdevjobs", Status: models.TaskRunning},
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveScrapePlan(ctx, "user-1", plan))

	// Mutating the original after saving must not leak into the store
	plan.Tasks[0].Status = models.TaskFailed

	got, err := s.GetCurrentScrapePlan(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskRunning, got.Tasks[0].Status)

	// Nor must mutating what the store handed out
	got.Status = models.PlanFailed
	again, err := s.GetCurrentScrapePlan(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanRunning, again.Status)
}

func TestGetCurrentScrapePlanMissing(t *testing.T) {
	s := NewMemoryStore(10)

	_, err := s.GetCurrentScrapePlan(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoPlan)
}

func TestHistoryIsBoundedAndNewestFirst(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.AppendHistoryEntry(ctx, "user-1", models.HistoryEntry{
			PlanID:      string(rune('a' + i)),
			Status:      models.PlanCompleted,
			CompletedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	history, err := s.GetHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "e", history[0].PlanID)
	assert.Equal(t, "c", history[2].PlanID)
}
