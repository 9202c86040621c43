package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobscout/internal/config"
	"jobscout/pkg/models"
)

// Sentinel errors returned by all store implementations
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNoPlan          = errors.New("no scrape plan for user")
)

// ListingUpdate carries the mutable interaction fields of a stored
// listing. Nil fields are left untouched.
type ListingUpdate struct {
	Status *models.ListingStatus
	Notes  *string
}

// Store persists per-user listings, the current scrape plan, and the
// run history
type Store interface {
	// GetListings returns all stored listings for a user
	GetListings(ctx context.Context, userID string) ([]models.EnhancedJobListing, error)

	// AddListings appends listings the user has not seen before.
	// Returns how many were added and how many were duplicates of
	// already-stored listings.
	AddListings(ctx context.Context, userID string, listings []models.EnhancedJobListing) (added, duplicates int, err error)

	// ReplaceListings swaps the user's whole listing set and returns
	// the new count
	ReplaceListings(ctx context.Context, userID string, listings []models.EnhancedJobListing) (int, error)

	// UpdateListing mutates one listing's interaction state
	UpdateListing(ctx context.Context, userID, listingID string, update ListingUpdate) (models.EnhancedJobListing, error)

	// SaveScrapePlan persists the user's current plan
	SaveScrapePlan(ctx context.Context, userID string, plan *models.ScrapePlan) error

	// GetCurrentScrapePlan returns the user's most recently saved plan
	GetCurrentScrapePlan(ctx context.Context, userID string) (*models.ScrapePlan, error)

	// AppendHistoryEntry records one finished run
	AppendHistoryEntry(ctx context.Context, userID string, entry models.HistoryEntry) error

	// GetHistory returns finished runs, most recent first
	GetHistory(ctx context.Context, userID string) ([]models.HistoryEntry, error)

	// Ping verifies the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases the store's resources
	Close() error
}

// New creates the store implementation named by the configuration
func New(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.Store.HistoryLimit), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// applyUpdate mutates a listing in place, stamping the transition time
// for statuses that track one
func applyUpdate(listing *models.EnhancedJobListing, update ListingUpdate) {
	if update.Status != nil && *update.Status != listing.Status {
		listing.Status = *update.Status
		now := time.Now()
		switch *update.Status {
		case models.ListingViewed:
			listing.ViewedAt = &now
		case models.ListingSaved:
			listing.SavedAt = &now
		case models.ListingApplied:
			listing.AppliedAt = &now
		}
	}
	if update.Notes != nil {
		listing.Notes = *update.Notes
	}
}
