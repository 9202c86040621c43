package store

import (
	"context"
	"sync"

	"jobscout/internal/sanitize"
	"jobscout/pkg/models"
)

// userData holds everything stored for one user
type userData struct {
	listings []models.EnhancedJobListing
	keys     map[string]bool
	plan     *models.ScrapePlan
	history  []models.HistoryEntry
}

// MemoryStore is the in-memory Store used for development and tests
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*userData
	historyLimit int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &MemoryStore{
		users:        make(map[string]*userData),
		historyLimit: historyLimit,
	}
}

func (m *MemoryStore) user(userID string) *userData {
	u, ok := m.users[userID]
	if !ok {
		u = &userData{keys: make(map[string]bool)}
		m.users[userID] = u
	}
	return u
}

// GetListings returns all stored listings for a user
func (m *MemoryStore) GetListings(_ context.Context, userID string) ([]models.EnhancedJobListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return []models.EnhancedJobListing{}, nil
	}
	out := make([]models.EnhancedJobListing, len(u.listings))
	copy(out, u.listings)
	return out, nil
}

// AddListings appends listings whose identity key has not been stored
// before. Duplicates are counted, not stored.
func (m *MemoryStore) AddListings(_ context.Context, userID string, listings []models.EnhancedJobListing) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	added, duplicates := 0, 0
	for _, listing := range listings {
		key := sanitize.ListingKey(listing.JobListing)
		if u.keys[key] {
			duplicates++
			continue
		}
		u.keys[key] = true
		u.listings = append(u.listings, listing)
		added++
	}
	return added, duplicates, nil
}

// ReplaceListings swaps the user's whole listing set
func (m *MemoryStore) ReplaceListings(_ context.Context, userID string, listings []models.EnhancedJobListing) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	u.listings = make([]models.EnhancedJobListing, len(listings))
	copy(u.listings, listings)
	u.keys = make(map[string]bool, len(listings))
	for _, listing := range listings {
		u.keys[sanitize.ListingKey(listing.JobListing)] = true
	}
	return len(u.listings), nil
}

// UpdateListing mutates one listing's interaction state
func (m *MemoryStore) UpdateListing(_ context.Context, userID, listingID string, update ListingUpdate) (models.EnhancedJobListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return models.EnhancedJobListing{}, ErrListingNotFound
	}
	for i := range u.listings {
		if u.listings[i].ID == listingID {
			applyUpdate(&u.listings[i], update)
			return u.listings[i], nil
		}
	}
	return models.EnhancedJobListing{}, ErrListingNotFound
}

// SaveScrapePlan persists the user's current plan
func (m *MemoryStore) SaveScrapePlan(_ context.Context, userID string, plan *models.ScrapePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user(userID).plan = plan.Clone()
	return nil
}

// GetCurrentScrapePlan returns the user's most recently saved plan
func (m *MemoryStore) GetCurrentScrapePlan(_ context.Context, userID string) (*models.ScrapePlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok || u.plan == nil {
		return nil, ErrNoPlan
	}
	return u.plan.Clone(), nil
}

// AppendHistoryEntry records one finished run, newest first
func (m *MemoryStore) AppendHistoryEntry(_ context.Context, userID string, entry models.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	u.history = append([]models.HistoryEntry{entry}, u.history...)
	if len(u.history) > m.historyLimit {
		u.history = u.history[:m.historyLimit]
	}
	return nil
}

// GetHistory returns finished runs, most recent first
func (m *MemoryStore) GetHistory(_ context.Context, userID string) ([]models.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return []models.HistoryEntry{}, nil
	}
	out := make([]models.HistoryEntry, len(u.history))
	copy(out, u.history)
	return out, nil
}

// Ping always succeeds for the in-memory store
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store
func (m *MemoryStore) Close() error { return nil }
