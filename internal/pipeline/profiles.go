package pipeline

import (
	"sync"

	"jobscout/pkg/models"
)

// ProfileCache remembers the most recent profile submitted per user so
// scheduled re-scans can run without a new submission
type ProfileCache struct {
	mu       sync.RWMutex
	profiles map[string]*models.CandidateProfile
}

// NewProfileCache creates an empty cache
func NewProfileCache() *ProfileCache {
	return &ProfileCache{profiles: make(map[string]*models.CandidateProfile)}
}

// Put stores the profile under its user ID
func (c *ProfileCache) Put(profile *models.CandidateProfile) {
	if profile == nil || profile.UserID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[profile.UserID] = profile
}

// Get returns the last profile seen for a user
func (c *ProfileCache) Get(userID string) (*models.CandidateProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	profile, ok := c.profiles[userID]
	return profile, ok
}
