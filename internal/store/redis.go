package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/internal/sanitize"
	"jobscout/pkg/models"
)

// RedisStore persists per-user state as JSON blobs in Redis. Listings
// and the current plan live at per-user keys; the run history is a
// bounded list.
type RedisStore struct {
	client       *redis.Client
	historyLimit int
	logger       logging.Logger

	// Guards read-modify-write cycles on the listings blob. The store
	// is process-local, so a plain mutex is enough.
	mu sync.Mutex
}

// NewRedisStore creates a Redis-backed store from the configuration
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	historyLimit := cfg.Store.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 50
	}

	return &RedisStore{
		client:       redis.NewClient(opts),
		historyLimit: historyLimit,
		logger:       logging.GetGlobalLogger(),
	}, nil
}

func listingsKey(userID string) string { return "jobscout:" + userID + ":listings" }
func planKey(userID string) string     { return "jobscout:" + userID + ":plan" }
func historyKey(userID string) string  { return "jobscout:" + userID + ":history" }

func (r *RedisStore) loadListings(ctx context.Context, userID string) ([]models.EnhancedJobListing, error) {
	raw, err := r.client.Get(ctx, listingsKey(userID)).Bytes()
	if err == redis.Nil {
		return []models.EnhancedJobListing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	var listings []models.EnhancedJobListing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode stored listings: %w", err)
	}
	return listings, nil
}

func (r *RedisStore) saveListings(ctx context.Context, userID string, listings []models.EnhancedJobListing) error {
	raw, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("failed to encode listings: %w", err)
	}
	if err := r.client.Set(ctx, listingsKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save listings: %w", err)
	}
	return nil
}

// GetListings returns all stored listings for a user
func (r *RedisStore) GetListings(ctx context.Context, userID string) ([]models.EnhancedJobListing, error) {
	return r.loadListings(ctx, userID)
}

// AddListings appends listings whose identity key has not been stored
// before
func (r *RedisStore) AddListings(ctx context.Context, userID string, listings []models.EnhancedJobListing) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.loadListings(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	keys := make(map[string]bool, len(stored))
	for _, l := range stored {
		keys[sanitize.ListingKey(l.JobListing)] = true
	}

	added, duplicates := 0, 0
	for _, listing := range listings {
		key := sanitize.ListingKey(listing.JobListing)
		if keys[key] {
			duplicates++
			continue
		}
		keys[key] = true
		stored = append(stored, listing)
		added++
	}

	if added > 0 {
		if err := r.saveListings(ctx, userID, stored); err != nil {
			return 0, 0, err
		}
	}
	return added, duplicates, nil
}

// ReplaceListings swaps the user's whole listing set
func (r *RedisStore) ReplaceListings(ctx context.Context, userID string, listings []models.EnhancedJobListing) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveListings(ctx, userID, listings); err != nil {
		return 0, err
	}
	return len(listings), nil
}

// UpdateListing mutates one listing's interaction state
func (r *RedisStore) UpdateListing(ctx context.Context, userID, listingID string, update ListingUpdate) (models.EnhancedJobListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.loadListings(ctx, userID)
	if err != nil {
		return models.EnhancedJobListing{}, err
	}

	for i := range stored {
		if stored[i].ID == listingID {
			applyUpdate(&stored[i], update)
			if err := r.saveListings(ctx, userID, stored); err != nil {
				return models.EnhancedJobListing{}, err
			}
			return stored[i], nil
		}
	}
	return models.EnhancedJobListing{}, ErrListingNotFound
}

// SaveScrapePlan persists the user's current plan
func (r *RedisStore) SaveScrapePlan(ctx context.Context, userID string, plan *models.ScrapePlan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := r.client.Set(ctx, planKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// GetCurrentScrapePlan returns the user's most recently saved plan
func (r *RedisStore) GetCurrentScrapePlan(ctx context.Context, userID string) (*models.ScrapePlan, error) {
	raw, err := r.client.Get(ctx, planKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoPlan
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var plan models.ScrapePlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode stored plan: %w", err)
	}
	return &plan, nil
}

// AppendHistoryEntry records one finished run in a bounded list
func (r *RedisStore) AppendHistoryEntry(ctx context.Context, userID string, entry models.HistoryEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	key := historyKey(userID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(r.historyLimit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// GetHistory returns finished runs, most recent first
func (r *RedisStore) GetHistory(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	raws, err := r.client.LRange(ctx, historyKey(userID), 0, int64(r.historyLimit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(raws))
	for _, raw := range raws {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			r.logger.Warn("Skipping undecodable history entry", map[string]interface{}{
				"user":  userID,
				"error": err.Error(),
			})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Ping verifies the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
