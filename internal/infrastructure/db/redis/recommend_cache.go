package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linguameet/linguameet-api/internal/core/domain"
)

const recommendTTL = 30 * time.Second

// RecommendationCache stores serialized recommendation lists per user with
// a short TTL. Key format: recommend:<user_id>
type RecommendationCache struct {
	client *redis.Client
}

// NewRecommendationCache creates a RecommendationCache wrapping the given
// Redis client.
func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{client: client}
}

// Get returns the cached list for userID, with hit=false on a miss.
func (c *RecommendationCache) Get(ctx context.Context, userID string) ([]*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("recommendation cache get: %w", err)
	}

	var users []*domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, false, fmt.Errorf("recommendation cache decode: %w", err)
	}
	return users, true, nil
}

// Set stores the list for userID, expiring after recommendTTL.
func (c *RecommendationCache) Set(ctx context.Context, userID string, users []*domain.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("recommendation cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(userID), raw, recommendTTL).Err()
}

// Invalidate drops the cached lists for the given users. Called after an
// accepted request changes both friend sets.
func (c *RecommendationCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RecommendationCache) key(userID string) string {
	return "recommend:" + userID
}
