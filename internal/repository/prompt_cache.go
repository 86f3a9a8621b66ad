package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPromptTTL = 30 * time.Minute

// PromptCache keeps the rendered global prompt per campaign so the batch is
// not re-ranked on every request.
type PromptCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func promptKey(campaignID string) string {
	return "prompt:global:" + campaignID
}

// Get returns the cached prompt and whether it was present.
func (c *PromptCache) Get(ctx context.Context, campaignID string) (string, bool, error) {
	val, err := c.Client.Get(ctx, promptKey(campaignID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *PromptCache) Set(ctx context.Context, campaignID, prompt string) error {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultPromptTTL
	}
	return c.Client.Set(ctx, promptKey(campaignID), prompt, ttl).Err()
}

// Invalidate drops the cached prompt, e.g. after a campaign is re-scored.
func (c *PromptCache) Invalidate(ctx context.Context, campaignID string) error {
	return c.Client.Del(ctx, promptKey(campaignID)).Err()
}
