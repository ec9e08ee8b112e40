package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
)

const redisKeyPrefix = "canvass:verify:"

// RedisCache stores results as JSON with a Redis-side TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Save(ctx context.Context, result domain.VerificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal verification result: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+result.IdentityNumber, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("save verification result: %w", err)
	}
	return nil
}

func (c *RedisCache) Find(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+n.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.VerificationResult{}, sentinel.ErrNotFound
		}
		return domain.VerificationResult{}, fmt.Errorf("find verification result: %w", err)
	}
	var result domain.VerificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.VerificationResult{}, fmt.Errorf("decode verification result: %w", errors.Join(sentinel.ErrCorrupt, err))
	}
	return result, nil
}
