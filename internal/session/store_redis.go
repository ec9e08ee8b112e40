package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"canvass/internal/domain"
	"canvass/pkg/platform/sentinel"
)

const redisKeyPrefix = "canvass:session:"

// RedisStore keeps the session under one key per operator profile. Sessions
// with an expiry are stored with a matching TTL.
type RedisStore struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

func NewRedisStore(client redis.Cmdable, profile string) *RedisStore {
	return &RedisStore{client: client, key: redisKeyPrefix + profile, now: time.Now}
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(payload)
}

func (s *RedisStore) Save(ctx context.Context, sess *domain.Session) error {
	payload, err := encode(sess)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Clear(ctx)
		}
	}
	if err := s.client.Set(ctx, s.key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
