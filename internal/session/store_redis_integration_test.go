//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canvass/internal/domain"
	"canvass/internal/session"
	"canvass/pkg/platform/sentinel"
	"canvass/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	store := session.NewRedisStore(s.redis.Client, "default")
	want := &domain.Session{
		UserID:      "u-1",
		Email:       "field@example.org",
		AccessToken: "tok",
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	s.Require().NoError(store.Save(ctx, want))
	got, err := store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(want, got)

	s.Require().NoError(store.Clear(ctx))
	_, err = store.Load(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestProfilesAreIsolated() {
	ctx := context.Background()
	a := session.NewRedisStore(s.redis.Client, "a")
	b := session.NewRedisStore(s.redis.Client, "b")

	s.Require().NoError(a.Save(ctx, &domain.Session{Email: "a@example.org", AccessToken: "t"}))
	_, err := b.Load(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestExpiringSession() {
	ctx := context.Background()
	store := session.NewRedisStore(s.redis.Client, "ttl")
	s.Require().NoError(store.Save(ctx, &domain.Session{
		Email:       "a@example.org",
		AccessToken: "t",
		ExpiresAt:   time.Now().Add(time.Second),
	}))

	s.Eventually(func() bool {
		_, err := store.Load(ctx)
		return err != nil
	}, 5*time.Second, 200*time.Millisecond)
}
