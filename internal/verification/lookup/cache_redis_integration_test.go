//go:build integration

package lookup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canvass/internal/domain"
	"canvass/internal/verification/lookup"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
	"canvass/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *lookup.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = lookup.NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	result := domain.VerificationResult{
		Status:         domain.VerificationSuccess,
		IdentityNumber: "9205155800086",
		Ward:           "Ward 12",
		VotingDistrict: "VD 1234",
	}

	s.Require().NoError(s.cache.Save(ctx, result))

	found, err := s.cache.Find(ctx, id.IdentityNumber("9205155800086"))
	s.Require().NoError(err)
	s.Equal(result, found)
}

func (s *RedisCacheSuite) TestMiss() {
	_, err := s.cache.Find(context.Background(), id.IdentityNumber("0001010000000"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestExpiry() {
	ctx := context.Background()
	short := lookup.NewRedisCache(s.redis.Client, time.Second)
	s.Require().NoError(short.Save(ctx, domain.VerificationResult{IdentityNumber: "9001010000000"}))

	s.Eventually(func() bool {
		_, err := short.Find(ctx, id.IdentityNumber("9001010000000"))
		return err != nil
	}, 5*time.Second, 200*time.Millisecond)
}
