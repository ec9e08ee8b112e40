// Package lookup resolves identity numbers to voter locations for the
// verification endpoint, with an optional result cache in front of the source.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"canvass/internal/domain"
	"canvass/internal/verification/metrics"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
	"canvass/pkg/requestcontext"
)

// Source produces a verification result for an identity number.
type Source interface {
	Lookup(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error)
}

// Cache stores results by identity number. Find returns sentinel.ErrNotFound
// on a miss or an expired entry.
type Cache interface {
	Find(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error)
	Save(ctx context.Context, result domain.VerificationResult) error
}

// Service coordinates lookups with caching.
type Service struct {
	source  Source
	cache   Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify returns the cached result for n when present, otherwise asks the
// source and caches a successful answer. Cache failures never fail the lookup.
func (s *Service) Verify(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error) {
	start := time.Now()
	if s.cache != nil {
		cached, err := s.cache.Find(ctx, n)
		switch {
		case err == nil:
			s.metrics.RecordCacheHit()
			s.metrics.RecordLookup(metrics.OutcomeSuccess, start)
			return cached, nil
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.RecordCacheMiss()
		default:
			s.logger.WarnContext(ctx, "verification cache read failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	result, err := s.source.Lookup(ctx, n)
	if err != nil {
		s.metrics.RecordLookup(metrics.OutcomeError, start)
		return domain.VerificationResult{}, err
	}
	s.metrics.RecordLookup(metrics.OutcomeSuccess, start)

	if s.cache != nil && result.Succeeded() {
		if err := s.cache.Save(ctx, result); err != nil {
			s.logger.WarnContext(ctx, "verification cache write failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return result, nil
}
