package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the endpoint and the collector.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeSimulated = "simulated"
)

// Metrics tracks lookups served by the verification endpoint.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Lookups        *prometheus.CounterVec
	LookupDuration prometheus.Histogram
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	Throttled      prometheus.Counter
}

// New registers the verification metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_verify_lookups_total",
			Help: "Verification lookups by outcome",
		}, []string{"outcome"}),
		LookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvass_verify_lookup_duration_seconds",
			Help:    "Duration of verification lookups including cache",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "canvass_verify_cache_hits_total",
			Help: "Verification lookups served from cache",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "canvass_verify_cache_misses_total",
			Help: "Verification lookups that missed the cache",
		}),
		Throttled: f.NewCounter(prometheus.CounterOpts{
			Name: "canvass_verify_throttled_total",
			Help: "Verification requests rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) RecordLookup(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) RecordThrottled() {
	if m == nil {
		return
	}
	m.Throttled.Inc()
}
