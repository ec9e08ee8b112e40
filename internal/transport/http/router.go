package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	platformmetrics "canvass/internal/platform/metrics"
	"canvass/internal/platform/middleware"
	"canvass/internal/verification/handler"
	"canvass/internal/verification/metrics"
)

// NewRouter wires the verification endpoint, health and metrics behind the
// shared middleware chain. limiter may be nil to disable throttling; client
// addresses are taken from forwarding headers only behind trustedProxies.
func NewRouter(
	logger *slog.Logger,
	verify *handler.Handler,
	reg *prometheus.Registry,
	limiter *middleware.IPRateLimiter,
	m *metrics.Metrics,
	trustedProxies []netip.Prefix,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata(trustedProxies...))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.CORS)

	var verifyMW []func(http.Handler) http.Handler
	if limiter != nil {
		verifyMW = append(verifyMW, middleware.RateLimit(limiter, logger, m.RecordThrottled))
	}
	verify.Register(r, verifyMW...)

	r.Method(http.MethodGet, "/metrics", platformmetrics.Handler(reg))
	return r
}
