package httptransport

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"canvass/internal/platform/logger"
	platformmetrics "canvass/internal/platform/metrics"
	"canvass/internal/platform/middleware"
	"canvass/internal/verification/handler"
	"canvass/internal/verification/lookup"
	"canvass/internal/verification/metrics"
	"canvass/pkg/testutil"
)

func newTestRouter(limiter *middleware.IPRateLimiter) (http.Handler, *prometheus.Registry) {
	reg := platformmetrics.NewRegistry()
	m := metrics.New(reg)
	svc := lookup.NewService(lookup.CannedSource{}, lookup.WithMetrics(m))
	return NewRouter(logger.Discard(), handler.New(svc, logger.Discard()), reg, limiter, m, nil), reg
}

func TestRouter(t *testing.T) {
	router, _ := newTestRouter(nil)

	testutil.Given(t, "the verification router", func(t *testing.T) {
		testutil.When(t, "a method other than POST hits /verify-voter", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/verify-voter"))

			testutil.Then(t, "it answers 405 with CORS headers", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
				testutil.AssertCORS(t, rr)
			})
		})

		testutil.When(t, "a valid lookup is posted", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/verify-voter", map[string]string{"id_number": "9205155800086"})
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it answers 200 with a request id and CORS headers", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertCORS(t, rr)
				assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
			})
		})

		testutil.When(t, "metrics are scraped", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "lookup counters are exposed", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.Contains(t, rr.Body.String(), "canvass_verify_lookups_total")
			})
		})
	})
}

func TestRouterThrottlesVerify(t *testing.T) {
	router, reg := newTestRouter(middleware.NewIPRateLimiter(1, 1))

	post := func() int {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify-voter", map[string]string{"id_number": "9205155800086"})
		req.RemoteAddr = "198.51.100.4:1234"
		return testutil.DoRequest(router, req).Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatusOK(t, rr)

	families, err := reg.Gather()
	assert.NoError(t, err)
	var throttled float64
	for _, f := range families {
		if f.GetName() == "canvass_verify_throttled_total" {
			throttled = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, throttled)
}
