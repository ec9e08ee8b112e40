package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"canvass/internal/platform/logger"
)

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(60, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per IP")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "refilled after one interval")
}

func TestRateLimitMiddleware(t *testing.T) {
	rejected := 0
	l := NewIPRateLimiter(1, 1)
	h := ClientMetadata()(RateLimit(l, logger.Discard(), func() { rejected++ })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	send := func(method, forwardedFor string) int {
		req := httptest.NewRequest(method, "/verify-voter", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost, ""))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, ""))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "203.0.113.50"), "forged forwarding header from an untrusted peer")
	assert.Equal(t, http.StatusOK, send(http.MethodOptions, ""), "preflight is never throttled")
	assert.Equal(t, 2, rejected)
}
