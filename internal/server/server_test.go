package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/server/ratelimit"
)

func TestRateLimit_TooManyRequests(t *testing.T) {
	h := newTestHarness(t)
	h.server.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Rules: []ratelimit.Rule{
			{Path: "/sessions", Method: http.MethodPost, Limit: 5, Window: time.Hour, Burst: 1},
		},
	})
	t.Cleanup(h.server.rateLimiter.Stop)
	h.server.routes()

	rr := h.do(t, http.MethodPost, "/sessions", "", []byte(`{}`), "application/json")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "5", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = h.do(t, http.MethodPost, "/sessions", "", []byte(`{}`), "application/json")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "rate limit exceeded")

	// Other routes have their own buckets and stay reachable.
	rr = h.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	h := newTestHarness(t)

	for i := 0; i < 20; i++ {
		rr := h.do(t, http.MethodGet, "/health", "", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestClientAddr(t *testing.T) {
	req := httptestRequest(t, "203.0.113.7:52011")
	assert.Equal(t, "203.0.113.7", clientAddr(req))

	req = httptestRequest(t, "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientAddr(req))
}

func httptestRequest(t *testing.T, remoteAddr string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	req.RemoteAddr = remoteAddr
	return req
}
