package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientLimiter_PerClient(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewClientLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refilled")
}

func TestClientLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(idleLimiterTTL + time.Minute)
	l.Allow("b")

	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewClientLimiter(0.001, 1)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RateLimitMiddleware(l, log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/functions/v1/get-admin-stats", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1:2000"), "port does not identify the client")
	assert.Equal(t, http.StatusOK, call("192.0.2.2:1000"))
}

func TestRateLimitIf(t *testing.T) {
	l := NewClientLimiter(0.001, 1)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RateLimitIf(l, log, func(r *http.Request) bool {
		return r.Header.Get("X-Admin-User") != ""
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(admin bool) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/views/resolve", nil)
		if admin {
			req.Header.Set("X-Admin-User", "root")
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call(true))
	assert.Equal(t, http.StatusTooManyRequests, call(true))
	assert.Equal(t, http.StatusOK, call(false), "requests without admin headers are not limited")
	assert.Equal(t, http.StatusOK, call(false))
}
