package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, cfg config.RateLimitConfig, tier RateLimitTier) http.Handler {
	t.Helper()
	limiter := NewRateLimiter(cfg, "test")
	t.Cleanup(limiter.Stop)
	return WithRateLimitTierHandler(tier)(limiter.Middleware(okHandler()))
}

func loginRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestLoginRateLimit_AllowsInitialBurst(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{LoginPer15Minutes: 5}, TierLogin)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("192.168.1.100:12345"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{LoginPer15Minutes: 5}, TierLogin)

	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), loginRequest("192.168.1.101:54321"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("192.168.1.101:54321"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "180", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusTooManyRequests), body["status"])
}

func TestLoginRateLimit_PerIPIsolation(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{LoginPer15Minutes: 2}, TierLogin)

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1:1000"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_UntrustedForwardedForIgnored(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{LoginPer15Minutes: 1}, TierLogin)

	first := loginRequest("203.0.113.9:4000")
	first.Header.Set("X-Forwarded-For", "198.51.100.1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	// A spoofed header from the same peer must not earn a fresh bucket.
	second := loginRequest("203.0.113.9:4000")
	second.Header.Set("X-Forwarded-For", "198.51.100.2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimit_TrustedProxyForwardedFor(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 1, TrustedProxyCIDRs: []string{"10.0.0.0/8"}}
	handler := newLimitedHandler(t, cfg, TierLogin)

	first := loginRequest("10.1.1.1:4000")
	first.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.1.1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := loginRequest("10.1.1.1:4000")
	second.Header.Set("X-Forwarded-For", "198.51.100.2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{}, TierLogin)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("192.168.1.5:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_HealthChecksExempt(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{PublicPerMinute: 1}, "test")
	t.Cleanup(limiter.Stop)
	handler := limiter.Middleware(okHandler())

	for _, path := range []string{"/healthz", "/readyz"} {
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, rec.Code, path)
		}
	}
}

func TestTierPublic_IsDefault(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{PublicPerMinute: 3}, "test")
	t.Cleanup(limiter.Stop)
	handler := limiter.Middleware(okHandler())

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		req.RemoteAddr = "192.0.2.10:80"
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 200, 429}, codes)
}

func TestClientKey(t *testing.T) {
	trusted := []string{"127.0.0.0/8"}
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		cidrs      []string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "untrusted forwarded for", remoteAddr: "192.0.2.1:5555", headers: map[string]string{"X-Forwarded-For": "198.51.100.7"}, want: "192.0.2.1"},
		{name: "trusted forwarded for", remoteAddr: "127.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 127.0.0.1"}, cidrs: trusted, want: "198.51.100.7"},
		{name: "trusted real ip", remoteAddr: "127.0.0.1:5555", headers: map[string]string{"X-Real-IP": "198.51.100.8"}, cidrs: trusted, want: "198.51.100.8"},
		{name: "no port", remoteAddr: "192.0.2.3", want: "192.0.2.3"},
		{name: "bad cidr ignored", remoteAddr: "127.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "198.51.100.9"}, cidrs: []string{"not-a-cidr"}, want: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientKey(req, tt.cidrs))
		})
	}
}

func TestLimiterStore_CleanupDropsIdleEntries(t *testing.T) {
	store := newLimiterStore(config.RateLimitConfig{PublicPerMinute: 10})
	t.Cleanup(store.Stop)

	require.NotNil(t, store.limiter(TierPublic, "a"))
	store.cleanup(time.Now().Add(limiterTTL + time.Minute))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.limiters)
}

func TestLimiterStore_LoginRefillInterval(t *testing.T) {
	store := newLimiterStore(config.RateLimitConfig{LoginPer15Minutes: 5, PublicPerMinute: 60})
	t.Cleanup(store.Stop)

	assert.Equal(t, 3*time.Minute, store.interval(TierLogin))
	assert.Equal(t, time.Second, store.interval(TierPublic))
	assert.Zero(t, store.interval(TierAdmin))
}
