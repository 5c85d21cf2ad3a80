package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qrguard-lab/internal/config"
	"qrguard-lab/pkg/logger"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetAPIKey(r.Context())))
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth([]string{"alpha", " beta "})(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		method string
		header map[string]string
		status int
		body   string
	}{
		{"x-api-key", http.MethodPost, map[string]string{"X-API-Key": "alpha"}, http.StatusOK, "alpha"},
		{"trimmed key", http.MethodPost, map[string]string{"X-API-Key": "beta"}, http.StatusOK, "beta"},
		{"bearer", http.MethodPost, map[string]string{"Authorization": "Bearer alpha"}, http.StatusOK, "alpha"},
		{"missing", http.MethodPost, nil, http.StatusUnauthorized, ""},
		{"wrong", http.MethodPost, map[string]string{"X-API-Key": "gamma"}, http.StatusUnauthorized, ""},
		{"preflight", http.MethodOptions, nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/qr/scan", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	h := APIKeyAuth([]string{"", "  "})(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, limit int64, _ time.Duration) (bool, int64, time.Time, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return false, 0, time.Time{}, f.err
	}
	remaining := limit - 1
	if !f.allowed {
		remaining = 0
	}
	return f.allowed, remaining, time.Now().Add(30 * time.Second), nil
}

func TestRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, RequestsPerMinute: 10}

	t.Run("allowed", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true}
		h := RateLimiter(limiter, cfg, logger.NewNop())(http.HandlerFunc(okHandler))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderAPIKey, "alpha")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"key:alpha"}, limiter.keys)
	})

	t.Run("exceeded", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: false}
		h := RateLimiter(limiter, cfg, logger.NewNop())(http.HandlerFunc(okHandler))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, []string{"ip:198.51.100.7"}, limiter.keys)
	})

	t.Run("checker error fails open", func(t *testing.T) {
		limiter := &fakeLimiter{err: errors.New("redis down")}
		h := RateLimiter(limiter, cfg, logger.NewNop())(http.HandlerFunc(okHandler))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
