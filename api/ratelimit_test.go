package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
}

func post(handler http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitHandler_AllowsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimitHandler(PerMinute(ctx, 6), http.HandlerFunc(okHandler))

	for i := 0; i < 6; i++ {
		if rec := post(handler, "192.168.1.1:12345"); rec.Code != http.StatusAccepted {
			t.Fatalf("request %d: expected 202, got %d", i, rec.Code)
		}
	}
}

func TestRateLimitHandler_BlocksExcessRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimitHandler(PerMinute(ctx, 2), http.HandlerFunc(okHandler))

	for i := 0; i < 2; i++ {
		if rec := post(handler, "10.0.0.1:12345"); rec.Code != http.StatusAccepted {
			t.Fatalf("request %d: expected 202, got %d", i, rec.Code)
		}
	}

	rec := post(handler, "10.0.0.1:12345")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "too many requests" {
		t.Fatalf("expected 'too many requests', got %q", body["error"])
	}
	// 2 per minute refills one token every 30s.
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After: 30, got %q", got)
	}
}

func TestRateLimitHandler_PerIPIsolation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimitHandler(NewIPRateLimiter(ctx, rate.Every(time.Second), 1), http.HandlerFunc(okHandler))

	if rec := post(handler, "1.1.1.1:1234"); rec.Code != http.StatusAccepted {
		t.Fatalf("IP A first request: expected 202, got %d", rec.Code)
	}
	if rec := post(handler, "1.1.1.1:1234"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("IP A second request: expected 429, got %d", rec.Code)
	}
	if rec := post(handler, "2.2.2.2:1234"); rec.Code != http.StatusAccepted {
		t.Fatalf("IP B first request: expected 202, got %d", rec.Code)
	}
}

func TestRateLimitHandlerFunc_NilLimiter(t *testing.T) {
	handler := RateLimitHandlerFunc(nil, okHandler)
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/api/config/test", nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request %d: expected 202, got %d", i, rec.Code)
		}
	}
}

func TestSweep_EvictsIdleEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := PerMinute(ctx, 1)
	rl.Allow("10.0.0.9")

	rl.sweep(time.Now().Add(limiterIdleTTL + time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) != 0 {
		t.Fatalf("expected idle limiter to be evicted, have %d", len(rl.limiters))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		remote string
		want   string
	}{
		{"forwarded", "X-Forwarded-For", "203.0.113.50, 70.41.3.18", "", "203.0.113.50"},
		{"real ip", "X-Real-IP", " 198.51.100.10 ", "", "198.51.100.10"},
		{"remote v4", "", "", "192.0.2.1:54321", "192.0.2.1"},
		{"remote v6", "", "", "[2001:db8::1]:443", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			if got := clientIP(req); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
