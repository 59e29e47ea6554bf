// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("4th request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}

	// One token refills every 20s
	now = now.Add(21 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("expected a refilled token")
	}
}

func TestRateLimiter_SweepsIdleEntries(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	rl.Allow("a")
	rl.Allow("b")
	if rl.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", rl.Len())
	}

	now = now.Add(2 * time.Hour)
	rl.Allow("c")

	if rl.Len() != 1 {
		t.Errorf("expected idle entries to be swept, got %d", rl.Len())
	}
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(1)
	h := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/auth/token/login", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimiter_Limit_ForwardedFor(t *testing.T) {
	proxy := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	testCases := []struct {
		name        string
		trusted     []netip.Prefix
		remoteAddr  string
		forwarded   func(i int) string
		wantAllowed int
		wantKeys    int
	}{
		{
			name:        "rotating header from untrusted peer",
			trusted:     proxy,
			remoteAddr:  "203.0.113.7:4000",
			forwarded:   func(i int) string { return fmt.Sprintf("10.0.0.%d", i) },
			wantAllowed: 2,
			wantKeys:    1,
		},
		{
			name:        "rotating header without trusted proxies",
			remoteAddr:  "203.0.113.7:4000",
			forwarded:   func(i int) string { return fmt.Sprintf("198.51.100.%d", i) },
			wantAllowed: 2,
			wantKeys:    1,
		},
		{
			name:        "distinct clients behind trusted proxy",
			trusted:     proxy,
			remoteAddr:  "10.1.1.1:4000",
			forwarded:   func(i int) string { return fmt.Sprintf("198.51.100.%d", i) },
			wantAllowed: 50,
			wantKeys:    50,
		},
		{
			name:        "one client behind trusted proxy",
			trusted:     proxy,
			remoteAddr:  "10.1.1.1:4000",
			forwarded:   func(i int) string { return "198.51.100.1" },
			wantAllowed: 2,
			wantKeys:    1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rl := NewRateLimiter(2).TrustProxies(tc.trusted)
			h := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			allowed := 0
			for i := 0; i < 50; i++ {
				req := httptest.NewRequest("POST", "/api/auth/token/login", nil)
				req.RemoteAddr = tc.remoteAddr
				req.Header.Set("X-Forwarded-For", tc.forwarded(i))
				w := httptest.NewRecorder()
				h(w, req)
				if w.Code == http.StatusOK {
					allowed++
				}
			}

			if allowed != tc.wantAllowed {
				t.Errorf("Expected %d allowed, got %d", tc.wantAllowed, allowed)
			}
			if rl.Len() != tc.wantKeys {
				t.Errorf("Expected %d tracked keys, got %d", tc.wantKeys, rl.Len())
			}
		})
	}
}
