package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return newRateLimiter(limit, window, clock.now), clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)

	for i := range 3 {
		if ok, _ := rl.allow("10.0.0.1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := rl.allow("10.0.0.1"); ok {
		t.Error("4th request should be rate-limited")
	}
	if ok, _ := rl.allow("10.0.0.2"); !ok {
		t.Error("a different client should be allowed")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Minute)

	rl.allow("c")
	clock.advance(20 * time.Second)
	rl.allow("c")

	ok, retry := rl.allow("c")
	if ok {
		t.Fatal("third request inside the window should be rejected")
	}
	if retry != 40*time.Second {
		t.Errorf("retry: got %v, want 40s", retry)
	}

	// The first request leaves the window; exactly one slot frees up.
	clock.advance(40 * time.Second)
	if ok, _ := rl.allow("c"); !ok {
		t.Error("request should be allowed once the oldest hit expires")
	}
	if ok, _ := rl.allow("c"); ok {
		t.Error("second hit is still inside the window")
	}
}

func TestRateLimiterRejectedRequestsDoNotCount(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)

	rl.allow("c")
	for range 5 {
		rl.allow("c")
	}
	clock.advance(time.Minute)
	if ok, _ := rl.allow("c"); !ok {
		t.Error("rejected requests must not extend the window")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(5, time.Minute)

	rl.allow("idle")
	clock.advance(50 * time.Second)
	rl.allow("busy")
	clock.advance(20 * time.Second)

	rl.sweep()

	if got := rl.clients(); got != 1 {
		t.Fatalf("clients after sweep: got %d, want 1", got)
	}
	if _, ok := rl.hits["busy"]; !ok {
		t.Error("client with a recent request was swept")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(2, 90*time.Second)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contracts", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := range 2 {
		if rr := send(); rr.Code != http.StatusCreated {
			t.Fatalf("request %d: got %d, want 201", i+1, rr.Code)
		}
	}

	rr := send()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "90" {
		t.Errorf("Retry-After: got %q, want %q", got, "90")
	}
	if !strings.Contains(rr.Body.String(), `"success":false`) {
		t.Errorf("body should be a failure envelope: %s", rr.Body.String())
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "10.0.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"forwarded chain", "10.0.0.1, 172.16.0.1, 192.168.1.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"real ip", "", "10.0.0.2", "192.168.1.1:1234", "10.0.0.2"},
		{"remote addr", "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"ipv6 remote addr", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"remote addr without port", "", "", "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
