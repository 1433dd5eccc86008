package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/portfolio-backoffice/internal/config"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func roughly(got, want time.Duration) bool {
	diff := got - want
	return diff > -time.Millisecond && diff < time.Millisecond
}

func TestTokenBucket_Allow(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 10*time.Second, 10) // 1 token per second

	for i := 0; i < 10; i++ {
		if !bucket.allow(now) {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}
	if bucket.allow(now) {
		t.Error("Expected 11th request to be denied")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 10*time.Second, 10)
	for i := 0; i < 10; i++ {
		bucket.allow(now)
	}

	later := now.Add(1100 * time.Millisecond)
	if !bucket.allow(later) {
		t.Error("Expected request to be allowed after refill")
	}
	if bucket.allow(later) {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestTokenBucket_Status(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 10*time.Second, 10)
	for i := 0; i < 5; i++ {
		bucket.allow(now)
	}

	remaining, resetTime := bucket.status(now)
	if remaining != 5 {
		t.Errorf("Expected 5 remaining tokens, got %d", remaining)
	}
	if want := now.Add(5 * time.Second); !resetTime.Equal(want) {
		t.Errorf("Expected reset at %v, got %v", want, resetTime)
	}
}

func TestLimiter_Allow(t *testing.T) {
	clock := newTestClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, clock.Now)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/api/public/portfolio", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/api/public/portfolio", "GET")
	if allowed {
		t.Error("Expected request to be denied after limit")
	}
	if !roughly(info.RetryAfter, 6*time.Second) {
		t.Errorf("Expected retry after 6s, got %v", info.RetryAfter)
	}
	if info.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", info.Remaining)
	}

	// A denied request does not delay the next token.
	clock.Advance(6100 * time.Millisecond)
	if allowed, _ := limiter.Allow("127.0.0.1", "/api/public/portfolio", "GET"); !allowed {
		t.Error("Expected request to be allowed once a token refilled")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/x", "GET"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.2", "/health", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(FromSettings(config.RateLimitConfig{Enabled: false}))
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/api/auth/login", "POST"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_EndpointTiers(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		method  string
		burst   int
		limit   int
		retryIn time.Duration
	}{
		{name: "generate resume", path: "/api/admin/ai/generate-resume", method: "POST", burst: 2, limit: 10, retryIn: 6 * time.Minute},
		{name: "contact", path: "/api/public/contact", method: "POST", burst: 2, limit: 5, retryIn: 12 * time.Minute},
		{name: "login", path: "/api/auth/login", method: "POST", burst: 5, limit: 10, retryIn: 6 * time.Second},
		{name: "admin write", path: "/api/admin/skills", method: "POST", burst: 10, limit: 100, retryIn: 600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromSettings(config.RateLimitConfig{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute})
			limiter := newLimiter(cfg, newTestClock().Now)
			defer limiter.Stop()

			for i := 0; i < tt.burst; i++ {
				if allowed, info := limiter.Allow("1.2.3.4", tt.path, tt.method); !allowed || info.Limit != tt.limit {
					t.Fatalf("request %d: allowed=%v limit=%d", i+1, allowed, info.Limit)
				}
			}
			allowed, info := limiter.Allow("1.2.3.4", tt.path, tt.method)
			if allowed {
				t.Fatal("Expected request beyond burst to be denied")
			}
			if !roughly(info.RetryAfter, tt.retryIn) {
				t.Errorf("Expected retry after %v, got %v", tt.retryIn, info.RetryAfter)
			}

			// Other clients have their own buckets.
			if allowed, _ := limiter.Allow("5.6.7.8", tt.path, tt.method); !allowed {
				t.Error("Expected a different client to be allowed")
			}
		})
	}
}

func TestLimiter_PrefixTierSharesBucket(t *testing.T) {
	cfg := FromSettings(config.RateLimitConfig{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute})
	limiter := newLimiter(cfg, newTestClock().Now)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow("1.2.3.4", fmt.Sprintf("/api/admin/experiences/%d", i), "DELETE")
	}
	if allowed, _ := limiter.Allow("1.2.3.4", "/api/admin/media/abc", "DELETE"); allowed {
		t.Error("Expected admin deletes on different paths to share one bucket")
	}
	if allowed, _ := limiter.Allow("1.2.3.4", "/api/admin/media/abc", "PUT"); !allowed {
		t.Error("Expected PUT to use its own bucket")
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/health", "GET")
		if !allowed || info.Limit != 0 {
			t.Fatalf("Expected health check to be unlimited, got allowed=%v limit=%d", allowed, info.Limit)
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("127.0.0.1", "/concurrent", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", allowed)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	clock := newTestClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, clock.Now)
	defer limiter.Stop()

	limiter.Allow("old", "/x", "GET")
	clock.Advance(2 * time.Hour)
	limiter.Allow("fresh", "/x", "GET")

	limiter.cleanupBuckets(clock.Now().Add(-time.Hour))
	if got := limiter.bucketCount(); got != 1 {
		t.Errorf("Expected 1 bucket after cleanup, got %d", got)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/api/public/portfolio", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if info.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", info.Limit)
	}
	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
	}{
		{"/api/admin/ai/generate-resume", "POST", "/api/admin/ai/generate-resume"},
		{"/api/admin/experiences", "POST", "/api/admin/"},
		{"/api/admin/experiences/123", "PUT", "/api/admin/"},
		{"/api/admin/experiences", "GET", ""},
		{"/api/public/portfolio", "GET", ""},
		{"/health", "GET", "/health"},
	}
	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		switch {
		case tt.wantPath == "" && got != nil:
			t.Errorf("%s %s: expected no match, got %s", tt.method, tt.path, got.Path)
		case tt.wantPath != "" && (got == nil || got.Path != tt.wantPath):
			t.Errorf("%s %s: expected %s, got %+v", tt.method, tt.path, tt.wantPath, got)
		}
	}
}
