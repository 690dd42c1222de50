package middleware

import (
	"testing"

	"mdrive/config"
)

func TestRateLimiterBurstThenReject(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerSec: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst must be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("request beyond burst must be rejected")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerSec: 1, Burst: 1})

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("first request from first ip must be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("second request from first ip must be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("another ip has its own bucket")
	}
}
