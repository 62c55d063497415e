package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"currency-converter-api/internal/config"
	"currency-converter-api/internal/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		RateLimitEnabled:  true,
		RateLimitRequests: 10,
		RateLimitWindow:   time.Second,
		RateLimitBurst:    3,
	}
}

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	limiter := NewLimiter(testConfig(), logger.New("debug"))
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("203.0.113.1") {
			t.Errorf("Allow() request %d = false, want true within burst", i+1)
		}
	}
	if limiter.Allow("203.0.113.1") {
		t.Error("Allow() = true after burst exhausted, want false")
	}
}

func TestLimiter_BucketsAreIndependentPerClient(t *testing.T) {
	limiter := NewLimiter(testConfig(), logger.New("debug"))
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow("203.0.113.1")
	}

	if !limiter.Allow("203.0.113.2") {
		t.Error("Allow() for a fresh client = false, want true")
	}
}

func TestLimiter_DisabledAlwaysAllows(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = false
	limiter := NewLimiter(cfg, logger.New("debug"))
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("203.0.113.1") {
			t.Fatal("Allow() = false with limiting disabled")
		}
	}
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 100
	cfg.RateLimitWindow = 100 * time.Millisecond
	limiter := NewLimiter(cfg, logger.New("debug"))
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow("203.0.113.1")
	}
	if limiter.Allow("203.0.113.1") {
		t.Fatal("Allow() = true after burst exhausted, want false")
	}

	time.Sleep(20 * time.Millisecond)

	if !limiter.Allow("203.0.113.1") {
		t.Error("Allow() = false after refill window, want true")
	}
}

func TestLimiter_GetClientIP(t *testing.T) {
	limiter := NewLimiter(testConfig(), logger.New("debug"))
	defer limiter.Stop()

	request := httptest.NewRequest("GET", "/latest/USD", nil)
	request.RemoteAddr = "203.0.113.7:4321"
	if ip := limiter.GetClientIP(request); ip != "203.0.113.7" {
		t.Errorf("GetClientIP() = %q, want 203.0.113.7", ip)
	}

	request.Header.Set("X-Forwarded-For", "198.51.100.9")
	if ip := limiter.GetClientIP(request); ip != "198.51.100.9" {
		t.Errorf("GetClientIP() = %q, want forwarded 198.51.100.9", ip)
	}

	request.Header.Del("X-Forwarded-For")
	request.Header.Set("X-Real-IP", "198.51.100.10")
	if ip := limiter.GetClientIP(request); ip != "198.51.100.10" {
		t.Errorf("GetClientIP() = %q, want real-ip 198.51.100.10", ip)
	}
}
