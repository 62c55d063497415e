package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/config"
)

// Limiter implements a token bucket rate limiter per client IP.
type Limiter struct {
	Configuration *config.Config
	logger        *logrus.Logger

	clientBuckets map[string]*tokenBucket
	bucketsMutex  sync.Mutex

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

type tokenBucket struct {
	capacity     int
	tokens       int
	lastRefill   time.Time
	refillRate   int
	refillPeriod time.Duration
	mu           sync.Mutex
}

// NewLimiter creates a rate limiter and starts its cleanup goroutine.
func NewLimiter(configuration *config.Config, logger *logrus.Logger) *Limiter {
	rateLimiter := &Limiter{
		Configuration: configuration,
		logger:        logger,
		clientBuckets: make(map[string]*tokenBucket),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}

	go rateLimiter.cleanup()

	return rateLimiter
}

// Allow checks if a request from the given IP is allowed.
func (rateLimiter *Limiter) Allow(clientIP string) bool {
	if !rateLimiter.Configuration.RateLimitEnabled {
		return true
	}

	rateLimiter.bucketsMutex.Lock()
	bucket, exists := rateLimiter.clientBuckets[clientIP]
	if !exists {
		bucket = &tokenBucket{
			capacity:     rateLimiter.Configuration.RateLimitBurst,
			tokens:       rateLimiter.Configuration.RateLimitBurst,
			lastRefill:   time.Now(),
			refillRate:   rateLimiter.Configuration.RateLimitRequests,
			refillPeriod: rateLimiter.Configuration.RateLimitWindow,
		}
		rateLimiter.clientBuckets[clientIP] = bucket
	}
	rateLimiter.bucketsMutex.Unlock()

	return bucket.allow()
}

// GetClientIP extracts the real client IP from the request, honoring proxy
// headers before falling back to RemoteAddr.
func (rateLimiter *Limiter) GetClientIP(request *http.Request) string {
	if xForwardedFor := request.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		if clientIP := net.ParseIP(xForwardedFor); clientIP != nil {
			return clientIP.String()
		}
		if host, _, err := net.SplitHostPort(xForwardedFor); err == nil {
			if clientIP := net.ParseIP(host); clientIP != nil {
				return clientIP.String()
			}
		}
	}

	if xRealIP := request.Header.Get("X-Real-IP"); xRealIP != "" {
		if clientIP := net.ParseIP(xRealIP); clientIP != nil {
			return clientIP.String()
		}
	}

	clientIP, _, parseError := net.SplitHostPort(request.RemoteAddr)
	if parseError != nil {
		return request.RemoteAddr
	}
	return clientIP
}

// cleanup removes idle buckets to prevent unbounded growth.
func (rateLimiter *Limiter) cleanup() {
	for {
		select {
		case <-rateLimiter.cleanupTicker.C:
			currentTime := time.Now()
			rateLimiter.bucketsMutex.Lock()
			for clientIP, bucket := range rateLimiter.clientBuckets {
				bucket.mu.Lock()
				idle := currentTime.Sub(bucket.lastRefill) > 24*time.Hour
				bucket.mu.Unlock()
				if idle {
					delete(rateLimiter.clientBuckets, clientIP)
				}
			}
			rateLimiter.bucketsMutex.Unlock()
		case <-rateLimiter.stopCleanup:
			rateLimiter.cleanupTicker.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (rateLimiter *Limiter) Stop() {
	close(rateLimiter.stopCleanup)
}

func (bucket *tokenBucket) allow() bool {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	currentTime := time.Now()

	if currentTime.After(bucket.lastRefill) {
		elapsed := currentTime.Sub(bucket.lastRefill)
		tokensToAdd := int(elapsed.Seconds() / bucket.refillPeriod.Seconds() * float64(bucket.refillRate))
		if tokensToAdd > 0 {
			bucket.tokens = minimum(bucket.capacity, bucket.tokens+tokensToAdd)
			bucket.lastRefill = currentTime
		}
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}
	return false
}

func minimum(firstValue, secondValue int) int {
	if firstValue < secondValue {
		return firstValue
	}
	return secondValue
}
