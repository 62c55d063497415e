package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	LogLevel string

	// Upstream exchange rate provider
	FrankfurterBaseURL string
	ClientTimeout      time.Duration
	RetryCount         int
	RetryInitialDelay  time.Duration

	// Circuit breaker (operational defaults, not contracts)
	BreakerMaxRequests      int
	BreakerInterval         time.Duration
	BreakerOpenTimeout      time.Duration
	BreakerFailureThreshold int

	// Response cache
	ResponseCacheTTL time.Duration

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FrankfurterBaseURL: getEnv("FRANKFURTER_API_BASE_URL", "https://api.frankfurter.app"),
		ClientTimeout:      time.Duration(mustAtoi(getEnv("FRANKFURTER_TIMEOUT_SECONDS", "10"))) * time.Second,
		RetryCount:         mustAtoi(getEnv("FRANKFURTER_RETRY_COUNT", "3")),
		RetryInitialDelay:  time.Duration(mustAtoi(getEnv("FRANKFURTER_RETRY_DELAY_MS", "500"))) * time.Millisecond,

		BreakerMaxRequests:      mustAtoi(getEnv("BREAKER_MAX_REQUESTS", "3")),
		BreakerInterval:         time.Duration(mustAtoi(getEnv("BREAKER_INTERVAL_SECONDS", "60"))) * time.Second,
		BreakerOpenTimeout:      time.Duration(mustAtoi(getEnv("BREAKER_OPEN_TIMEOUT_SECONDS", "30"))) * time.Second,
		BreakerFailureThreshold: mustAtoi(getEnv("BREAKER_FAILURE_THRESHOLD", "5")),

		ResponseCacheTTL: time.Duration(mustAtoi(getEnv("RESPONSE_CACHE_TTL_SECONDS", "600"))) * time.Second,

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: mustAtoi(getEnv("RATE_LIMIT_REQUESTS", "100")),
		RateLimitWindow:   time.Duration(mustAtoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))) * time.Second,
		RateLimitBurst:    mustAtoi(getEnv("RATE_LIMIT_BURST", "10")),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 60
	}
	return i
}
