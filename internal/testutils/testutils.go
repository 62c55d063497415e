package testutils

import (
	"time"

	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/config"
	"currency-converter-api/internal/logger"
)

// MockLogger creates a logger for testing
func MockLogger() *logrus.Logger {
	return logger.New("debug")
}

// MockConfig creates a configuration for testing, pointed at baseURL with
// timings short enough for fast test runs.
func MockConfig(baseURL string) *config.Config {
	return &config.Config{
		Port:     "8080",
		LogLevel: "debug",

		FrankfurterBaseURL: baseURL,
		ClientTimeout:      2 * time.Second,
		RetryCount:         2,
		RetryInitialDelay:  5 * time.Millisecond,

		BreakerMaxRequests:      3,
		BreakerInterval:         time.Minute,
		BreakerOpenTimeout:      100 * time.Millisecond,
		BreakerFailureThreshold: 1000,

		ResponseCacheTTL: 10 * time.Minute,

		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RateLimitBurst:    10,
	}
}
