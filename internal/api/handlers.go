package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/cache"
	"currency-converter-api/internal/config"
	"currency-converter-api/internal/middleware"
	"currency-converter-api/internal/models"
	"currency-converter-api/internal/ratelimit"
	"currency-converter-api/internal/service"
	"currency-converter-api/internal/validation"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	historyDateLayout = "2006-01-02"

	// nginx convention for a caller that went away mid-request
	statusClientClosedRequest = 499
)

// HandlerConfig bundles the handlers' dependencies.
type HandlerConfig struct {
	Logger      *logrus.Logger
	Config      *config.Config
	Client      service.ExchangeRateClient
	Cache       cache.ResponseCache
	RateLimiter *ratelimit.Limiter
}

// Handlers contains all HTTP handlers. The request pipeline is the same for
// every endpoint: validate, consult the response cache, call the upstream
// client, then either cache-and-return the payload or surface the mapped
// status with no body.
type Handlers struct {
	logger        *logrus.Logger
	configuration *config.Config
	client        service.ExchangeRateClient
	cache         cache.ResponseCache
	rateLimiter   *ratelimit.Limiter
	validator     *validation.Validator
	startTime     time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	return &Handlers{
		logger:        handlerConfig.Logger,
		configuration: handlerConfig.Config,
		client:        handlerConfig.Client,
		cache:         handlerConfig.Cache,
		rateLimiter:   handlerConfig.RateLimiter,
		validator:     validation.New(),
		startTime:     time.Now(),
	}
}

// SetupRoutes configures all the routes using Gin. Route patterns stay
// permissive; malformed parameters are rejected by validation with a 400
// rather than falling through to a routing 404.
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimitMiddleware())
	}

	router.GET("/health", handlers.HealthCheck)

	router.GET("/latest/:code", handlers.GetLatest)
	router.GET("/convert/:baseCode/:targetCode/:amount", handlers.Convert)
	router.GET("/history/:beginDate/:endDate/:code", handlers.GetHistory)

	return router
}

// HealthCheck handles health check requests
func (handlers *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthCheck{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Since(handlers.startTime).String(),
	})
}

// GetLatest returns the latest rates for a base currency.
func (handlers *Handlers) GetLatest(c *gin.Context) {
	request := validation.LatestRequest{Code: c.Param("code")}
	if violations := handlers.validator.Check(request); violations != nil {
		handlers.writeValidationError(c, violations)
		return
	}

	key := cache.Key("latest", request.Code)
	if handlers.serveCached(c, key) {
		return
	}

	result, err := handlers.client.GetLatest(c.Request.Context(), request.Code)
	writeResult(handlers, c, key, result, err)
}

// Convert forwards a point conversion to the upstream provider.
func (handlers *Handlers) Convert(c *gin.Context) {
	baseCode := c.Param("baseCode")
	targetCode := c.Param("targetCode")
	amountLiteral := c.Param("amount")

	amount, parseError := decimal.NewFromString(amountLiteral)
	if parseError != nil {
		handlers.writeValidationError(c, []models.FieldViolation{
			{Field: "amount", Message: "must be a decimal number"},
		})
		return
	}

	request := validation.ConvertRequest{
		BaseCode:   baseCode,
		TargetCode: targetCode,
		Amount:     amount,
	}
	if violations := handlers.validator.Check(request); violations != nil {
		handlers.writeValidationError(c, violations)
		return
	}

	// The literal route value keys the cache, so "10" and "10.0" are
	// distinct entries even though they convert identically.
	key := cache.Key("convert", baseCode, targetCode, amountLiteral)
	if handlers.serveCached(c, key) {
		return
	}

	result, err := handlers.client.Convert(c.Request.Context(), baseCode, targetCode, amount)
	writeResult(handlers, c, key, result, err)
}

// GetHistory returns a dated series of rates for a base currency. Date
// ordering is not checked here; the upstream decides what to do with an
// inverted range.
func (handlers *Handlers) GetHistory(c *gin.Context) {
	beginLiteral := c.Param("beginDate")
	endLiteral := c.Param("endDate")
	code := c.Param("code")

	var violations []models.FieldViolation
	beginDate, beginError := time.Parse(historyDateLayout, beginLiteral)
	if beginError != nil {
		violations = append(violations, models.FieldViolation{Field: "beginDate", Message: "must be a date formatted as YYYY-MM-DD"})
	}
	endDate, endError := time.Parse(historyDateLayout, endLiteral)
	if endError != nil {
		violations = append(violations, models.FieldViolation{Field: "endDate", Message: "must be a date formatted as YYYY-MM-DD"})
	}
	if violations != nil {
		handlers.writeValidationError(c, violations)
		return
	}

	request := validation.HistoryRequest{BeginDate: beginDate, EndDate: endDate, Code: code}
	if violations := handlers.validator.Check(request); violations != nil {
		handlers.writeValidationError(c, violations)
		return
	}

	key := cache.Key("history", beginLiteral, endLiteral, code)
	if handlers.serveCached(c, key) {
		return
	}

	result, err := handlers.client.GetHistory(c.Request.Context(), beginDate, endDate, code)
	writeResult(handlers, c, key, result, err)
}

// serveCached replies with the memoized payload for key when present.
func (handlers *Handlers) serveCached(c *gin.Context, key string) bool {
	body, found := handlers.cache.Lookup(key)
	if !found {
		return false
	}
	c.Data(http.StatusOK, contentTypeJSON, body)
	return true
}

// writeResult renders a normalized upstream result. Successful payloads are
// stored in the response cache before being written; failures are surfaced
// as their mapped status with no body and are never cached.
func writeResult[T any](handlers *Handlers, c *gin.Context, key string, result models.Result[T], err error) {
	if err != nil {
		// Cancellation: the caller is gone, nothing to cache.
		handlers.logger.WithField("error", err.Error()).Debug("Request cancelled by caller")
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}

	if !result.IsSuccess() {
		c.Status(result.StatusCode())
		return
	}

	body, marshalError := json.Marshal(result.Payload())
	if marshalError != nil {
		handlers.logger.WithField("error", marshalError.Error()).Error("Failed to serialize response payload")
		handlers.writeErrorResponse(c, http.StatusInternalServerError, "failed to serialize response", marshalError.Error())
		return
	}

	handlers.cache.Store(key, body, handlers.configuration.ResponseCacheTTL)
	c.Data(http.StatusOK, contentTypeJSON, body)
}

// writeValidationError writes a 400 with the violated fields named.
func (handlers *Handlers) writeValidationError(c *gin.Context, violations []models.FieldViolation) {
	c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
		Error:      "validation failed",
		Violations: violations,
	})
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(c *gin.Context, statusCode int, errorMessage, errorDetails string) {
	c.JSON(statusCode, models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	})
}

// rateLimitMiddleware provides rate limiting using Gin middleware
func (handlers *Handlers) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := handlers.rateLimiter.GetClientIP(c.Request)

		if !handlers.rateLimiter.Allow(clientIP) {
			handlers.logger.Warnf("Rate limit exceeded for IP: %s", clientIP)
			c.Header("X-RateLimit-Limit", strconv.Itoa(handlers.rateLimiter.Configuration.RateLimitRequests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(handlers.rateLimiter.Configuration.RateLimitWindow).Unix(), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
