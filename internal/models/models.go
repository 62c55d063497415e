package models

import "net/http"

// ExchangeRateResponse is the payload returned by the upstream latest and
// convert endpoints. It is surfaced to callers unchanged.
type ExchangeRateResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// SeriesResponse is the payload returned by the upstream history endpoint.
// Rates maps ISO dates to per-currency rates.
type SeriesResponse struct {
	Amount    float64                       `json:"amount"`
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

// Result is the normalized outcome of an upstream call: either a payload or
// a status code to surface, never both.
type Result[T any] struct {
	payload    *T
	statusCode int
}

// Success wraps a payload in a 200 result.
func Success[T any](payload T) Result[T] {
	return Result[T]{payload: &payload, statusCode: http.StatusOK}
}

// Failure carries the status code to surface to the caller, with no payload.
func Failure[T any](statusCode int) Result[T] {
	return Result[T]{statusCode: statusCode}
}

// IsSuccess reports whether the carried status code is in the 2xx range.
func (r Result[T]) IsSuccess() bool {
	return r.statusCode >= http.StatusOK && r.statusCode < http.StatusMultipleChoices
}

// Payload returns the wrapped payload. Only meaningful when IsSuccess is true.
func (r Result[T]) Payload() T {
	if r.payload == nil {
		var zero T
		return zero
	}
	return *r.payload
}

// StatusCode returns the HTTP status code carried by the result.
func (r Result[T]) StatusCode() int {
	return r.statusCode
}

// FieldViolation names a single validation failure on a request field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the 400 body returned for rejected requests.
type ValidationErrorResponse struct {
	Error      string           `json:"error"`
	Violations []FieldViolation `json:"violations"`
}

// ErrorResponse is the generic error body for failures that carry one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck reports service liveness.
type HealthCheck struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
