package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"currency-converter-api/internal/config"
	"currency-converter-api/internal/models"
)

const dateLayout = "2006-01-02"

// logged body excerpts are capped so a large upstream payload cannot bloat
// the log stream
const bodyExcerptLimit = 512

// httpOutcome is the raw upstream outcome before normalization: the status
// and the full body, read regardless of status so diagnostic payloads are
// available for logging.
type httpOutcome struct {
	statusCode int
	body       []byte
}

// FrankfurterClient implements ExchangeRateClient against a Frankfurter-style
// upstream. Every call is independent; the client holds no per-call state.
type FrankfurterClient struct {
	configuration *config.Config
	logger        *logrus.Logger
	httpClient    *http.Client
	breaker       *gobreaker.CircuitBreaker[httpOutcome]
}

// NewFrankfurterClient creates a client with its resilience wrapper (request
// timeout, bounded retries with backoff, circuit breaker) configured from cfg.
func NewFrankfurterClient(configuration *config.Config, logger *logrus.Logger) *FrankfurterClient {
	breaker := gobreaker.NewCircuitBreaker[httpOutcome](gobreaker.Settings{
		Name:        "frankfurter",
		MaxRequests: uint32(configuration.BreakerMaxRequests),
		Interval:    configuration.BreakerInterval,
		Timeout:     configuration.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(configuration.BreakerFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &FrankfurterClient{
		configuration: configuration,
		logger:        logger,
		httpClient: &http.Client{
			Timeout: configuration.ClientTimeout,
		},
		breaker: breaker,
	}
}

// GetLatest fetches the latest rates for a base currency.
func (client *FrankfurterClient) GetLatest(ctx context.Context, code string) (models.Result[models.ExchangeRateResponse], error) {
	endpoint := fmt.Sprintf("/latest?from=%s", code)
	return fetch[models.ExchangeRateResponse](client, ctx, endpoint)
}

// Convert asks the upstream to convert amount from baseCode to targetCode.
// All rate math happens upstream.
func (client *FrankfurterClient) Convert(ctx context.Context, baseCode, targetCode string, amount decimal.Decimal) (models.Result[models.ExchangeRateResponse], error) {
	endpoint := fmt.Sprintf("/latest?from=%s&to=%s&amount=%s", baseCode, targetCode, amount.String())
	return fetch[models.ExchangeRateResponse](client, ctx, endpoint)
}

// GetHistory fetches a dated series of rates for a base currency.
func (client *FrankfurterClient) GetHistory(ctx context.Context, beginDate, endDate time.Time, code string) (models.Result[models.SeriesResponse], error) {
	endpoint := fmt.Sprintf("/%s..%s?from=%s", beginDate.Format(dateLayout), endDate.Format(dateLayout), code)
	return fetch[models.SeriesResponse](client, ctx, endpoint)
}

// fetch runs one upstream call and normalizes its outcome. The mapping is
// identical for every operation: transport exhaustion or open breaker yields
// 502, a non-2xx status is surfaced verbatim without parsing the body, and a
// 2xx body that fails to decode or decodes to null yields 500. Cancellation
// is returned as an error, never as a failure status.
func fetch[T any](client *FrankfurterClient, ctx context.Context, endpoint string) (models.Result[T], error) {
	outcome, err := client.get(ctx, endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return models.Result[T]{}, ctx.Err()
		}
		client.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Error("[Frankfurter] request failed")
		return models.Failure[T](http.StatusBadGateway), nil
	}

	if outcome.statusCode < http.StatusOK || outcome.statusCode >= http.StatusMultipleChoices {
		client.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   outcome.statusCode,
			"body":     excerpt(outcome.body),
		}).Error("[Frankfurter] upstream returned error status")
		return models.Failure[T](outcome.statusCode), nil
	}

	// Decode through a pointer so a literal JSON null is distinguishable
	// from a zero-valued payload.
	var payload *T
	if err := json.Unmarshal(outcome.body, &payload); err != nil {
		client.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"body":     excerpt(outcome.body),
			"error":    err.Error(),
		}).Error("[Frankfurter] error parsing JSON response")
		return models.Failure[T](http.StatusInternalServerError), nil
	}
	if payload == nil {
		client.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"body":     excerpt(outcome.body),
		}).Error("[Frankfurter] response is null")
		return models.Failure[T](http.StatusInternalServerError), nil
	}

	return models.Success(*payload), nil
}

// get issues the outbound call through the retry and circuit-breaker wrapper.
// Only transport errors are retried; an HTTP response of any status is final.
func (client *FrankfurterClient) get(ctx context.Context, endpoint string) (httpOutcome, error) {
	var out httpOutcome

	operation := func() error {
		outcome, err := client.breaker.Execute(func() (httpOutcome, error) {
			return client.doRequest(ctx, endpoint)
		})
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = outcome
		return nil
	}

	retryPolicy := backoff.WithContext(
		backoff.WithMaxRetries(client.newBackOff(), uint64(client.configuration.RetryCount)),
		ctx,
	)
	if err := backoff.Retry(operation, retryPolicy); err != nil {
		return httpOutcome{}, err
	}
	return out, nil
}

func (client *FrankfurterClient) newBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = client.configuration.RetryInitialDelay
	return policy
}

// doRequest performs a single HTTP attempt and reads the full body before
// the status is inspected anywhere.
func (client *FrankfurterClient) doRequest(ctx context.Context, endpoint string) (httpOutcome, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.configuration.FrankfurterBaseURL+endpoint, nil)
	if err != nil {
		return httpOutcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return httpOutcome{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return httpOutcome{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return httpOutcome{statusCode: response.StatusCode, body: body}, nil
}

func excerpt(body []byte) string {
	if len(body) > bodyExcerptLimit {
		return string(body[:bodyExcerptLimit])
	}
	return string(body)
}
