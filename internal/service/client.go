package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"currency-converter-api/internal/models"
)

// ExchangeRateClient is the capability the handlers depend on for talking to
// the upstream exchange-rate provider. Failures of any kind (transport,
// non-2xx, unparseable body) are folded into the Result; the error return is
// reserved for context cancellation.
type ExchangeRateClient interface {
	GetLatest(ctx context.Context, code string) (models.Result[models.ExchangeRateResponse], error)
	Convert(ctx context.Context, baseCode, targetCode string, amount decimal.Decimal) (models.Result[models.ExchangeRateResponse], error)
	GetHistory(ctx context.Context, beginDate, endDate time.Time, code string) (models.Result[models.SeriesResponse], error)
}
