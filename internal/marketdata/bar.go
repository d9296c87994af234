// Package marketdata supplies OHLC bars to the evaluator and scanner.
package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a fixed-interval aggregated price record, ordered by OpenTime.
type Bar struct {
	OpenTime time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
}

// BarSource returns up to limit bars for a symbol at the given interval,
// oldest first. An empty slice with nil error means no data is currently
// available for the symbol; callers treat that as a deferred decision, not
// a failure.
type BarSource interface {
	Bars(ctx context.Context, symbol string, interval string, limit int) ([]Bar, error)
}
