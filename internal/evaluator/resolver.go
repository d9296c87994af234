// Package evaluator advances pending signals toward a terminal outcome
// using newly available price bars.
package evaluator

import (
	"github.com/shopspring/decimal"

	"sigtrack/internal/marketdata"
	"sigtrack/internal/models"
)

// Outcome of matching one bar against a signal's levels.
type Outcome string

const (
	// OutcomeNone means the bar's range touched neither level.
	OutcomeNone Outcome = ""
	OutcomeTP   Outcome = models.StatusTP
	OutcomeSL   Outcome = models.StatusSL
	// OutcomeAmb means both levels fall inside the bar's high/low range.
	// OHLC data cannot tell which was touched first, so we never guess.
	OutcomeAmb Outcome = models.StatusAmb
)

// ResolveTouch reports which of a signal's levels the bar touched.
// For LONG the take-profit is above entry and the stop below; SHORT mirrors.
// Returns OutcomeNone for an unrecognized side: the engine validates sides
// before scanning bars.
func ResolveTouch(bar marketdata.Bar, side string, tp, sl decimal.Decimal) Outcome {
	var tpHit, slHit bool
	switch side {
	case models.SideLong:
		tpHit = bar.High.GreaterThanOrEqual(tp)
		slHit = bar.Low.LessThanOrEqual(sl)
	case models.SideShort:
		tpHit = bar.Low.LessThanOrEqual(tp)
		slHit = bar.High.GreaterThanOrEqual(sl)
	default:
		return OutcomeNone
	}

	switch {
	case tpHit && slHit:
		return OutcomeAmb
	case tpHit:
		return OutcomeTP
	case slHit:
		return OutcomeSL
	default:
		return OutcomeNone
	}
}
