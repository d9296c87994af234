package evaluator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sigtrack/internal/config"
	"sigtrack/internal/marketdata"
	"sigtrack/internal/metrics"
	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

// Result aggregates the terminal transitions made by one evaluation run.
type Result struct {
	TP      int `json:"tp"`
	SL      int `json:"sl"`
	Amb     int `json:"amb"`
	Expired int `json:"expired"`
}

// Engine settles pending signals against fresh bars. It is strictly
// sequential per run: stop-at-first-touch depends on scanning bars in time
// order, and terminal writes must land before the next signal is considered.
type Engine struct {
	Repo   repository.Repository
	Bars   marketdata.BarSource
	Logger *zap.Logger
	Config config.EvaluatorConfig
}

// RunOnce processes all currently-NEW signals and returns the outcome
// counts. Store faults abort the run and surface with the counts settled so
// far; per-signal faults (bad side, unavailable bars) are logged and
// skipped. Repeat invocations with no new data are no-ops because settled
// signals never reappear in ListPendingSignals.
func (e *Engine) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	if e == nil || e.Repo == nil || e.Bars == nil {
		return res, nil
	}

	pending, err := e.Repo.ListPendingSignals(ctx)
	if err != nil {
		return res, err
	}
	now := time.Now().UTC()

	for _, sig := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		horizon := time.Duration(sig.HorizonMinutes) * time.Minute
		if horizon <= 0 {
			horizon = time.Duration(e.Config.DefaultHorizonMinutes) * time.Minute
		}
		// Expiry wins over late outcome detection: a signal past its horizon
		// is settled without consulting price data at all.
		if now.Sub(sig.CreatedAt) > horizon {
			if err := e.Repo.UpdateSignalStatus(ctx, sig.ID, models.StatusExpired, now); err != nil {
				return res, err
			}
			res.Expired++
			metrics.EvalOutcomes.WithLabelValues(models.StatusExpired).Inc()
			continue
		}

		if sig.Side != models.SideLong && sig.Side != models.SideShort {
			e.warn("signal has unknown side, skipping",
				zap.Uint64("id", sig.ID), zap.String("side", sig.Side))
			metrics.EvalSkipped.Inc()
			continue
		}

		bars, err := e.Bars.Bars(ctx, sig.Symbol, e.Config.BarInterval, e.Config.BarLimit)
		if err != nil {
			// Transient data unavailability: defer to the next run.
			e.warn("bar fetch failed, deferring signal",
				zap.Uint64("id", sig.ID), zap.String("symbol", sig.Symbol), zap.Error(err))
			metrics.EvalSkipped.Inc()
			continue
		}
		if len(bars) == 0 {
			continue
		}

		outcome := OutcomeNone
		var touchedAt time.Time
		for _, bar := range bars {
			// Only bars strictly after creation can settle the signal.
			if !bar.OpenTime.After(sig.CreatedAt) {
				continue
			}
			if o := ResolveTouch(bar, sig.Side, sig.TakeProfit, sig.StopLoss); o != OutcomeNone {
				outcome = o
				touchedAt = bar.OpenTime
				break // first touch wins
			}
		}
		if outcome == OutcomeNone {
			continue
		}

		if err := e.Repo.UpdateSignalStatus(ctx, sig.ID, string(outcome), touchedAt); err != nil {
			return res, err
		}
		metrics.EvalOutcomes.WithLabelValues(string(outcome)).Inc()
		switch outcome {
		case OutcomeTP:
			res.TP++
		case OutcomeSL:
			res.SL++
		case OutcomeAmb:
			res.Amb++
		}
	}

	return res, nil
}

func (e *Engine) warn(msg string, fields ...zap.Field) {
	if e.Logger != nil {
		e.Logger.Warn(msg, fields...)
	}
}
