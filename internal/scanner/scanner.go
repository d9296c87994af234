// Package scanner produces trade signals from recent bars. It is a plain
// momentum-reversal scan: oversold RSI opens a LONG hypothesis, overbought a
// SHORT one, with ATR-sized stop and target levels.
package scanner

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"sigtrack/internal/config"
	"sigtrack/internal/marketdata"
	"sigtrack/internal/metrics"
	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

type Scanner struct {
	Repo   repository.Repository
	Bars   marketdata.BarSource
	Logger *zap.Logger
	Config config.ScannerConfig
}

// RunOnce scans every configured symbol once. Per-symbol failures are logged
// and do not stop the pass.
func (s *Scanner) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil || s.Bars == nil {
		return nil
	}

	pending, err := s.Repo.ListPendingSignals(ctx)
	if err != nil {
		return err
	}
	open := map[string]bool{}
	for _, sig := range pending {
		open[sig.Symbol] = true
	}

	for _, symbol := range s.Config.Symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		// One open hypothesis per symbol; re-signaling before settlement
		// would double-count the same setup.
		if open[symbol] {
			continue
		}
		if err := s.scanSymbol(ctx, symbol); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("scan failed", zap.String("symbol", symbol), zap.Error(err))
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scanner) scanSymbol(ctx context.Context, symbol string) error {
	bars, err := s.Bars.Bars(ctx, symbol, s.Config.Interval, s.Config.BarLimit)
	if err != nil {
		return err
	}
	period := s.Config.RSIPeriod
	if period <= 0 {
		period = 14
	}
	atrPeriod := s.Config.ATRPeriod
	if atrPeriod <= 0 {
		atrPeriod = 14
	}
	need := period + 1
	if atrPeriod+1 > need {
		need = atrPeriod + 1
	}
	if len(bars) < need {
		return nil
	}

	rsi := lastRSI(bars, period)
	atr := lastATR(bars, atrPeriod)
	if atr <= 0 {
		return nil
	}

	var side string
	var conf float64
	switch {
	case rsi <= s.Config.Oversold:
		side = models.SideLong
		conf = (s.Config.Oversold - rsi) / s.Config.Oversold
	case rsi >= s.Config.Overbought:
		side = models.SideShort
		conf = (rsi - s.Config.Overbought) / (100 - s.Config.Overbought)
	default:
		return nil
	}
	if conf > 1 {
		conf = 1
	}

	mult := s.Config.ATRMultiple
	if mult <= 0 {
		mult = 1.5
	}
	entry := bars[len(bars)-1].Close
	risk := decimal.NewFromFloat(atr * mult)
	var tp, sl decimal.Decimal
	if side == models.SideLong {
		tp = entry.Add(risk.Mul(decimal.NewFromInt(2)))
		sl = entry.Sub(risk)
	} else {
		tp = entry.Sub(risk.Mul(decimal.NewFromInt(2)))
		sl = entry.Add(risk)
	}

	payload, _ := json.Marshal(map[string]any{
		"rsi":      rsi,
		"atr":      atr,
		"interval": s.Config.Interval,
	})
	sig := &models.Signal{
		Symbol:         symbol,
		Side:           side,
		Timeframes:     s.Config.Interval,
		Entry:          entry,
		TakeProfit:     tp,
		StopLoss:       sl,
		RiskReward:     decimal.NewFromInt(2),
		Confidence:     decimal.NewFromFloat(conf).Round(4),
		HorizonMinutes: s.Config.HorizonMinutes,
		Status:         models.StatusNew,
		Payload:        datatypes.JSON(payload),
	}
	if err := s.Repo.InsertSignal(ctx, sig); err != nil {
		return err
	}
	metrics.SignalsRecorded.WithLabelValues(symbol, side).Inc()
	if s.Logger != nil {
		s.Logger.Info("signal recorded",
			zap.Uint64("id", sig.ID),
			zap.String("symbol", symbol),
			zap.String("side", side),
			zap.Float64("rsi", rsi),
		)
	}
	return nil
}

// lastRSI is Wilder-smoothed RSI of closing prices over the final value.
func lastRSI(bars []marketdata.Bar, period int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i < len(bars); i++ {
		change, _ := bars[i].Close.Sub(bars[i-1].Close).Float64()
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i <= period {
			avgGain += gain / float64(period)
			avgLoss += loss / float64(period)
			continue
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// lastATR averages true range over the trailing period.
func lastATR(bars []marketdata.Bar, period int) float64 {
	if len(bars) < period+1 {
		return 0
	}
	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		high, _ := bars[i].High.Float64()
		low, _ := bars[i].Low.Float64()
		prevClose, _ := bars[i-1].Close.Float64()
		tr := high - low
		if d := abs(high - prevClose); d > tr {
			tr = d
		}
		if d := abs(low - prevClose); d > tr {
			tr = d
		}
		sum += tr
	}
	return sum / float64(period)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
