package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const DefaultStreamURL = "wss://stream.binance.com:9443/stream"

// KlineStream listens to Binance kline events and invalidates the bar cache
// whenever a candle closes, so the next evaluator tick sees fresh data
// instead of waiting out the cache TTL.
type KlineStream struct {
	URL      string
	Symbols  []string
	Interval string
	Cache    *CachedSource
	Logger   *zap.Logger
}

type klineEnvelope struct {
	Stream string     `json:"stream"`
	Data   klineEvent `json:"data"`
}

type klineEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		Interval string `json:"i"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

func (s *KlineStream) Run(ctx context.Context) error {
	if s == nil || s.Cache == nil || len(s.Symbols) == 0 {
		return nil
	}
	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.consume(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if s.Logger != nil {
			s.Logger.Warn("kline stream disconnected, retrying", zap.Error(err))
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (s *KlineStream) consume(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.streamURL(), nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutdown")
	conn.SetReadLimit(1 << 20)

	if s.Logger != nil {
		s.Logger.Info("kline stream connected",
			zap.Strings("symbols", s.Symbols),
			zap.String("interval", s.Interval),
		)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var env klineEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if env.Data.EventType != "kline" || !env.Data.Kline.Closed {
			continue
		}
		s.Cache.Invalidate(env.Data.Symbol)
	}
}

func (s *KlineStream) streamURL() string {
	base := strings.TrimSpace(s.URL)
	if base == "" {
		base = DefaultStreamURL
	}
	interval := s.Interval
	if interval == "" {
		interval = "5m"
	}
	streams := make([]string, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", strings.ToLower(strings.TrimSpace(sym)), interval))
	}
	return base + "?streams=" + strings.Join(streams, "/")
}
