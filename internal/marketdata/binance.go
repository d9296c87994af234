package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.binance.com"

// Client fetches klines from the Binance spot REST API.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Bars(ctx context.Context, symbol string, interval string, limit int) ([]Bar, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("marketdata client not initialized")
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(strings.TrimSpace(symbol)))
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	reqURL := c.baseURL + "/api/v3/klines?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("klines request failed: status=%d body=%s", resp.StatusCode, truncateBody(body))
	}

	return parseKlines(body)
}

// parseKlines decodes the Binance kline array-of-arrays payload:
// [openTime, open, high, low, close, volume, closeTime, ...] per row,
// with prices as strings and times as millisecond numbers.
func parseKlines(body []byte) ([]Bar, error) {
	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	bars := make([]Bar, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row too short: %d fields", len(row))
		}
		openMillis, ok := row[0].(float64)
		if !ok {
			return nil, fmt.Errorf("kline open time is not a number")
		}
		open, err := priceField(row[1])
		if err != nil {
			return nil, err
		}
		high, err := priceField(row[2])
		if err != nil {
			return nil, err
		}
		low, err := priceField(row[3])
		if err != nil {
			return nil, err
		}
		closePx, err := priceField(row[4])
		if err != nil {
			return nil, err
		}
		volume, err := priceField(row[5])
		if err != nil {
			return nil, err
		}
		bars = append(bars, Bar{
			OpenTime: time.UnixMilli(int64(openMillis)).UTC(),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePx,
			Volume:   volume,
		})
	}
	return bars, nil
}

func priceField(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case string:
		return decimal.NewFromString(t)
	case float64:
		return decimal.NewFromFloat(t), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("kline price field has type %T", v)
	}
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
