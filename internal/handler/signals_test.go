package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

type handlerStub struct {
	inserted []models.Signal
	listed   []models.Signal
}

func (s *handlerStub) InsertSignal(ctx context.Context, item *models.Signal) error {
	item.ID = uint64(len(s.inserted) + 1)
	item.CreatedAt = time.Now().UTC()
	s.inserted = append(s.inserted, *item)
	return nil
}
func (s *handlerStub) ListPendingSignals(ctx context.Context) ([]models.Signal, error) {
	return nil, nil
}
func (s *handlerStub) UpdateSignalStatus(ctx context.Context, id uint64, status string, outcomeAt time.Time) error {
	return nil
}
func (s *handlerStub) ListSignalsSince(ctx context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	return s.listed, nil
}
func (s *handlerStub) CountSignalsSince(ctx context.Context, since time.Time, status *string) (int64, error) {
	return int64(len(s.listed)), nil
}
func (s *handlerStub) CountsByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	return nil, nil
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestRouter(stub *handlerStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &SignalHandler{Repo: stub, DefaultHorizonMinutes: 240}
	h.Register(r)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRecordSignal_OK(t *testing.T) {
	stub := &handlerStub{}
	r := newTestRouter(stub)

	// Prices as strings must coerce like numbers.
	w := postJSON(r, "/api/v1/signals", `{
		"sym": "btcusdt",
		"side": "long",
		"entry": "100.5",
		"tp": 110.25,
		"sl": "95",
		"tf_list": ["1h", "4h"],
		"rr": 2.5
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.inserted, 1)

	got := stub.inserted[0]
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, models.SideLong, got.Side)
	assert.Equal(t, "1h,4h", got.Timeframes)
	assert.Equal(t, "100.5", got.Entry.String())
	assert.Equal(t, "110.25", got.TakeProfit.String())
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Equal(t, 240, got.HorizonMinutes)
	assert.True(t, got.RiskReward.Equal(decimalFromString(t, "2.5")))
}

func TestRecordSignal_DefaultsWhenOptionalFieldsMissing(t *testing.T) {
	stub := &handlerStub{}
	r := newTestRouter(stub)

	w := postJSON(r, "/api/v1/signals", `{"sym":"ETHUSDT","side":"SHORT","entry":2000,"tp":1900,"sl":2050}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.inserted, 1)

	got := stub.inserted[0]
	assert.Equal(t, defaultTimeframe, got.Timeframes)
	assert.True(t, got.RiskReward.IsZero())
	assert.True(t, got.Confidence.IsZero())
}

func TestRecordSignal_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing sym", `{"side":"LONG","entry":1,"tp":2,"sl":0.5}`},
		{"bad side", `{"sym":"BTCUSDT","side":"UP","entry":1,"tp":2,"sl":0.5}`},
		{"missing entry", `{"sym":"BTCUSDT","side":"LONG","tp":2,"sl":0.5}`},
		{"missing tp", `{"sym":"BTCUSDT","side":"LONG","entry":1,"sl":0.5}`},
		{"missing sl", `{"sym":"BTCUSDT","side":"LONG","entry":1,"tp":2}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &handlerStub{}
			r := newTestRouter(stub)
			w := postJSON(r, "/api/v1/signals", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, stub.inserted, "invalid request must not touch the store")
		})
	}
}

func TestListSignals(t *testing.T) {
	stub := &handlerStub{listed: []models.Signal{
		{ID: 2, Symbol: "BTCUSDT", Status: models.StatusTP},
		{ID: 1, Symbol: "ETHUSDT", Status: models.StatusNew},
	}}
	r := newTestRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/signals?window_minutes=60&limit=10", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Signal `json:"data"`
		Meta map[string]any  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Meta["count"])
}
