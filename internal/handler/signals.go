package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"sigtrack/internal/metrics"
	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

const defaultTimeframe = "1h"

type SignalHandler struct {
	Repo                  repository.Repository
	DefaultHorizonMinutes int
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/signals")
	group.POST("", h.record)
	group.GET("", h.list)
}

// recordSignalRequest mirrors the scanner's signal dictionary. Prices accept
// JSON numbers or numeric strings (decimal handles both).
type recordSignalRequest struct {
	Symbol         string           `json:"sym"`
	Side           string           `json:"side"`
	Entry          *decimal.Decimal `json:"entry"`
	TakeProfit     *decimal.Decimal `json:"tp"`
	StopLoss       *decimal.Decimal `json:"sl"`
	Timeframe      string           `json:"tf"`
	Timeframes     []string         `json:"tf_list"`
	RiskReward     *decimal.Decimal `json:"rr"`
	Confidence     *decimal.Decimal `json:"conf"`
	HorizonMinutes int              `json:"horizon_minutes"`
	Payload        datatypes.JSON   `json:"payload"`
}

// @Summary Record a new signal
// @Tags signals
// @Accept json
// @Param request body handler.recordSignalRequest true "signal"
// @Success 200 {object} models.Signal
// @Failure 400 {object} map[string]any
// @Router /api/v1/signals [post]
func (h *SignalHandler) record(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req recordSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	if msg := validateRecord(&req); msg != "" {
		Error(c, http.StatusBadRequest, msg, nil)
		return
	}

	timeframes := strings.TrimSpace(req.Timeframe)
	if len(req.Timeframes) > 0 {
		timeframes = strings.Join(req.Timeframes, ",")
	}
	if timeframes == "" {
		timeframes = defaultTimeframe
	}
	horizon := req.HorizonMinutes
	if horizon <= 0 {
		horizon = h.DefaultHorizonMinutes
	}

	item := &models.Signal{
		Symbol:         strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:           strings.ToUpper(strings.TrimSpace(req.Side)),
		Timeframes:     timeframes,
		Entry:          *req.Entry,
		TakeProfit:     *req.TakeProfit,
		StopLoss:       *req.StopLoss,
		RiskReward:     derefOrZero(req.RiskReward),
		Confidence:     derefOrZero(req.Confidence),
		HorizonMinutes: horizon,
		Status:         models.StatusNew,
		Payload:        req.Payload,
	}
	if err := h.Repo.InsertSignal(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	metrics.SignalsRecorded.WithLabelValues(item.Symbol, item.Side).Inc()
	Ok(c, item, nil)
}

// @Summary List signals in a trailing window
// @Tags signals
// @Param window_minutes query int false "trailing window, default 1440"
// @Param status query string false "NEW|TP|SL|AMB|EXPIRED"
// @Param limit query int false "max rows, default 50"
// @Success 200 {array} models.Signal
// @Router /api/v1/signals [get]
func (h *SignalHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	window := intQuery(c, "window_minutes", 1440)
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	var statusPtr *string
	if status != "" {
		statusPtr = &status
	}

	since := time.Now().UTC().Add(-time.Duration(window) * time.Minute)
	items, err := h.Repo.ListSignalsSince(c.Request.Context(), repository.ListSignalsParams{
		Since:  since,
		Status: statusPtr,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{
		"limit":  limit,
		"offset": offset,
		"count":  len(items),
	})
}

func validateRecord(req *recordSignalRequest) string {
	if strings.TrimSpace(req.Symbol) == "" {
		return "sym is required"
	}
	side := strings.ToUpper(strings.TrimSpace(req.Side))
	if side != models.SideLong && side != models.SideShort {
		return "side must be LONG or SHORT"
	}
	if req.Entry == nil {
		return "entry is required"
	}
	if req.TakeProfit == nil {
		return "tp is required"
	}
	if req.StopLoss == nil {
		return "sl is required"
	}
	return ""
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
