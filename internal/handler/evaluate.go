package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sigtrack/internal/evaluator"
)

// EvaluateHandler exposes a manual evaluation trigger for operators; the
// same engine instance also runs on the cron schedule. Runs are idempotent
// at the store level, so overlapping triggers only cost duplicate reads.
type EvaluateHandler struct {
	Engine *evaluator.Engine
}

func (h *EvaluateHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/evaluate", h.evaluate)
}

// @Summary Run one evaluation pass over pending signals
// @Tags evaluate
// @Success 200 {object} evaluator.Result
// @Router /api/v1/evaluate [post]
func (h *EvaluateHandler) evaluate(c *gin.Context) {
	if h.Engine == nil {
		Error(c, http.StatusInternalServerError, "engine unavailable", nil)
		return
	}
	res, err := h.Engine.RunOnce(c.Request.Context())
	if err != nil {
		// Partial counts still describe what settled before the fault.
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{"partial": res})
		return
	}
	Ok(c, res, nil)
}
