package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sigtrack/internal/report"
)

type ReportHandler struct {
	Reporter *report.Reporter
}

func (h *ReportHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/report")
	group.GET("/summary", h.summary)
	group.GET("/detail", h.detail)
}

// @Summary Window summary with success rate
// @Tags report
// @Param window_minutes query int false "trailing window, default 1440"
// @Success 200 {object} report.Summary
// @Router /api/v1/report/summary [get]
func (h *ReportHandler) summary(c *gin.Context) {
	if h.Reporter == nil {
		Error(c, http.StatusInternalServerError, "reporter unavailable", nil)
		return
	}
	window := intQuery(c, "window_minutes", 1440)
	out, err := h.Reporter.Summary(c.Request.Context(), window)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, out, nil)
}

// @Summary Most recent signals in window, newest first
// @Tags report
// @Param window_minutes query int false "trailing window, default 1440"
// @Param max_rows query int false "row cap, default 20"
// @Success 200 {object} report.Detail
// @Router /api/v1/report/detail [get]
func (h *ReportHandler) detail(c *gin.Context) {
	if h.Reporter == nil {
		Error(c, http.StatusInternalServerError, "reporter unavailable", nil)
		return
	}
	window := intQuery(c, "window_minutes", 1440)
	maxRows := intQuery(c, "max_rows", 20)
	out, err := h.Reporter.Detail(c.Request.Context(), window, maxRows)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, out, nil)
}
