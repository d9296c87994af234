// Package report derives human-facing summaries from store state. Read-only.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

type Summary struct {
	WindowMinutes int     `json:"window_minutes"`
	Total         int64   `json:"total"`
	TP            int64   `json:"tp"`
	SL            int64   `json:"sl"`
	Amb           int64   `json:"amb"`
	Expired       int64   `json:"expired"`
	Open          int64   `json:"open"`
	SuccessRate   float64 `json:"success_rate"`
}

type Detail struct {
	WindowMinutes int             `json:"window_minutes"`
	Rows          []models.Signal `json:"rows"`
	Truncated     bool            `json:"truncated"`
}

type Reporter struct {
	Repo repository.Repository
}

func (r *Reporter) Summary(ctx context.Context, windowMinutes int) (Summary, error) {
	out := Summary{WindowMinutes: windowMinutes}
	if r == nil || r.Repo == nil {
		return out, nil
	}
	since := time.Now().UTC().Add(-time.Duration(windowMinutes) * time.Minute)
	counts, err := r.Repo.CountsByStatusSince(ctx, since)
	if err != nil {
		return out, err
	}
	out.TP = counts[models.StatusTP]
	out.SL = counts[models.StatusSL]
	out.Amb = counts[models.StatusAmb]
	out.Expired = counts[models.StatusExpired]
	out.Open = counts[models.StatusNew]
	for _, n := range counts {
		out.Total += n
	}
	// Zero floor in the denominator so an all-open window reports 0, not NaN.
	decided := out.TP + out.SL
	if decided < 1 {
		decided = 1
	}
	out.SuccessRate = float64(out.TP) / float64(decided) * 100
	return out, nil
}

func (r *Reporter) Detail(ctx context.Context, windowMinutes int, maxRows int) (Detail, error) {
	out := Detail{WindowMinutes: windowMinutes}
	if r == nil || r.Repo == nil {
		return out, nil
	}
	if maxRows <= 0 {
		maxRows = 20
	}
	since := time.Now().UTC().Add(-time.Duration(windowMinutes) * time.Minute)
	rows, err := r.Repo.ListSignalsSince(ctx, repository.ListSignalsParams{
		Since: since,
		Limit: maxRows,
	})
	if err != nil {
		return out, err
	}
	out.Rows = rows
	// Best effort: a full page probably means more rows exist in-window.
	out.Truncated = len(rows) == maxRows
	return out, nil
}

func RenderSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Signal summary (last %dm)\n", s.WindowMinutes)
	fmt.Fprintf(&b, "total: %d\n", s.Total)
	fmt.Fprintf(&b, "tp: %d  sl: %d  amb: %d  expired: %d  open: %d\n",
		s.TP, s.SL, s.Amb, s.Expired, s.Open)
	fmt.Fprintf(&b, "success rate: %.1f%%", s.SuccessRate)
	return b.String()
}

func RenderDetail(d Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent signals (last %dm)\n", d.WindowMinutes)
	if len(d.Rows) == 0 {
		b.WriteString("no signals in window")
		return b.String()
	}
	for _, row := range d.Rows {
		fmt.Fprintf(&b, "%s %s [%s] entry=%s tp=%s sl=%s -> %s\n",
			row.Symbol,
			row.Side,
			row.Timeframes,
			row.Entry.StringFixed(4),
			row.TakeProfit.StringFixed(4),
			row.StopLoss.StringFixed(4),
			row.Status,
		)
	}
	if d.Truncated {
		b.WriteString("(truncated)")
	}
	return strings.TrimRight(b.String(), "\n")
}
