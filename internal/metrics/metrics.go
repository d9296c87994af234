package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvalOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sigtrack_eval_outcomes_total", Help: "Signals settled per terminal status"},
		[]string{"status"},
	)
	EvalSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sigtrack_eval_skipped_total", Help: "Signals skipped during a run (bad shape or missing bars)"},
	)
	SignalsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sigtrack_signals_recorded_total", Help: "Signals recorded"},
		[]string{"symbol", "side"},
	)
)

func init() {
	prometheus.MustRegister(EvalOutcomes, EvalSkipped, SignalsRecorded)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
