package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		toolExecutions,
		turnsRejected,
	)
}

var (
	toolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultant_tool_executions_total",
			Help: "Tool-call executions per tool and outcome (ok|domain_error|failure).",
		},
		[]string{"tool", "outcome"},
	)

	turnsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "consultant_turns_rejected_total",
			Help: "Turns rejected because another turn held the per-user lock.",
		},
	)
)

func ToolExecuted(tool, outcome string) {
	toolExecutions.WithLabelValues(tool, outcome).Inc()
}

func TurnRejected() { turnsRejected.Inc() }
