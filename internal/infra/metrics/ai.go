package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiTokensOut,
		aiCallsLatencyMs,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per model.",
		},
		[]string{"model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per model.",
		},
		[]string{"model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Chat completion latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"model", "success"},
	)
)

func ObserveChatCall(model string, tokensIn, tokensOut int, elapsed time.Duration, success bool) {
	aiTokensIn.WithLabelValues(model).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(model).Add(float64(tokensOut))
	aiCallsLatencyMs.WithLabelValues(model, strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}
