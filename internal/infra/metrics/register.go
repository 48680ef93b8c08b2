package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Each metrics file declares its collectors in init() and enqueues them
// here; main flushes the queue into the default registry once the config
// is loaded. Registration is idempotent so tests that wire the app twice
// do not panic on duplicate collectors.

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister flushes every enqueued collector into the default
// Prometheus registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}
