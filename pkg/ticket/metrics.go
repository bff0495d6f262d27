package ticket

import (
	"github.com/oakrp/warden/pkg/ticket/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

// observeStore starts the prometheus metrics for one store operation and
// returns the function that records its duration.
func observeStore(backend, query string) func() {
	monitoring.StoreTotalRequests.WithLabelValues(backend, query).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(backend, query))
	return func() {
		t.ObserveDuration()
	}
}
