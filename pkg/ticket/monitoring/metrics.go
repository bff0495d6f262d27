package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency is the duration of ticket store operations.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ticketstore_latency",
			Help: "Duration of ticket store operations",
		},
		[]string{"backend", "query"},
	)

	// StoreTotalRequests is the total number of ticket store operations.
	StoreTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketstore_total_requests",
			Help: "Total number of ticket store operations",
		},
		[]string{"backend", "query"},
	)
)
