package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cultura",
			Name:      "assistant_requests_total",
			Help:      "Total upstream assistant requests",
		},
		[]string{"verb", "status"},
	)
	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cultura",
			Name:      "assistant_request_duration_seconds",
			Help:      "Upstream assistant request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"verb"},
	)
	registerOnce sync.Once
)

// RegisterCollectors registers the upstream vectors once, into reg when given
// or the default registry otherwise.
func RegisterCollectors(reg *prometheus.Registry) {
	registerOnce.Do(func() {
		if reg != nil {
			reg.MustRegister(upstreamCounter, upstreamLatency)
			return
		}
		prometheus.MustRegister(upstreamCounter, upstreamLatency)
	})
}

// ObserveUpstream records one upstream verb call.
func ObserveUpstream(verb string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	upstreamCounter.WithLabelValues(verb, status).Inc()
	upstreamLatency.WithLabelValues(verb).Observe(time.Since(start).Seconds())
}
