package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	StatsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "habitmaster_stats_requests_total",
		Help: "Total statistics aggregations by kind",
	}, []string{"kind"})
	QueryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "habitmaster_query_errors_total",
		Help: "Total failed event log queries by operation",
	}, []string{"op"})
	QueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "habitmaster_query_duration_seconds",
		Help:    "Event log query duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	FocusMinutes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "habitmaster_focus_minutes_total",
		Help: "Total recorded focus minutes by mode",
	}, []string{"mode"})
)

func init() {
	prometheus.MustRegister(StatsRequests, QueryErrors, QueryDuration, FocusMinutes)
}

// IncStatsRequest counts one aggregation of the given kind.
func IncStatsRequest(kind string) { StatsRequests.WithLabelValues(kind).Inc() }

// ObserveQuery records the duration of a store query and counts it as failed when err is set.
func ObserveQuery(op string, start time.Time, err error) {
	QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(op).Inc()
	}
}

// AddFocusMinutes adds a finished session's length.
func AddFocusMinutes(mode string, minutes int) {
	if minutes > 0 {
		FocusMinutes.WithLabelValues(mode).Add(float64(minutes))
	}
}
