// Package observability holds the process-wide Prometheus collectors of the
// service. They live in the default registry and can additionally be
// registered into a dedicated one through Init.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	codecOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locationid_operations_total",
			Help: "LocationId codec operations by result.",
		},
		[]string{"op", "result"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream", "result"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	cacheOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Duration of cache backend operations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"op", "result"},
	)

	invalidationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Invalidation events by op and result.",
		},
		[]string{"op", "result"},
	)

	invalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invalidation_keys_deleted_total",
			Help: "Cache keys deleted by invalidation events.",
		},
	)

	hotKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotness_tracked_keys",
			Help: "Lookup keys currently tracked by the hotness model.",
		},
		[]string{"tier"},
	)

	cacheAdmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_admissions_total",
			Help: "Writes to gated cache tiers by decision.",
		},
		[]string{"tier", "decision"},
	)
)

// Init registers the collectors into reg as well, typically the registry of
// a metrics.Provider. Nil reg is a no-op.
func Init(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{
		httpRequestsTotal, httpRequestDurationSeconds, codecOpsTotal,
		upstreamLatencySeconds, cacheResults, cacheOpSeconds,
		invalidationEvents, invalidatedKeys, hotKeys, cacheAdmissions,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveCodecOp(op string, err error) {
	codecOpsTotal.WithLabelValues(op, result(err)).Inc()
}

func ObserveUpstreamLatency(upstream string, err error, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream, result(err)).Observe(durationSeconds)
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	cacheOpSeconds.WithLabelValues(op, result(err)).Observe(durationSeconds)
}

func AddCacheHits(tier string, n int) {
	if n > 0 {
		cacheResults.WithLabelValues(tier, "hit").Add(float64(n))
	}
}

func AddCacheMisses(tier string, n int) {
	if n > 0 {
		cacheResults.WithLabelValues(tier, "miss").Add(float64(n))
	}
}

func IncInvalidation(op, result string) {
	invalidationEvents.WithLabelValues(op, result).Inc()
}

func AddInvalidatedKeys(n int) {
	if n > 0 {
		invalidatedKeys.Add(float64(n))
	}
}

func SetHotKeys(tier string, n int) {
	hotKeys.WithLabelValues(tier).Set(float64(n))
}

// IncCacheAdmission counts a gated write; decision is "admitted" or "skipped".
func IncCacheAdmission(tier, decision string) {
	cacheAdmissions.WithLabelValues(tier, decision).Inc()
}
