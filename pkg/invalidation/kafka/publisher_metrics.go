package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	published *prometheus.CounterVec
	latency   prometheus.Histogram
}

func newMetricSet(r prometheus.Registerer) *metricSet {
	m := &metricSet{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invalidation_published_total",
				Help: "Invalidation events sent to Kafka by result.",
			},
			[]string{"op", "result"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invalidation_publish_seconds",
				Help:    "Time to get a broker acknowledgement for one event.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),
	}
	if r != nil {
		r.MustRegister(m.published, m.latency)
	}
	return m
}
