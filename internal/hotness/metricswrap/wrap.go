// Package metricswrap wraps a hotness tracker with Prometheus metrics and
// logs keys as they turn hot.
package metricswrap

import (
	"fmt"

	xx "github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
	"github.com/mohammed-shakir/unl-locationid/internal/hotness"
)

type Sizer interface{ Size() int }

type WithMetrics struct {
	inner     hotness.Interface
	tier      string
	threshold float64
	logSample float64
	log       *zerolog.Logger
}

// New wraps inner. A key crossing threshold is logged for a logSample
// fraction of keys; threshold <= 0 or a nil logger disables the log.
func New(inner hotness.Interface, tier string, threshold, logSample float64, log *zerolog.Logger) *WithMetrics {
	if tier == "" {
		tier = "words"
	}
	return &WithMetrics{inner: inner, tier: tier, threshold: threshold, logSample: logSample, log: log}
}

func (w *WithMetrics) Inc(key string) {
	before := w.inner.Score(key)
	w.inner.Inc(key)
	if w.threshold > 0 && w.log != nil {
		after := w.inner.Score(key)
		if before < w.threshold && after >= w.threshold && shouldLog(w.logSample, key) {
			w.log.Info().
				Str("event", "hotness_threshold").
				Float64("score", after).
				Str("tier", w.tier).
				Str("key_hash", fmt.Sprintf("%08x", uint32(xx.Sum64String(key)))).
				Msg("lookup key turned hot")
		}
	}
	w.report()
}

func (w *WithMetrics) Score(key string) float64 {
	return w.inner.Score(key)
}

func (w *WithMetrics) Reset(keys ...string) {
	w.inner.Reset(keys...)
	w.report()
}

func (w *WithMetrics) report() {
	if s, ok := w.inner.(Sizer); ok {
		observability.SetHotKeys(w.tier, s.Size())
	}
}

func shouldLog(sample float64, key string) bool {
	if sample <= 0 {
		return false
	}
	if sample >= 1 {
		return true
	}
	const denom = 10000
	threshold := uint64(sample*denom + 0.5)
	if threshold == 0 {
		return false
	}
	return xx.Sum64String(key)%denom < threshold
}
