// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package puf

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	sourceCache  = "cache"
	sourceMapped = "mapped"
	sourceMiss   = "miss"
)

// Metrics holds the prometheus collectors a Resolver reports to.  A nil
// *Metrics records nothing.
type Metrics struct {
	Appends         prometheus.Counter
	AppendedBytes   prometheus.Counter
	AppendLatency   prometheus.Histogram
	Dedups          prometheus.Counter
	Resolves        *prometheus.CounterVec
	Remaps          prometheus.Counter
	PrefetchedPages prometheus.Counter
}

// NewMetrics creates the resolver's collectors and, if reg is non-nil,
// registers them with it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Appends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puf",
			Name:      "appended_entries_total",
			Help:      "Distinct strings written to the data file.",
		}),
		AppendedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puf",
			Name:      "appended_bytes_total",
			Help:      "Bytes written to the data file, records included.",
		}),
		AppendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "puf",
			Name:      "append_latency_seconds",
			Help:      "Time spent writing a single entry.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		Dedups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puf",
			Name:      "dedup_hits_total",
			Help:      "Registrations of content that was already stored.",
		}),
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "puf",
			Name:      "resolves_total",
			Help:      "Resolve calls by where the result came from.",
		}, []string{"source"}),
		Remaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puf",
			Name:      "remaps_total",
			Help:      "Times the data file mapping was replaced by a larger one.",
		}),
		PrefetchedPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puf",
			Name:      "prefetched_pages_total",
			Help:      "Distinct pages touched by Prefetch.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Appends,
			m.AppendedBytes,
			m.AppendLatency,
			m.Dedups,
			m.Resolves,
			m.Remaps,
			m.PrefetchedPages,
		)
	}
	return m
}

func (m *Metrics) appended(n int, d time.Duration) {
	if m == nil {
		return
	}
	m.AppendedBytes.Add(float64(n))
	m.AppendLatency.Observe(d.Seconds())
}

func (m *Metrics) registered() {
	if m == nil {
		return
	}
	m.Appends.Inc()
}

func (m *Metrics) deduped() {
	if m == nil {
		return
	}
	m.Dedups.Inc()
}

func (m *Metrics) resolved(source string) {
	if m == nil {
		return
	}
	m.Resolves.WithLabelValues(source).Inc()
}

func (m *Metrics) remapped() {
	if m == nil {
		return
	}
	m.Remaps.Inc()
}

func (m *Metrics) prefetched(pages int64) {
	if m == nil {
		return
	}
	m.PrefetchedPages.Add(float64(pages))
}
