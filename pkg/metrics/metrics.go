// Package metrics exposes Prometheus collectors for TLS session activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tls"

// Collector records session metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	handshakes        *prometheus.CounterVec
	handshakeDuration *prometheus.HistogramVec
	failures          *prometheus.CounterVec
	bytes             *prometheus.CounterVec
	records           *prometheus.CounterVec
	shutdowns         *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

// NewCollector creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		handshakes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "handshakes_total",
				Help:      "Completed TLS handshakes.",
			},
			[]string{"role", "version", "renegotiation"},
		),
		handshakeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "handshake_duration_seconds",
				Help:      "Wall time from the first handshake step to completion.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"role", "version"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "failures_total",
				Help:      "Sessions moved to the error state.",
			},
			[]string{"role", "op", "code"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bio",
				Name:      "bytes_total",
				Help:      "Ciphertext bytes moved through session buffers.",
			},
			[]string{"direction"},
		),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bio",
				Name:      "records_total",
				Help:      "TLS records seen on session buffers.",
			},
			[]string{"direction", "type"},
		),
		shutdowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "shutdowns_total",
				Help:      "Completed session shutdowns.",
			},
			[]string{"mode"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "active",
				Help:      "Sessions created and not yet destroyed.",
			},
		),
	}

	if reg != nil {
		for _, col := range c.collectors() {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// MustNewCollector is like NewCollector but panics on registration errors.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.handshakes, c.handshakeDuration, c.failures,
		c.bytes, c.records, c.shutdowns, c.activeSessions,
	}
}

// RecordHandshake counts a completed handshake.
func (c *Collector) RecordHandshake(role, version string, renegotiation bool, duration time.Duration) {
	if c == nil {
		return
	}
	c.handshakes.WithLabelValues(role, version, strconv.FormatBool(renegotiation)).Inc()
	if !renegotiation {
		c.handshakeDuration.WithLabelValues(role, version).Observe(duration.Seconds())
	}
}

// RecordFailure counts a session entering the error state.
func (c *Collector) RecordFailure(role, op, code string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(role, op, code).Inc()
}

// RecordBytes adds ciphertext bytes moved in direction ("in" or "out").
func (c *Collector) RecordBytes(direction string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.bytes.WithLabelValues(direction).Add(float64(n))
}

// RecordRecord counts one TLS record header.
func (c *Collector) RecordRecord(direction, contentType string) {
	if c == nil {
		return
	}
	c.records.WithLabelValues(direction, contentType).Inc()
}

// RecordShutdown counts a completed shutdown ("bidirectional" or "quiet").
func (c *Collector) RecordShutdown(mode string) {
	if c == nil {
		return
	}
	c.shutdowns.WithLabelValues(mode).Inc()
}

// SessionOpened increments the active session gauge.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.activeSessions.Dec()
}
