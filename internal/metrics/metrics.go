// Package metrics exposes Prometheus instrumentation for the render
// pipeline on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	FramesRendered  prometheus.Counter
	FramesSubmitted prometheus.Counter
	BytesWritten    prometheus.Counter
	RenderDuration  prometheus.Histogram
	FramesTotal     prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waveoverlay_frames_rendered_total",
			Help: "Total number of waveform frames rasterized",
		}),
		FramesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waveoverlay_frames_submitted_total",
			Help: "Total number of frames written to the encoder",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waveoverlay_bytes_written_total",
			Help: "Total raw RGBA bytes written to the encoder",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "waveoverlay_render_duration_seconds",
			Help:    "Time spent rasterizing a single frame",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		FramesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "waveoverlay_frames_total",
			Help: "Total number of frames the current run will produce",
		}),
	}

	registry.MustRegister(
		m.FramesRendered,
		m.FramesSubmitted,
		m.BytesWritten,
		m.RenderDuration,
		m.FramesTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the registry in the
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and composition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
