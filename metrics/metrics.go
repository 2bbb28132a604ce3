// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Drop reasons of stream events.
const (
	DropStale      = "stale"
	DropOutOfOrder = "out_of_order"
	DropMalformed  = "malformed"
)

// Metrics are registered with their own registry. A nil *Metrics discards all observations.
type Metrics struct {
	Registry       *prometheus.Registry
	StreamEvents   *prometheus.CounterVec // labels: kind
	StreamDropped  *prometheus.CounterVec // labels: reason
	SessionsOpened prometheus.Counter
	RenderSeconds  prometheus.Histogram
	MockBarsServed prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StreamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daisychart_stream_events_total",
			Help: "Applied chart update events",
		}, []string{"kind"}),
		StreamDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daisychart_stream_dropped_total",
			Help: "Chart update events which were not applied",
		}, []string{"reason"}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daisychart_sessions_opened_total",
			Help: "Chart sessions opened",
		}),
		RenderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "daisychart_render_seconds",
			Help:    "Duration of a full chart render",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		MockBarsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daisychart_mock_bars_total",
			Help: "Bars broadcast by the mock data server",
		}),
	}
	m.Registry.MustRegister(
		m.StreamEvents,
		m.StreamDropped,
		m.SessionsOpened,
		m.RenderSeconds,
		m.MockBarsServed,
	)
	return m
}

func (m *Metrics) EventApplied(kind string) {
	if m != nil {
		m.StreamEvents.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) EventDropped(reason string) {
	if m != nil {
		m.StreamDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.SessionsOpened.Inc()
	}
}

func (m *Metrics) ObserveRender(d time.Duration) {
	if m != nil {
		m.RenderSeconds.Observe(d.Seconds())
	}
}

func (m *Metrics) BarServed() {
	if m != nil {
		m.MockBarsServed.Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Server exposes /metrics over HTTP.
type Server struct {
	addr string
	srv  *http.Server
}

func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.addr).Info("metrics server listening")
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
