// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockviz

import (
	"context"
	"sync"
	"time"

	"daisychart/metrics"
	"daisychart/stockapi"
	"daisychart/stockplot"
	"daisychart/stockval"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DataSource provides the initial series and the live updates of a chart.
type DataSource interface {
	stockapi.SeriesFetcher
	stockapi.EventStreamer
}

// Invalidator is notified whenever the sequence changed and a redraw is needed.
type Invalidator interface {
	Invalidate()
}

// Session owns the point sequence of one chart. Each Open starts a new
// connection generation, events of older generations are discarded.
type Session struct {
	id      string
	source  DataSource
	host    Invalidator
	metrics *metrics.Metrics
	log     *log.Entry

	openMutex  sync.Mutex
	mutex      sync.Mutex
	seq        stockval.PointSequence
	generation uint64
	request    stockapi.SeriesRequest
	cancel     context.CancelFunc
	pumpWg     sync.WaitGroup
}

func NewSession(source DataSource, host Invalidator, m *metrics.Metrics) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		source:  source,
		host:    host,
		metrics: m,
		log:     log.WithFields(log.Fields{"component": "session", "session": id}),
	}
}

func (s *Session) Id() string {
	return s.id
}

// Open tears down the current stream, loads the series of req and starts streaming updates.
// If fetching fails the previous sequence is kept. If streaming fails the fetched series is kept.
func (s *Session) Open(ctx context.Context, req stockapi.SeriesRequest) error {
	s.openMutex.Lock()
	defer s.openMutex.Unlock()

	gen, streamCtx := s.nextGeneration(ctx, req)
	// Wait for the previous pump, so that no stale event is in flight.
	s.pumpWg.Wait()
	s.metrics.SessionOpened()
	logger := s.log.WithFields(log.Fields{"ticker": req.Ticker, "interval": req.Interval.String(), "generation": gen})
	logger.Info("opening chart session")

	seq, err := s.source.FetchSeries(streamCtx, req)
	if err != nil {
		logger.WithError(err).Warn("failed to fetch series")
		return err
	}
	if err := streamCtx.Err(); err != nil {
		// Closed or reopened while fetching.
		return err
	}
	s.apply(gen, stockval.SnapshotEvent(seq))

	events, err := s.source.StreamEvents(streamCtx, stockapi.StreamRequest{
		Ticker:   req.Ticker,
		Interval: req.Interval,
		Strategy: req.Strategy,
	})
	if err != nil {
		logger.WithError(err).Warn("live updates are not available")
		return err
	}
	s.pumpWg.Add(1)
	go s.pump(gen, events)
	return nil
}

func (s *Session) nextGeneration(ctx context.Context, req stockapi.SeriesRequest) (uint64, context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.generation++
	if s.cancel != nil {
		s.cancel()
	}
	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.request = req
	return s.generation, streamCtx
}

func (s *Session) pump(gen uint64, events <-chan stockval.UpdateEvent) {
	defer s.pumpWg.Done()
	for ev := range events {
		s.apply(gen, ev)
	}
	if s.Generation() == gen {
		s.log.WithField("generation", gen).Info("live updates ended")
	}
}

// apply merges ev if gen is current and reports whether the sequence changed.
func (s *Session) apply(gen uint64, ev stockval.UpdateEvent) bool {
	s.mutex.Lock()
	if gen != s.generation {
		s.mutex.Unlock()
		s.metrics.EventDropped(metrics.DropStale)
		return false
	}
	next, outcome := stockval.ApplyUpdate(s.seq, ev)
	s.seq = next
	s.mutex.Unlock()

	if outcome == stockval.MergeDropped {
		reason := metrics.DropOutOfOrder
		if ev.Kind != stockval.UpdateBar || ev.Bar.Time.IsZero() {
			reason = metrics.DropMalformed
		}
		s.log.WithFields(log.Fields{"reason": reason, "time": ev.Bar.Time}).Debug("update dropped")
		s.metrics.EventDropped(reason)
		return false
	}
	s.metrics.EventApplied(ev.Kind.String())
	if s.host != nil {
		s.host.Invalidate()
	}
	return true
}

func (s *Session) Generation() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.generation
}

func (s *Session) Request() stockapi.SeriesRequest {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.request
}

// Sequence returns a copy of the current sequence.
func (s *Session) Sequence() stockval.PointSequence {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.seq.Clone()
}

// Render draws the current sequence. Merging waits until rendering is done.
func (s *Session) Render(surface stockplot.Surface, r *stockplot.Renderer, pc stockplot.PaneConfig) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	start := time.Now()
	r.Render(surface, s.seq, pc)
	s.metrics.ObserveRender(time.Since(start))
}

// Close stops live updates and waits until a running Open and the pump have terminated.
func (s *Session) Close() {
	s.mutex.Lock()
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mutex.Unlock()

	s.openMutex.Lock()
	defer s.openMutex.Unlock()
	s.pumpWg.Wait()
}
