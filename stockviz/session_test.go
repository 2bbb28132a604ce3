// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockviz

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"daisychart/candles"
	"daisychart/metrics"
	"daisychart/stockapi"
	"daisychart/stockplot"
	"daisychart/stockval"
	"daisychart/widgets"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFetch = errors.New("fetch failed")

type fakeSource struct {
	mutex     sync.Mutex
	series    map[string]stockval.PointSequence
	fetchErr  error
	streamErr error
	streams   map[string]chan stockval.UpdateEvent
	// If set, FetchSeries signals fetchStarted and blocks until fetchGate is closed.
	fetchGate    chan struct{}
	fetchStarted chan string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series:  make(map[string]stockval.PointSequence),
		streams: make(map[string]chan stockval.UpdateEvent),
	}
}

func (f *fakeSource) FetchSeries(ctx context.Context, req stockapi.SeriesRequest) (stockval.PointSequence, error) {
	if f.fetchGate != nil {
		f.fetchStarted <- req.Ticker
		<-f.fetchGate
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.series[req.Ticker].Clone(), nil
}

// StreamEvents forwards events sent on the per-ticker channel until ctx is cancelled.
func (f *fakeSource) StreamEvents(ctx context.Context, req stockapi.StreamRequest) (<-chan stockval.UpdateEvent, error) {
	f.mutex.Lock()
	if f.streamErr != nil {
		f.mutex.Unlock()
		return nil, f.streamErr
	}
	in := make(chan stockval.UpdateEvent)
	f.streams[req.Ticker] = in
	f.mutex.Unlock()

	out := make(chan stockval.UpdateEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-in:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *fakeSource) stream(ticker string) chan stockval.UpdateEvent {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.streams[ticker]
}

type countingHost struct {
	n atomic.Int32
}

func (h *countingHost) Invalidate() {
	h.n.Add(1)
}

var base = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

func bar(i int, c float64) stockval.Point {
	return stockval.Point{
		Time:  base.Add(time.Duration(i) * time.Minute),
		Open:  stockval.Float(c),
		High:  stockval.Float(c + 1),
		Low:   stockval.Float(c - 1),
		Close: stockval.Float(c),
	}
}

func request(ticker string) stockapi.SeriesRequest {
	return stockapi.SeriesRequest{
		Ticker:   ticker,
		Interval: candles.OneMinute,
		Strategy: stockval.DefaultStrategyParams(),
		Period:   "1d",
	}
}

func TestSessionOpenAppliesSnapshotAndBars(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100), bar(1, 101)}
	host := &countingHost{}
	m := metrics.NewMetrics()
	s := NewSession(src, host, m)
	defer s.Close()

	require.NoError(t, s.Open(context.Background(), request("TSLA")))
	assert.Len(t, s.Sequence(), 2)

	in := src.stream("TSLA")
	in <- stockval.BarEvent(bar(2, 102))
	in <- stockval.BarEvent(bar(2, 103))
	in <- stockval.BarEvent(bar(0, 1))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.StreamDropped.WithLabelValues(metrics.DropOutOfOrder)) == 1
	}, 2*time.Second, 5*time.Millisecond)
	seq := s.Sequence()
	require.Len(t, seq, 3)
	assert.Equal(t, 103.0, *seq[2].Close)
	assert.Equal(t, int32(3), host.n.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StreamEvents.WithLabelValues("bar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsOpened))
}

func TestSessionReopenDropsStaleEvents(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	src.series["AAPL"] = stockval.PointSequence{bar(0, 200), bar(1, 201), bar(2, 202)}
	m := metrics.NewMetrics()
	s := NewSession(src, nil, m)
	defer s.Close()

	require.NoError(t, s.Open(context.Background(), request("TSLA")))
	oldGen := s.Generation()
	require.NoError(t, s.Open(context.Background(), request("AAPL")))
	assert.Equal(t, oldGen+1, s.Generation())
	assert.Equal(t, "AAPL", s.Request().Ticker)

	assert.False(t, s.apply(oldGen, stockval.BarEvent(bar(5, 1))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamDropped.WithLabelValues(metrics.DropStale)))
	assert.Len(t, s.Sequence(), 3)
}

func TestSessionFetchErrorKeepsSequence(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	s := NewSession(src, nil, nil)
	defer s.Close()
	require.NoError(t, s.Open(context.Background(), request("TSLA")))

	src.mutex.Lock()
	src.fetchErr = errFetch
	src.mutex.Unlock()
	err := s.Open(context.Background(), request("AAPL"))
	assert.True(t, errors.Is(err, errFetch))
	assert.Len(t, s.Sequence(), 1)
}

func TestSessionStreamErrorKeepsSnapshot(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100), bar(1, 100)}
	src.streamErr = errors.New("no websocket")
	s := NewSession(src, nil, nil)
	defer s.Close()
	assert.Error(t, s.Open(context.Background(), request("TSLA")))
	assert.Len(t, s.Sequence(), 2)
}

func TestSessionSequenceIsCopy(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	s := NewSession(src, nil, nil)
	defer s.Close()
	require.NoError(t, s.Open(context.Background(), request("TSLA")))
	seq := s.Sequence()
	seq[0] = bar(9, 9)
	assert.Equal(t, 100.0, *s.Sequence()[0].Close)
}

func TestSessionCloseStopsPump(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	s := NewSession(src, nil, nil)
	require.NoError(t, s.Open(context.Background(), request("TSLA")))

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.False(t, s.apply(s.Generation()-1, stockval.BarEvent(bar(1, 1))))
}

func TestSessionCloseWaitsForOpen(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	src.fetchGate = make(chan struct{})
	src.fetchStarted = make(chan string, 1)
	s := NewSession(src, nil, nil)

	openErr := make(chan error, 1)
	go func() {
		openErr <- s.Open(context.Background(), request("TSLA"))
	}()
	assert.Equal(t, "TSLA", <-src.fetchStarted)

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while Open was fetching")
	case <-time.After(100 * time.Millisecond):
	}

	close(src.fetchGate)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.ErrorIs(t, <-openErr, context.Canceled)
	// No live updates were started for the closed session.
	assert.Nil(t, src.stream("TSLA"))
	assert.Empty(t, s.Sequence())
}

func TestSessionRenderObservesDuration(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100), bar(1, 101)}
	m := metrics.NewMetrics()
	s := NewSession(src, nil, m)
	defer s.Close()
	require.NoError(t, s.Open(context.Background(), request("TSLA")))

	th := widgets.NewDarkPlotTheme()
	rec := stockplot.NewRecorder(400, 300, 1)
	s.Render(rec, stockplot.NewRenderer(th), stockplot.DefaultPaneConfig())
	assert.Len(t, rec.Filter(stockplot.OpFillRect, th.CandleUpColor), 2)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderSeconds))
}
