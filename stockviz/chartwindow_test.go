// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockviz

import (
	"context"
	"testing"
	"time"

	"daisychart/candles"
	"daisychart/config"
	"daisychart/stockval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChartWindowUsesChartConfig(t *testing.T) {
	a := config.NewAppConfig()
	a.Chart.Ticker = "NVDA"
	a.Chart.Interval = "5m"
	a.Chart.Theme = "light"
	a.Chart.Panes.ShowMA30 = false
	w, err := NewChartWindow(config.NewTestConfigFrom(a), newFakeSource(), nil)
	require.NoError(t, err)

	assert.Equal(t, candles.FiveMinutes, w.intervalDropDown.Selected())
	assert.Equal(t, stockval.StrategyBreakRetest, w.strategyDropDown.Selected())
	assert.Equal(t, a.Chart.Panes, w.panes())
	assert.Contains(t, w.title(), "NVDA")
	assert.Equal(t, a.Chart.Layout, w.renderer.Layout)
	assert.Len(t, w.intervalDropDown.Values(), int(candles.NumIntervals))
}

func TestChartWindowSavesOnlyModifiedSelection(t *testing.T) {
	c := config.NewTestConfig()
	w, err := NewChartWindow(c, newFakeSource(), nil)
	require.NoError(t, err)

	w.chart.Interval = "1d"
	require.NoError(t, w.saveConfiguration())
	stored, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, config.NewChartConfig().Interval, stored.Chart.Interval)

	w.modified = true
	require.NoError(t, w.saveConfiguration())
	stored, err = c.Copy()
	require.NoError(t, err)
	assert.Equal(t, "1d", stored.Chart.Interval)
}

func TestChartWindowStatus(t *testing.T) {
	w, err := NewChartWindow(config.NewTestConfig(), newFakeSource(), nil)
	require.NoError(t, err)
	w.setStatus("loading...")
	assert.Equal(t, "loading...", w.getStatus())
	// No window yet.
	w.Invalidate()
}

func TestChartWindowSkipsOutdatedOpen(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	src.series["AAPL"] = stockval.PointSequence{bar(0, 200), bar(1, 201)}
	w, err := NewChartWindow(config.NewTestConfig(), src, nil)
	require.NoError(t, err)
	defer w.session.Close()

	req := NewSeriesRequest(w.chart)
	req.Ticker = "TSLA"
	w.openSerial.Store(2)
	assert.False(t, w.openLatest(context.Background(), 1, req))
	assert.Equal(t, uint64(0), w.session.Generation())

	req.Ticker = "AAPL"
	assert.True(t, w.openLatest(context.Background(), 2, req))
	assert.Equal(t, "AAPL", w.session.Request().Ticker)
	assert.Len(t, w.session.Sequence(), 2)
}

func TestChartWindowQuickChangesOpenLatestSelection(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	src.series["AAPL"] = stockval.PointSequence{bar(0, 200), bar(1, 201)}
	src.fetchGate = make(chan struct{})
	src.fetchStarted = make(chan string, 2)
	w, err := NewChartWindow(config.NewTestConfig(), src, nil)
	require.NoError(t, err)
	defer w.session.Close()

	w.chart.Ticker = "TSLA"
	w.open(context.Background())
	w.chart.Ticker = "AAPL"
	w.open(context.Background())
	close(src.fetchGate)

	assert.Eventually(t, func() bool {
		return w.getStatus() == "" && w.session.Request().Ticker == "AAPL" && len(w.session.Sequence()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChartWindowCloseSkipsPendingOpen(t *testing.T) {
	src := newFakeSource()
	src.series["TSLA"] = stockval.PointSequence{bar(0, 100)}
	w, err := NewChartWindow(config.NewTestConfig(), src, nil)
	require.NoError(t, err)

	serial := w.openSerial.Add(1)
	w.closeSession()
	assert.False(t, w.openLatest(context.Background(), serial, NewSeriesRequest(w.chart)))
	assert.Empty(t, w.session.Sequence())
}
