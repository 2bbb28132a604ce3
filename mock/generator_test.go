// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package mock

import (
	"testing"
	"time"

	"daisychart/brokers/daisy"
	"daisychart/calendar"
	"daisychart/candles"
	"daisychart/stockval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	return NewGenerator(calendar.NewNYSECalendar())
}

func TestBarTimesDaily(t *testing.T) {
	g := newTestGenerator()
	times := g.BarTimes(candles.OneDay, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.Len(t, times, 21)
	for _, ts := range times {
		assert.NotEqual(t, time.Saturday, ts.Weekday())
		assert.NotEqual(t, time.Sunday, ts.Weekday())
	}
}

func TestBarTimesIntraday(t *testing.T) {
	g := newTestGenerator()
	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC)
	times := g.BarTimes(candles.SixtyMinutes, start, now)
	require.Len(t, times, 11)
	assert.Equal(t, 9, times[0].Hour())
	assert.Equal(t, 30, times[0].Minute())
	assert.False(t, times[len(times)-1].After(now))
}

func TestBarsAreConsistentCandles(t *testing.T) {
	g := newTestGenerator()
	times := g.BarTimes(candles.OneDay, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	bars := g.Bars("TSLA", candles.OneDay, times)
	require.Len(t, bars, len(times))
	for _, b := range bars {
		assert.GreaterOrEqual(t, b.High, max(b.Open, b.Close))
		assert.LessOrEqual(t, b.Low, min(b.Open, b.Close))
		assert.Greater(t, b.Low, 0.0)
	}
	assert.Equal(t, bars, g.Bars("TSLA", candles.OneDay, times))
	assert.NotEqual(t, bars, g.Bars("AAPL", candles.OneDay, times))
}

func TestAnnotateWarmup(t *testing.T) {
	g := newTestGenerator()
	times := g.BarTimes(candles.OneDay, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	bars := g.Bars("MSFT", candles.OneDay, times)
	records := Annotate(bars, stockval.DefaultStrategyParams())
	require.Len(t, records, len(bars))

	assert.False(t, records[8].MA10.Valid)
	assert.True(t, records[9].MA10.Valid)
	assert.False(t, records[28].MA30.Valid)
	assert.True(t, records[29].MA30.Valid)
	assert.False(t, records[13].RSI14.Valid)
	assert.True(t, records[14].RSI14.Valid)

	sum := 0.0
	for _, b := range bars[:10] {
		sum += b.Close
	}
	assert.InDelta(t, sum/10, records[9].MA10.Float, 1e-9)
	for _, r := range records[14:] {
		assert.GreaterOrEqual(t, r.RSI14.Float, 0.0)
		assert.LessOrEqual(t, r.RSI14.Float, 100.0)
	}

	seq, skipped := daisy.Points(records)
	assert.Zero(t, skipped)
	assert.True(t, seq.IsOrdered())
}

func TestBreakRetestBuy(t *testing.T) {
	s := stockval.StrategyParams{Name: stockval.StrategyBreakRetest, Lookback: 3, Tolerance: 0.01, Confirm: 1}
	buy, sell, states := breakRetestSignals([]float64{10, 10, 10, 11, 10.05, 10.5}, s)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1}, buy)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, sell)
	assert.Equal(t, []string{StateNeutral, StateNeutral, StateNeutral, StateWaitRetestUp, StateWaitConfirmUp, StateNeutral}, states)
}

func TestBreakRetestSell(t *testing.T) {
	s := stockval.StrategyParams{Name: stockval.StrategyBreakRetest, Lookback: 3, Tolerance: 0.01, Confirm: 2}
	_, sell, states := breakRetestSignals([]float64{10, 10, 10, 9, 9.95, 9.5, 9.4}, s)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 1}, sell)
	assert.Equal(t, StateWaitRetestDn, states[3])
	assert.Equal(t, StateWaitConfirmDn, states[5])
	assert.Equal(t, StateNeutral, states[6])
}

func TestBreakRetestInvalidated(t *testing.T) {
	s := stockval.StrategyParams{Name: stockval.StrategyBreakRetest, Lookback: 3, Tolerance: 0.01, Confirm: 1}
	buy, _, states := breakRetestSignals([]float64{10, 10, 10, 11, 9.6, 10.5}, s)
	assert.Equal(t, StateNeutral, states[4])
	assert.Zero(t, buy[5])
}

func TestCrossoverSignals(t *testing.T) {
	v := func(f float64) daisy.NullFloat { return daisy.NullFloat{Float: f, Valid: true} }
	fast := []daisy.NullFloat{{}, v(1), v(3), v(3), v(1)}
	slow := []daisy.NullFloat{{}, v(2), v(2), v(2), v(2)}
	buy, sell := crossoverSignals(fast, slow)
	assert.Equal(t, []float64{0, 0, 1, 0, 0}, buy)
	assert.Equal(t, []float64{0, 0, 0, 0, 1}, sell)
}

func TestAnnotateCrossoverIsNeutral(t *testing.T) {
	g := newTestGenerator()
	times := g.BarTimes(candles.OneDay, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC))
	s := stockval.DefaultStrategyParams()
	s.Name = stockval.StrategyMACrossover
	for _, r := range Annotate(g.Bars("TSLA", candles.OneDay, times), s) {
		assert.Equal(t, StateNeutral, r.State)
	}
}

func TestRecentStart(t *testing.T) {
	g := newTestGenerator()
	// Wednesday
	now := time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC)
	start, err := g.RecentStart(now, "2d")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), start)

	start, err = g.RecentStart(now, "5d")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), start)

	start, err = g.RecentStart(now, "1mo")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC), start)

	_, err = g.RecentStart(now, "2x")
	assert.ErrorIs(t, err, ErrBadQuery)
}
