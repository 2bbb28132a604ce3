// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package mock

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"daisychart/brokers/daisy"
	"daisychart/calendar"
	"daisychart/candles"
	"daisychart/stockval"

	"github.com/cinar/indicator"
)

const (
	fastPeriod      = 10
	slowPeriod      = 30
	oscillatorBars  = 14
	maxSeriesLength = 20000
)

const (
	StateNeutral       = "neutral"
	StateWaitRetestUp  = "wait_retest_up"
	StateWaitConfirmUp = "wait_confirm_up"
	StateWaitRetestDn  = "wait_retest_dn"
	StateWaitConfirmDn = "wait_confirm_dn"
)

// Bar is a generated price bar before annotation.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Generator produces random walk price bars on exchange trading days.
type Generator struct {
	calendar *calendar.ExchangeCalendar
}

func NewGenerator(c *calendar.ExchangeCalendar) *Generator {
	return &Generator{calendar: c}
}

func (g *Generator) Calendar() *calendar.ExchangeCalendar {
	return g.calendar
}

// BarTimes returns the bar start times in [start, end], at most the newest maxSeriesLength.
func (g *Generator) BarTimes(r candles.Interval, start, end time.Time) []time.Time {
	var times []time.Time
	switch {
	case r.IsIntraday():
		for _, day := range g.calendar.TradingDays(start, end) {
			for _, t := range g.calendar.SessionBars(day.Add(12*time.Hour), r) {
				if !t.Before(start) && !t.After(end) {
					times = append(times, t)
				}
			}
		}
	case r == candles.OneDay:
		times = g.calendar.TradingDays(start, end)
	default:
		for t := r.BarStart(start); !t.After(end); t = r.GetNthBarTime(t, 1) {
			times = append(times, t)
		}
	}
	if len(times) > maxSeriesLength {
		times = times[len(times)-maxSeriesLength:]
	}
	return times
}

// Bars generates one bar per time. The walk is reproducible for the same ticker and first bar.
func (g *Generator) Bars(ticker string, r candles.Interval, times []time.Time) []Bar {
	bars, _ := g.bars(ticker, r, times)
	return bars
}

func (g *Generator) bars(ticker string, r candles.Interval, times []time.Time) ([]Bar, *walk) {
	if len(times) == 0 {
		return nil, newWalk(ticker, r, time.Time{})
	}
	w := newWalk(ticker, r, times[0])
	bars := make([]Bar, 0, len(times))
	for _, t := range times {
		bars = append(bars, w.next(t))
	}
	return bars, w
}

type walk struct {
	rng        *rand.Rand
	volatility float64
	last       float64
}

func newWalk(ticker string, r candles.Interval, first time.Time) *walk {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	seed := int64(h.Sum64())
	volatility := 0.015
	if r.IsIntraday() {
		volatility = 0.002
	}
	return &walk{
		rng:        rand.New(rand.NewSource(seed ^ first.Unix())),
		volatility: volatility,
		last:       50 + float64(uint64(seed)%500),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (w *walk) next(t time.Time) Bar {
	open := w.last
	closePrice := math.Max(open*(1+w.rng.NormFloat64()*w.volatility), 0.01)
	b := Bar{
		Time:   t,
		Open:   roundCents(open),
		Close:  roundCents(closePrice),
		High:   roundCents(math.Max(open, closePrice) * (1 + math.Abs(w.rng.NormFloat64())*w.volatility/2)),
		Low:    roundCents(math.Min(open, closePrice) * (1 - math.Abs(w.rng.NormFloat64())*w.volatility/2)),
		Volume: float64(1000 + w.rng.Intn(9000)),
	}
	w.last = closePrice
	return b
}

// tick moves the close of a forming bar.
func (w *walk) tick(b Bar) Bar {
	closePrice := math.Max(b.Close*(1+w.rng.NormFloat64()*w.volatility/3), 0.01)
	b.Close = roundCents(closePrice)
	b.High = math.Max(b.High, b.Close)
	b.Low = math.Min(b.Low, b.Close)
	b.Volume += float64(100 + w.rng.Intn(900))
	w.last = closePrice
	return b
}

// Annotate computes the moving averages, the oscillator and the strategy signals of the bars.
// Values are null until enough bars are available.
func Annotate(bars []Bar, s stockval.StrategyParams) []daisy.Record {
	n := len(bars)
	closes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
	}
	ma10 := warmup(indicator.Sma(fastPeriod, closes), fastPeriod-1)
	ma30 := warmup(indicator.Sma(slowPeriod, closes), slowPeriod-1)
	_, rsi := indicator.Rsi(closes)
	osc := warmup(rsi, oscillatorBars)

	var buy, sell []float64
	var states []string
	if s.Name == stockval.StrategyMACrossover {
		buy, sell = crossoverSignals(ma10, ma30)
		states = make([]string, n)
		for i := range states {
			states[i] = StateNeutral
		}
	} else {
		buy, sell, states = breakRetestSignals(closes, s)
	}

	records := make([]daisy.Record, n)
	for i, b := range bars {
		records[i] = daisy.Record{
			Time:       b.Time.Format(time.RFC3339),
			Open:       daisy.NullFloat{Float: b.Open, Valid: true},
			High:       daisy.NullFloat{Float: b.High, Valid: true},
			Low:        daisy.NullFloat{Float: b.Low, Valid: true},
			Close:      daisy.NullFloat{Float: b.Close, Valid: true},
			Volume:     daisy.NullFloat{Float: b.Volume, Valid: true},
			MA10:       ma10[i],
			MA30:       ma30[i],
			RSI14:      osc[i],
			BuySignal:  daisy.NullFloat{Float: buy[i], Valid: true},
			SellSignal: daisy.NullFloat{Float: sell[i], Valid: true},
			State:      states[i],
		}
	}
	return records
}

func warmup(values []float64, skip int) []daisy.NullFloat {
	out := make([]daisy.NullFloat, len(values))
	for i, v := range values {
		if i >= skip && stockval.IsValidFloat(v) {
			out[i] = daisy.NullFloat{Float: v, Valid: true}
		}
	}
	return out
}

func crossoverSignals(fast, slow []daisy.NullFloat) (buy, sell []float64) {
	buy = make([]float64, len(fast))
	sell = make([]float64, len(fast))
	for i := 1; i < len(fast); i++ {
		if !fast[i].Valid || !slow[i].Valid || !fast[i-1].Valid || !slow[i-1].Valid {
			continue
		}
		if fast[i].Float > slow[i].Float && fast[i-1].Float <= slow[i-1].Float {
			buy[i] = 1
		} else if fast[i].Float < slow[i].Float && fast[i-1].Float >= slow[i-1].Float {
			sell[i] = 1
		}
	}
	return
}

// breakRetestSignals runs the break and retest state machine. The breakout level is
// the highest (lowest) close of the lookback bars preceding the current bar.
func breakRetestSignals(closes []float64, s stockval.StrategyParams) (buy, sell []float64, states []string) {
	n := len(closes)
	buy = make([]float64, n)
	sell = make([]float64, n)
	states = make([]string, n)
	tol := s.Tolerance
	state := StateNeutral
	level := 0.0
	confirmed := 0

	for i, p := range closes {
		switch state {
		case StateNeutral:
			if i >= s.Lookback {
				hh, ll := extrema(closes[i-s.Lookback : i])
				if p > hh {
					state, level, confirmed = StateWaitRetestUp, hh, 0
				} else if p < ll {
					state, level, confirmed = StateWaitRetestDn, ll, 0
				}
			}
		case StateWaitRetestUp:
			if math.Abs(p-level)/level <= tol {
				state, confirmed = StateWaitConfirmUp, 0
			} else if p < level*(1-3*tol) {
				state = StateNeutral
			}
		case StateWaitConfirmUp:
			if p > level {
				confirmed++
				if confirmed >= s.Confirm {
					buy[i] = 1
					state = StateNeutral
				}
			} else if p < level*(1-2*tol) {
				state = StateNeutral
			}
		case StateWaitRetestDn:
			if math.Abs(p-level)/level <= tol {
				state, confirmed = StateWaitConfirmDn, 0
			} else if p > level*(1+3*tol) {
				state = StateNeutral
			}
		case StateWaitConfirmDn:
			if p < level {
				confirmed++
				if confirmed >= s.Confirm {
					sell[i] = 1
					state = StateNeutral
				}
			} else if p > level*(1+2*tol) {
				state = StateNeutral
			}
		}
		states[i] = state
	}
	return
}

func extrema(values []float64) (hi, lo float64) {
	hi, lo = math.Inf(-1), math.Inf(1)
	for _, v := range values {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	return
}
