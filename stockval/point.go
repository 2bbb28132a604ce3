// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockval

import (
	"math"
	"sort"
	"time"
)

// SignalThreshold is the minimum magnitude of a buy or sell signal which marks an event.
const SignalThreshold = 1.0

// Point is a single bar of an indicator-annotated series.
// Nil fields are absent values.
type Point struct {
	Time       time.Time
	Open       *float64
	High       *float64
	Low        *float64
	Close      *float64
	Volume     *float64
	MA10       *float64
	MA30       *float64
	Oscillator *float64
	BuySignal  float64
	SellSignal float64
}

// Series selects one of the overlay values of a point.
type Series int

const (
	SeriesMA10 Series = iota
	SeriesMA30
	SeriesOscillator
)

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}

func IsValidFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validValue(v *float64) (float64, bool) {
	if v == nil || !IsValidFloat(*v) {
		return 0, false
	}
	return *v, true
}

// Candle returns the price quartet if it is complete and consistent.
func (p Point) Candle() (o, h, l, c float64, ok bool) {
	var okO, okH, okL, okC bool
	o, okO = validValue(p.Open)
	h, okH = validValue(p.High)
	l, okL = validValue(p.Low)
	c, okC = validValue(p.Close)
	if !okO || !okH || !okL || !okC {
		return 0, 0, 0, 0, false
	}
	if h < math.Max(o, c) || l > math.Min(o, c) {
		return 0, 0, 0, 0, false
	}
	return o, h, l, c, true
}

func (p Point) Value(s Series) (float64, bool) {
	switch s {
	case SeriesMA10:
		return validValue(p.MA10)
	case SeriesMA30:
		return validValue(p.MA30)
	case SeriesOscillator:
		return validValue(p.Oscillator)
	default:
		return 0, false
	}
}

func (p Point) HasBuySignal() bool {
	return p.BuySignal >= SignalThreshold
}

func (p Point) HasSellSignal() bool {
	return p.SellSignal >= SignalThreshold
}

// PointSequence is ordered by time, oldest first.
type PointSequence []Point

// Clone returns a copy which does not share the backing array.
// The value pointers are shared, points are never modified through them.
func (s PointSequence) Clone() PointSequence {
	if s == nil {
		return nil
	}
	c := make(PointSequence, len(s))
	copy(c, s)
	return c
}

func (s PointSequence) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// IsOrdered reports whether times are strictly increasing.
func (s PointSequence) IsOrdered() bool {
	for i := 1; i < len(s); i++ {
		if !s[i-1].Time.Before(s[i].Time) {
			return false
		}
	}
	return true
}

// For sorting
func (s PointSequence) Len() int           { return len(s) }
func (s PointSequence) Less(i, j int) bool { return s[i].Time.Before(s[j].Time) }
func (s PointSequence) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Normalize returns a sorted copy without points lacking a time.
// Points with equal time are collapsed, the last one received wins.
func Normalize(s PointSequence) PointSequence {
	n := make(PointSequence, 0, len(s))
	for _, p := range s {
		if !p.Time.IsZero() {
			n = append(n, p)
		}
	}
	sort.Stable(n)
	// Remove adjacent duplicates, keeping the later entry.
	k := 0
	for i := range n {
		if i < len(n)-1 && n[i].Time.Equal(n[i+1].Time) {
			continue
		}
		n[k] = n[i]
		k++
	}
	return n[:k]
}
