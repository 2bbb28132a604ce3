// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"daisychart/stockval"
	"math"

	"gioui.org/f32"
	"golang.org/x/exp/constraints"
)

// DefaultPaddingFraction is added to both ends of a value range before scaling.
const DefaultPaddingFraction = 0.1

// degenerateRangeFraction is the relative range used for a flat series.
const degenerateRangeFraction = 0.01

// Rect is an axis aligned rectangle in device independent units.
type Rect struct {
	Min, Max f32.Point
}

func Rt(x0, y0, x1, y1 float32) Rect {
	return Rect{Min: f32.Pt(x0, y0), Max: f32.Pt(x1, y1)}
}

func (r Rect) Dx() float32 {
	return r.Max.X - r.Min.X
}

func (r Rect) Dy() float32 {
	return r.Max.Y - r.Min.Y
}

func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

func (r Rect) Overlaps(s Rect) bool {
	return !r.Empty() && !s.Empty() &&
		r.Min.X < s.Max.X && s.Min.X < r.Max.X &&
		r.Min.Y < s.Max.Y && s.Min.Y < r.Max.Y
}

func (r Rect) Contains(p f32.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PaddedRange returns the value range which is mapped onto the full pane height.
// A flat range is widened around its center so that it never has zero size.
func PaddedRange(valueMin, valueMax, paddingFraction float64) (lo, hi float64) {
	if valueMax < valueMin {
		valueMin, valueMax = valueMax, valueMin
	}
	span := valueMax - valueMin
	if span < stockval.NearZero {
		mid := (valueMin + valueMax) / 2
		span = math.Max(math.Abs(mid), 1) * degenerateRangeFraction
		valueMin = mid - span/2
		valueMax = mid + span/2
	}
	pad := span * math.Max(paddingFraction, 0)
	return valueMin - pad, valueMax + pad
}

// MapValueToY converts a value to a y coordinate within a pane. Larger values are drawn higher.
func MapValueToY(value, valueMin, valueMax float64, paneTop, paneHeight float32, paddingFraction float64) float32 {
	lo, hi := PaddedRange(valueMin, valueMax, paddingFraction)
	return paneTop + float32((hi-value)/(hi-lo))*paneHeight
}

// MapIndexToX returns the center of the bar slot with the given index.
func MapIndexToX(index int, paneLeft, barSlotWidth float32) float32 {
	return paneLeft + (float32(index)+0.5)*barSlotWidth
}

// projection maps values of one pane, the range is computed once per redraw.
type projection struct {
	pane            Rect
	valueMin        float64
	valueMax        float64
	paddingFraction float64
	slotWidth       float32
}

func (p projection) getXpos(index int) float32 {
	return MapIndexToX(index, p.pane.Min.X, p.slotWidth)
}

func (p projection) getYpos(value float64) float32 {
	return MapValueToY(value, p.valueMin, p.valueMax, p.pane.Min.Y, p.pane.Dy(), p.paddingFraction)
}

func (p projection) pt(index int, value float64) f32.Point {
	return f32.Pt(p.getXpos(index), p.getYpos(value))
}
