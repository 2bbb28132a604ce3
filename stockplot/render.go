// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"daisychart/stockval"
	"daisychart/widgets"
	"image/color"
	"math"
	"strconv"

	"gioui.org/f32"
)

// Oscillator values are plotted on a fixed scale.
const (
	oscillatorMin = 0
	oscillatorMax = 100
)

const (
	wickWidth       = 1
	gridLineWidth   = 1
	axesLineWidth   = 1
	markerOffset    = 3
	markerGlowScale = 1.7
	labelSpacing    = 6
)

// Renderer repaints a complete chart on every call. It keeps no state between calls.
type Renderer struct {
	Theme           *widgets.PlotTheme
	Layout          LayoutOptions
	Labels          LabelOptions
	PaddingFraction float64
}

func NewRenderer(th *widgets.PlotTheme) *Renderer {
	return &Renderer{
		Theme:           th,
		Layout:          DefaultLayoutOptions(),
		Labels:          DefaultLabelOptions(),
		PaddingFraction: DefaultPaddingFraction,
	}
}

// Render clears the surface and draws the series.
// Nothing but the background is drawn for an empty series or a surface which is too small.
func (r *Renderer) Render(s Surface, seq stockval.PointSequence, pc PaneConfig) {
	s.Clear(r.Theme.BackgroundColor)
	w, h := s.Size()
	l, err := r.Layout.Plan(w, h, pc, len(seq))
	if err != nil {
		return
	}
	timeLabels := r.Labels.TimeLabels(seq, l)

	main := projection{pane: l.Main, paddingFraction: r.PaddingFraction, slotWidth: l.BarSlotWidth}
	var hasRange bool
	main.valueMin, main.valueMax, hasRange = mainValueRange(seq, pc)

	for _, pane := range l.Panes() {
		r.paintTimeGrid(s, pane, timeLabels)
	}
	if hasRange {
		r.paintPriceGrid(s, main)
		r.paintSignalBands(s, seq, main, l)
	}

	s.PushClip(l.Main)
	if hasRange {
		r.paintCandles(s, seq, main, l.BarBodyWidth)
		if pc.ShowMA30 {
			r.paintLine(s, seq, stockval.SeriesMA30, main, r.Theme.MA30Color)
		}
		if pc.ShowMA10 {
			r.paintLine(s, seq, stockval.SeriesMA10, main, r.Theme.MA10Color)
		}
		r.paintMarkers(s, seq, main)
	}
	s.PopClip()

	if l.HasOscillator {
		r.paintOscillator(s, seq, projection{
			pane:      l.Oscillator,
			valueMin:  oscillatorMin,
			valueMax:  oscillatorMax,
			slotWidth: l.BarSlotWidth,
		})
	}

	for _, pane := range l.Panes() {
		r.paintAxes(s, pane)
	}
	if hasRange {
		r.paintYaxesText(s, main)
	}
	r.paintXaxesText(s, timeLabels, l.AxisLabelY)
}

// mainValueRange covers complete candles and the visible moving averages.
func mainValueRange(seq stockval.PointSequence, pc PaneConfig) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	include := func(v float64) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	for _, p := range seq {
		if _, h, l, _, complete := p.Candle(); complete {
			include(h)
			include(l)
		}
		if pc.ShowMA10 {
			if v, valid := p.Value(stockval.SeriesMA10); valid {
				include(v)
			}
		}
		if pc.ShowMA30 {
			if v, valid := p.Value(stockval.SeriesMA30); valid {
				include(v)
			}
		}
	}
	return
}

func (r *Renderer) paintTimeGrid(s Surface, pane Rect, labels []TimeLabel) {
	for _, lbl := range labels {
		s.StrokePolyline([]f32.Point{{X: lbl.X, Y: pane.Min.Y}, {X: lbl.X, Y: pane.Max.Y}}, gridLineWidth, r.Theme.GridColor)
	}
}

func (r *Renderer) paintPriceGrid(s Surface, p projection) {
	for _, lbl := range r.Labels.PriceLabels(p.valueMin, p.valueMax, p.paddingFraction, p.pane) {
		s.StrokePolyline([]f32.Point{{X: p.pane.Min.X, Y: lbl.Y}, {X: p.pane.Max.X, Y: lbl.Y}}, gridLineWidth, r.Theme.GridColor)
	}
}

func (r *Renderer) paintAxes(s Surface, pane Rect) {
	s.StrokePolyline([]f32.Point{pane.Min, {X: pane.Min.X, Y: pane.Max.Y}, pane.Max}, axesLineWidth, r.Theme.AxesColor)
}

func (r *Renderer) paintYaxesText(s Surface, p projection) {
	var labelText string
	for _, lbl := range r.Labels.PriceLabels(p.valueMin, p.valueMax, p.paddingFraction, p.pane) {
		if lbl.Text == labelText {
			continue // do not print text twice if it is unchanged due to precision
		}
		labelText = lbl.Text
		s.DrawText(lbl.Text, f32.Pt(p.pane.Min.X-labelSpacing, lbl.Y), r.Theme.AxesFontSize, AlignRight, r.Theme.AxesYtextColor)
	}
}

func (r *Renderer) paintXaxesText(s Surface, labels []TimeLabel, y float32) {
	for _, lbl := range labels {
		s.DrawText(lbl.Text, f32.Pt(lbl.X, y), r.Theme.AxesFontSize, AlignCenter, r.Theme.AxesXtextColor)
	}
}

// Bars without a complete quartet keep their slot but are not drawn.
func (r *Renderer) paintCandles(s Surface, seq stockval.PointSequence, p projection, bodyWidth float32) {
	for i, pt := range seq {
		o, h, l, c, ok := pt.Candle()
		if !ok {
			continue
		}
		col := r.Theme.GetCandleColor(stockval.IsGreenCandle(o, c))
		x := p.getXpos(i)
		s.StrokePolyline([]f32.Point{{X: x, Y: p.getYpos(h)}, {X: x, Y: p.getYpos(l)}}, wickWidth, col)
		s.FillRect(candleBody(x, p.getYpos(o), p.getYpos(c), bodyWidth), col)
	}
}

// candleBody returns the body rectangle with a minimum height of one unit.
func candleBody(x, yOpen, yClose, bodyWidth float32) Rect {
	const minBodyHeight = 1
	top, bottom := min(yOpen, yClose), max(yOpen, yClose)
	if bottom-top < minBodyHeight {
		mid := (top + bottom) / 2
		top, bottom = mid-minBodyHeight/2, mid+minBodyHeight/2
	}
	return Rt(x-bodyWidth/2, top, x+bodyWidth/2, bottom)
}

// lineRuns splits a series into runs of consecutive points with values.
// A missing value ends the current run, the next value starts a new one.
func lineRuns(seq stockval.PointSequence, series stockval.Series, p projection) [][]f32.Point {
	var runs [][]f32.Point
	var run []f32.Point
	for i, pt := range seq {
		v, ok := pt.Value(series)
		if !ok {
			if len(run) > 1 {
				runs = append(runs, run)
			}
			run = nil
			continue
		}
		run = append(run, p.pt(i, v))
	}
	if len(run) > 1 {
		runs = append(runs, run)
	}
	return runs
}

func (r *Renderer) paintLine(s Surface, seq stockval.PointSequence, series stockval.Series, p projection, c color.NRGBA) {
	for _, run := range lineRuns(seq, series, p) {
		s.StrokePolyline(run, r.Theme.OverlayLineWidth, c)
	}
}

func (r *Renderer) paintOscillator(s Surface, seq stockval.PointSequence, p projection) {
	for q := oscillatorMin; q <= oscillatorMax; q += (oscillatorMax - oscillatorMin) / 4 {
		y := p.getYpos(float64(q))
		s.StrokePolyline([]f32.Point{{X: p.pane.Min.X, Y: y}, {X: p.pane.Max.X, Y: y}}, gridLineWidth, r.Theme.GridColor)
	}
	s.PushClip(p.pane)
	for _, level := range []float64{r.Theme.OscillatorLowLevel, r.Theme.OscillatorHighLevel} {
		y := p.getYpos(level)
		s.StrokePolyline([]f32.Point{{X: p.pane.Min.X, Y: y}, {X: p.pane.Max.X, Y: y}}, gridLineWidth, r.Theme.ReferenceLineColor)
	}
	r.paintLine(s, seq, stockval.SeriesOscillator, p, r.Theme.OscillatorColor)
	s.PopClip()
	for _, level := range []float64{r.Theme.OscillatorLowLevel, r.Theme.OscillatorHighLevel} {
		s.DrawText(strconv.FormatFloat(level, 'f', 0, 64), f32.Pt(p.pane.Min.X-labelSpacing, p.getYpos(level)),
			r.Theme.AxesFontSize, AlignRight, r.Theme.AxesYtextColor)
	}
}

func (r *Renderer) paintSignalBands(s Surface, seq stockval.PointSequence, p projection, l Layout) {
	for i, pt := range seq {
		if _, _, _, _, ok := pt.Candle(); !ok {
			continue
		}
		x := p.getXpos(i)
		band := Rt(x-l.BarSlotWidth/2, l.Main.Min.Y, x+l.BarSlotWidth/2, l.Bottom())
		if pt.HasBuySignal() {
			s.FillRect(band, widgets.WithAlpha(r.Theme.BuyMarkerColor, r.Theme.SignalBandAlpha))
		}
		if pt.HasSellSignal() {
			s.FillRect(band, widgets.WithAlpha(r.Theme.SellMarkerColor, r.Theme.SignalBandAlpha))
		}
	}
}

// Markers are anchored outside of the candle: buy below the low, sell above the high.
func (r *Renderer) paintMarkers(s Surface, seq stockval.PointSequence, p projection) {
	size := r.Theme.MarkerSize
	for i, pt := range seq {
		_, h, l, _, ok := pt.Candle()
		if !ok {
			continue
		}
		x := p.getXpos(i)
		if pt.HasBuySignal() {
			r.paintMarker(s, upTriangle(x, p.getYpos(l)+markerOffset, size), r.Theme.BuyMarkerColor)
		}
		if pt.HasSellSignal() {
			r.paintMarker(s, downTriangle(x, p.getYpos(h)-markerOffset, size), r.Theme.SellMarkerColor)
		}
	}
}

func (r *Renderer) paintMarker(s Surface, tri []f32.Point, c color.NRGBA) {
	s.FillPolygon(scalePolygon(tri, markerGlowScale), widgets.WithAlpha(c, r.Theme.MarkerGlowAlpha))
	s.FillPolygon(tri, c)
	s.StrokePolygon(tri, r.Theme.MarkerOutlineWidth, r.Theme.MarkerOutlineColor)
}

// upTriangle has its apex at (x, apexY) and its base below.
func upTriangle(x, apexY, size float32) []f32.Point {
	return []f32.Point{{X: x, Y: apexY}, {X: x + size/2, Y: apexY + size}, {X: x - size/2, Y: apexY + size}}
}

// downTriangle has its apex at (x, apexY) and its base above.
func downTriangle(x, apexY, size float32) []f32.Point {
	return []f32.Point{{X: x, Y: apexY}, {X: x - size/2, Y: apexY - size}, {X: x + size/2, Y: apexY - size}}
}

func scalePolygon(pts []f32.Point, factor float32) []f32.Point {
	var c f32.Point
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Div(float32(len(pts)))
	scaled := make([]f32.Point, len(pts))
	for i, p := range pts {
		scaled[i] = c.Add(p.Sub(c).Mul(factor))
	}
	return scaled
}
