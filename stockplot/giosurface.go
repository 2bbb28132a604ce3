// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"gioui.org/x/stroke"
)

// GioSurface draws into the operation list of a Gio layout context.
// The surface size is taken from the maximum constraints.
type GioSurface struct {
	gtx   layout.Context
	th    *material.Theme
	scale float32
	clips []clip.Stack
}

func NewGioSurface(gtx layout.Context, th *material.Theme) *GioSurface {
	scale := gtx.Metric.PxPerDp
	if scale <= 0 {
		scale = 1
	}
	return &GioSurface{gtx: gtx, th: th, scale: scale}
}

func (s *GioSurface) Size() (float32, float32) {
	return float32(s.gtx.Constraints.Max.X) / s.scale, float32(s.gtx.Constraints.Max.Y) / s.scale
}

func (s *GioSurface) Scale() float32 {
	return s.scale
}

func (s *GioSurface) px(p f32.Point) f32.Point {
	return p.Mul(s.scale)
}

func (s *GioSurface) Clear(c color.NRGBA) {
	paint.FillShape(s.gtx.Ops, c, clip.Rect{Max: s.gtx.Constraints.Max}.Op())
}

func (s *GioSurface) FillRect(r Rect, c color.NRGBA) {
	// clip.Rect has integer resolution, which lets narrow candles jump. Use a path instead.
	s.FillPolygon([]f32.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}}, c)
}

func (s *GioSurface) FillPolygon(pts []f32.Point, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	var path clip.Path
	path.Begin(s.gtx.Ops)
	path.MoveTo(s.px(pts[0]))
	for _, p := range pts[1:] {
		path.LineTo(s.px(p))
	}
	path.Close()
	paint.FillShape(s.gtx.Ops, c, clip.Outline{Path: path.End()}.Op())
}

func (s *GioSurface) stroke(pts []f32.Point, closed bool, width float32, c color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	var path stroke.Path
	path.Segments = append(path.Segments, stroke.MoveTo(s.px(pts[0])))
	for _, p := range pts[1:] {
		path.Segments = append(path.Segments, stroke.LineTo(s.px(p)))
	}
	if closed {
		path.Segments = append(path.Segments, stroke.LineTo(s.px(pts[0])))
	}
	area := stroke.Stroke{Path: path, Width: max(width*s.scale, 1), Cap: stroke.FlatCap}.Op(s.gtx.Ops)
	paint.FillShape(s.gtx.Ops, c, area)
}

func (s *GioSurface) StrokePolyline(pts []f32.Point, width float32, c color.NRGBA) {
	s.stroke(pts, false, width, c)
}

func (s *GioSurface) StrokePolygon(pts []f32.Point, width float32, c color.NRGBA) {
	s.stroke(pts, true, width, c)
}

func (s *GioSurface) DrawText(txt string, pos f32.Point, size float32, align Align, c color.NRGBA) {
	gtx := s.gtx
	gtx.Constraints.Min = image.Point{}
	// Record drawing to pre-calculate text size.
	macro := op.Record(gtx.Ops)
	lbl := material.Label(s.th, unit.Sp(size), txt)
	lbl.Color = c
	lbl.Alignment = text.Start
	lbl.MaxLines = 1
	dims := lbl.Layout(gtx)
	call := macro.Stop()

	p := s.px(pos)
	x := int(math.Round(float64(p.X)))
	switch align {
	case AlignCenter:
		x -= dims.Size.X / 2
	case AlignRight:
		x -= dims.Size.X
	}
	y := int(math.Round(float64(p.Y))) - dims.Size.Y/2
	stack := op.Offset(image.Point{X: x, Y: y}).Push(gtx.Ops)
	// Run recorded drawing.
	call.Add(gtx.Ops)
	stack.Pop()
}

func (s *GioSurface) PushClip(r Rect) {
	px := image.Rect(
		int(math.Floor(float64(r.Min.X*s.scale))),
		int(math.Floor(float64(r.Min.Y*s.scale))),
		int(math.Ceil(float64(r.Max.X*s.scale))),
		int(math.Ceil(float64(r.Max.Y*s.scale))),
	)
	s.clips = append(s.clips, clip.Rect(px).Push(s.gtx.Ops))
}

func (s *GioSurface) PopClip() {
	if n := len(s.clips); n > 0 {
		s.clips[n-1].Pop()
		s.clips = s.clips[:n-1]
	}
}
