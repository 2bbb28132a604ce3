// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"image/color"

	"gioui.org/f32"
)

type OpKind int

const (
	OpClear OpKind = iota
	OpFillRect
	OpStrokePolyline
	OpFillPolygon
	OpStrokePolygon
	OpText
	OpPushClip
	OpPopClip
)

type DrawOp struct {
	Kind   OpKind
	Rect   Rect
	Points []f32.Point
	Width  float32
	Color  color.NRGBA
	Text   string
	Size   float32
	Align  Align
}

// Recorder is a surface which keeps a list of draw operations instead of pixels.
type Recorder struct {
	width, height float32
	scale         float32
	Ops           []DrawOp
}

func NewRecorder(width, height, scale float32) *Recorder {
	return &Recorder{width: width, height: height, scale: scale}
}

func (r *Recorder) Size() (float32, float32) {
	return r.width, r.height
}

func (r *Recorder) Scale() float32 {
	return r.scale
}

func (r *Recorder) Clear(c color.NRGBA) {
	// Earlier operations are hidden by the clear.
	r.Ops = append(r.Ops[:0], DrawOp{Kind: OpClear, Color: c})
}

func (r *Recorder) FillRect(rect Rect, c color.NRGBA) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpFillRect, Rect: rect, Color: c})
}

func (r *Recorder) StrokePolyline(pts []f32.Point, width float32, c color.NRGBA) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpStrokePolyline, Points: append([]f32.Point(nil), pts...), Width: width, Color: c})
}

func (r *Recorder) FillPolygon(pts []f32.Point, c color.NRGBA) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpFillPolygon, Points: append([]f32.Point(nil), pts...), Color: c})
}

func (r *Recorder) StrokePolygon(pts []f32.Point, width float32, c color.NRGBA) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpStrokePolygon, Points: append([]f32.Point(nil), pts...), Width: width, Color: c})
}

func (r *Recorder) DrawText(s string, pos f32.Point, size float32, align Align, c color.NRGBA) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpText, Points: []f32.Point{pos}, Text: s, Size: size, Align: align, Color: c})
}

func (r *Recorder) PushClip(rect Rect) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpPushClip, Rect: rect})
}

func (r *Recorder) PopClip() {
	r.Ops = append(r.Ops, DrawOp{Kind: OpPopClip})
}

// Filter returns all operations of the given kind and color.
func (r *Recorder) Filter(kind OpKind, c color.NRGBA) []DrawOp {
	var ops []DrawOp
	for _, op := range r.Ops {
		if op.Kind == kind && op.Color == c {
			ops = append(ops, op)
		}
	}
	return ops
}

// Segments returns the line segments stroked with color c.
func (r *Recorder) Segments(c color.NRGBA) [][2]f32.Point {
	var segs [][2]f32.Point
	for _, op := range r.Filter(OpStrokePolyline, c) {
		for i := 1; i < len(op.Points); i++ {
			segs = append(segs, [2]f32.Point{op.Points[i-1], op.Points[i]})
		}
	}
	return segs
}

// Texts returns the text of all labels in drawing order.
func (r *Recorder) Texts() []string {
	var texts []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			texts = append(texts, op.Text)
		}
	}
	return texts
}
