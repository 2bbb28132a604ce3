// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"image/color"

	"gioui.org/f32"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Surface is a drawing target. All coordinates and sizes are device independent,
// implementations multiply them by their scale factor.
type Surface interface {
	Size() (width, height float32)
	Scale() float32
	Clear(c color.NRGBA)
	FillRect(r Rect, c color.NRGBA)
	// StrokePolyline draws connected segments between consecutive points.
	StrokePolyline(pts []f32.Point, width float32, c color.NRGBA)
	FillPolygon(pts []f32.Point, c color.NRGBA)
	StrokePolygon(pts []f32.Point, width float32, c color.NRGBA)
	// DrawText draws a single line. pos.Y is the vertical center of the line,
	// pos.X is interpreted according to align.
	DrawText(s string, pos f32.Point, size float32, align Align, c color.NRGBA)
	PushClip(r Rect)
	PopClip()
}
