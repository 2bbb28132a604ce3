// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package widgets

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
)

type Frame struct {
	OuterMargin     unit.Dp
	InnerMargin     unit.Dp
	BorderWidth     unit.Dp
	CornerRadius    unit.Dp
	BorderColor     color.NRGBA
	BackgroundColor color.NRGBA
}

// PanelFrame is the frame of the header and toolbar panels.
func PanelFrame(pth *PlotTheme) Frame {
	return Frame{
		OuterMargin:     2,
		InnerMargin:     4,
		BorderWidth:     1,
		CornerRadius:    4,
		BorderColor:     pth.AxesColor,
		BackgroundColor: pth.GridColor,
	}
}

func (f Frame) Layout(gtx layout.Context, w layout.Widget) layout.Dimensions {
	inner := func(gtx layout.Context) layout.Dimensions {
		if f.BackgroundColor.A == 0 {
			return layout.UniformInset(f.InnerMargin).Layout(gtx, w)
		}
		// Record the content first, the background needs its size.
		macro := op.Record(gtx.Ops)
		dims := layout.UniformInset(f.InnerMargin).Layout(gtx, w)
		call := macro.Stop()
		radius := gtx.Dp(f.CornerRadius)
		paint.FillShape(gtx.Ops, f.BackgroundColor, clip.UniformRRect(image.Rectangle{Max: dims.Size}, radius).Op(gtx.Ops))
		call.Add(gtx.Ops)
		return dims
	}
	return layout.UniformInset(f.OuterMargin).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return widget.Border{Color: f.BorderColor, Width: f.BorderWidth, CornerRadius: f.CornerRadius}.Layout(gtx, inner)
	})
}
