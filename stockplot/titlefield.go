// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"daisychart/widgets"

	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/widget/material"
)

// LayoutTitleField shows the chart title and, if not empty, a status line below it.
func LayoutTitleField(gtx layout.Context, th *material.Theme, pth *widgets.PlotTheme, title, status string) layout.Dimensions {
	return widgets.PanelFrame(pth).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis: layout.Vertical,
		}.Layout(
			gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lblName := material.H6(th, title)
				lblName.Color = pth.AxesXtextColor
				lblName.Alignment = text.Start
				return lblName.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if status == "" {
					return layout.Dimensions{}
				}
				lblStatus := material.Caption(th, status)
				lblStatus.Color = pth.SellMarkerColor
				return lblStatus.Layout(gtx)
			}),
		)
	})
}
