// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package widgets

import (
	"daisychart/fonts/chartfont"
	"image/color"

	"gioui.org/text"
	"gioui.org/widget/material"
)

// NewMaterialTheme returns a material theme matching the plot theme colors.
func NewMaterialTheme(pt *PlotTheme) *material.Theme {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.NoSystemFonts(), text.WithCollection(chartfont.Collection()))
	th.Bg = pt.BackgroundColor
	th.Fg = pt.AxesXtextColor
	th.ContrastFg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	return th
}
