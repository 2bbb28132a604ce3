// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package widgets

import (
	"image/color"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type PlotTheme struct {
	BackgroundColor     color.NRGBA
	AxesColor           color.NRGBA
	GridColor           color.NRGBA
	AxesXtextColor      color.NRGBA
	AxesYtextColor      color.NRGBA
	AxesFontSize        float32
	CandleUpColor       color.NRGBA
	CandleDownColor     color.NRGBA
	MA10Color           color.NRGBA
	MA30Color           color.NRGBA
	OverlayLineWidth    float32
	OscillatorColor     color.NRGBA
	ReferenceLineColor  color.NRGBA
	BuyMarkerColor      color.NRGBA
	SellMarkerColor     color.NRGBA
	MarkerOutlineColor  color.NRGBA
	MarkerGlowAlpha     uint8
	SignalBandAlpha     uint8
	MarkerSize          float32
	MarkerOutlineWidth  float32
	OscillatorLowLevel  float64
	OscillatorHighLevel float64
}

const (
	PlotThemeDark  = "dark"
	PlotThemeLight = "light"
)

var plotThemes = map[string]func() *PlotTheme{
	PlotThemeDark:  NewDarkPlotTheme,
	PlotThemeLight: NewLightPlotTheme,
}

// PlotThemeNames returns the registered theme names in sorted order.
func PlotThemeNames() []string {
	names := maps.Keys(plotThemes)
	slices.Sort(names)
	return names
}

func PlotThemeByName(name string) (*PlotTheme, bool) {
	f, ok := plotThemes[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

func NewDarkPlotTheme() *PlotTheme {
	return &PlotTheme{
		BackgroundColor:     color.NRGBA{R: 17, G: 19, B: 24, A: 255},
		AxesColor:           color.NRGBA{R: 140, G: 140, B: 140, A: 255},
		GridColor:           color.NRGBA{R: 45, G: 48, B: 56, A: 255},
		AxesXtextColor:      color.NRGBA{R: 220, G: 220, B: 220, A: 255},
		AxesYtextColor:      color.NRGBA{R: 220, G: 220, B: 220, A: 255},
		AxesFontSize:        11,
		CandleUpColor:       color.NRGBA{R: 38, G: 166, B: 154, A: 255},
		CandleDownColor:     color.NRGBA{R: 239, G: 83, B: 80, A: 255},
		MA10Color:           color.NRGBA{R: 255, G: 193, B: 7, A: 255},
		MA30Color:           color.NRGBA{R: 66, G: 165, B: 245, A: 255},
		OverlayLineWidth:    1.5,
		OscillatorColor:     color.NRGBA{R: 171, G: 71, B: 188, A: 255},
		ReferenceLineColor:  color.NRGBA{R: 120, G: 120, B: 120, A: 255},
		BuyMarkerColor:      color.NRGBA{R: 0, G: 230, B: 118, A: 255},
		SellMarkerColor:     color.NRGBA{R: 255, G: 23, B: 68, A: 255},
		MarkerOutlineColor:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		MarkerGlowAlpha:     70,
		SignalBandAlpha:     28,
		MarkerSize:          8,
		MarkerOutlineWidth:  1,
		OscillatorLowLevel:  30,
		OscillatorHighLevel: 70,
	}
}

func NewLightPlotTheme() *PlotTheme {
	return &PlotTheme{
		BackgroundColor:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		AxesColor:           color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		GridColor:           color.NRGBA{R: 230, G: 230, B: 230, A: 255},
		AxesXtextColor:      color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		AxesYtextColor:      color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		AxesFontSize:        11,
		CandleUpColor:       color.NRGBA{R: 0, G: 150, B: 70, A: 255},
		CandleDownColor:     color.NRGBA{R: 210, G: 30, B: 30, A: 255},
		MA10Color:           color.NRGBA{R: 230, G: 140, B: 0, A: 255},
		MA30Color:           color.NRGBA{R: 25, G: 100, B: 210, A: 255},
		OverlayLineWidth:    1.5,
		OscillatorColor:     color.NRGBA{R: 120, G: 40, B: 160, A: 255},
		ReferenceLineColor:  color.NRGBA{R: 150, G: 150, B: 150, A: 255},
		BuyMarkerColor:      color.NRGBA{R: 0, G: 170, B: 80, A: 255},
		SellMarkerColor:     color.NRGBA{R: 220, G: 0, B: 50, A: 255},
		MarkerOutlineColor:  color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		MarkerGlowAlpha:     60,
		SignalBandAlpha:     24,
		MarkerSize:          8,
		MarkerOutlineWidth:  1,
		OscillatorLowLevel:  30,
		OscillatorHighLevel: 70,
	}
}

// GetCandleColor returns the fill color of a candle, which is also used for its wick.
func (th *PlotTheme) GetCandleColor(isGreenCandle bool) color.NRGBA {
	if isGreenCandle {
		return th.CandleUpColor
	}
	return th.CandleDownColor
}

// WithAlpha returns c with its alpha channel replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
