// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotThemeRegistry(t *testing.T) {
	assert.Equal(t, []string{PlotThemeDark, PlotThemeLight}, PlotThemeNames())
	th, ok := PlotThemeByName(PlotThemeLight)
	require.True(t, ok)
	assert.Equal(t, NewLightPlotTheme(), th)
	_, ok = PlotThemeByName("sepia")
	assert.False(t, ok)
}

func TestCandleColorsDiffer(t *testing.T) {
	for _, name := range PlotThemeNames() {
		th, _ := PlotThemeByName(name)
		assert.NotEqual(t, th.GetCandleColor(true), th.GetCandleColor(false), name)
		assert.NotEqual(t, th.BuyMarkerColor, th.SellMarkerColor, name)
		assert.Less(t, th.OscillatorLowLevel, th.OscillatorHighLevel, name)
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(NewDarkPlotTheme().BuyMarkerColor, 12)
	assert.Equal(t, uint8(12), c.A)
	assert.Equal(t, NewDarkPlotTheme().BuyMarkerColor.G, c.G)
}

func TestDropDownSelection(t *testing.T) {
	d := NewDropDown([]string{"1m", "5m", "1d"}, strings.ToUpper, "5m")
	assert.Equal(t, "5m", d.Selected())
	_, changed := d.Changed()
	assert.False(t, changed)

	d.selected, d.changed = 2, true
	v, changed := d.Changed()
	assert.True(t, changed)
	assert.Equal(t, "1d", v)
	_, changed = d.Changed()
	assert.False(t, changed)
	assert.Equal(t, "1D", d.items[2].text)
}

func TestDropDownUnknownSelection(t *testing.T) {
	d := NewDropDown([]int{3, 4}, func(i int) string { return "x" }, 7)
	assert.Equal(t, 3, d.Selected())
}
