// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"errors"
	"math"
)

var (
	ErrEmptySeries     = errors.New("series has no points")
	ErrSurfaceTooSmall = errors.New("surface too small for chart layout")
)

// PaneConfig selects the optional chart content. It never changes point data.
type PaneConfig struct {
	ShowMA10       bool `yaml:"showMa10"`
	ShowMA30       bool `yaml:"showMa30"`
	ShowOscillator bool `yaml:"showOscillator"`
}

func DefaultPaneConfig() PaneConfig {
	return PaneConfig{ShowMA10: true, ShowMA30: true, ShowOscillator: true}
}

type Margins struct {
	Left   float32 `yaml:"left"`
	Right  float32 `yaml:"right"`
	Top    float32 `yaml:"top"`
	Bottom float32 `yaml:"bottom"`
}

// LayoutOptions are in device independent units.
type LayoutOptions struct {
	Margins             Margins `yaml:"margins"`
	OscillatorMinHeight float32 `yaml:"oscillatorMinHeight"`
	OscillatorFraction  float32 `yaml:"oscillatorFraction"`
	PaneGap             float32 `yaml:"paneGap"`
	BodyFraction        float32 `yaml:"bodyFraction"`
	MinPaneHeight       float32 `yaml:"minPaneHeight"`
}

func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Margins:             Margins{Left: 64, Right: 12, Top: 12, Bottom: 28},
		OscillatorMinHeight: 60,
		OscillatorFraction:  0.22,
		PaneGap:             12,
		BodyFraction:        0.8,
		MinPaneHeight:       20,
	}
}

type Layout struct {
	Width         float32
	Height        float32
	Main          Rect
	Oscillator    Rect
	HasOscillator bool
	// AxisLabelY is the vertical center of the time axis labels.
	AxisLabelY   float32
	BarSlotWidth float32
	BarBodyWidth float32
	Count        int
}

// Bottom returns the lower edge of the lowest pane.
func (l Layout) Bottom() float32 {
	if l.HasOscillator {
		return l.Oscillator.Max.Y
	}
	return l.Main.Max.Y
}

// Panes returns all visible panes from top to bottom.
func (l Layout) Panes() []Rect {
	if l.HasOscillator {
		return []Rect{l.Main, l.Oscillator}
	}
	return []Rect{l.Main}
}

// PlanLayout computes the pane rectangles for count points using default options.
func PlanLayout(width, height float32, pc PaneConfig, count int) (Layout, error) {
	return DefaultLayoutOptions().Plan(width, height, pc, count)
}

func (o LayoutOptions) Plan(width, height float32, pc PaneConfig, count int) (Layout, error) {
	if count <= 0 {
		return Layout{}, ErrEmptySeries
	}
	m := o.Margins
	left, right := m.Left, width-m.Right
	top, bottom := m.Top, height-m.Bottom
	if right-left < 1 || bottom-top < o.MinPaneHeight {
		return Layout{}, ErrSurfaceTooSmall
	}
	l := Layout{
		Width:  width,
		Height: height,
		Count:  count,
	}
	mainBottom := bottom
	if pc.ShowOscillator {
		oscHeight := float32(math.Max(float64(o.OscillatorMinHeight), float64(o.OscillatorFraction*height)))
		mainBottom = bottom - oscHeight - o.PaneGap
		if mainBottom-top < o.MinPaneHeight {
			return Layout{}, ErrSurfaceTooSmall
		}
		l.Oscillator = Rt(left, mainBottom+o.PaneGap, right, bottom)
		l.HasOscillator = true
	}
	l.Main = Rt(left, top, right, mainBottom)
	l.AxisLabelY = bottom + m.Bottom/2
	l.BarSlotWidth = (right - left) / float32(count)
	l.BarBodyWidth = getBodyWidth(l.BarSlotWidth, o.BodyFraction)
	return l, nil
}

func getBodyWidth(slotWidth, bodyFraction float32) float32 {
	const minBodyWidth = 1
	return clamp(slotWidth*bodyFraction, minBodyWidth, slotWidth)
}
