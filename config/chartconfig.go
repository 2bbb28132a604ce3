// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package config

import (
	"daisychart/candles"
	"daisychart/stockplot"
	"daisychart/stockval"
	"daisychart/widgets"
	"time"
)

type ChartConfig struct {
	Ticker   string
	Interval string
	Strategy stockval.StrategyParams
	// Period selects the recent mode. StartDate and EndDate (YYYY-MM-DD) are used otherwise.
	Period          string `yaml:",omitempty"`
	StartDate       string `yaml:",omitempty"`
	EndDate         string `yaml:",omitempty"`
	Panes           stockplot.PaneConfig
	Theme           string
	PaddingFraction float64
	Layout          stockplot.LayoutOptions
	Labels          stockplot.LabelOptions
	WindowWidth     int `yaml:",omitempty"`
	WindowHeight    int `yaml:",omitempty"`
}

func NewChartConfig() ChartConfig {
	return ChartConfig{
		Ticker:          stockval.DefaultTicker,
		Interval:        candles.OneMinute.String(),
		Strategy:        stockval.DefaultStrategyParams(),
		Period:          "2d",
		Panes:           stockplot.DefaultPaneConfig(),
		Theme:           widgets.PlotThemeDark,
		PaddingFraction: stockplot.DefaultPaddingFraction,
		Layout:          stockplot.DefaultLayoutOptions(),
		Labels:          stockplot.DefaultLabelOptions(),
		WindowWidth:     1200,
		WindowHeight:    800,
	}
}

// ParsedInterval returns the bar interval, falling back to daily bars.
func (c *ChartConfig) ParsedInterval() candles.Interval {
	r, err := candles.ParseInterval(c.Interval)
	if err != nil {
		return candles.OneDay
	}
	return r
}

// DateRange returns the configured dates, zero times if unset or invalid.
func (c *ChartConfig) DateRange() (start, end time.Time) {
	start, _ = time.Parse("2006-01-02", c.StartDate)
	end, _ = time.Parse("2006-01-02", c.EndDate)
	return
}

func (c *ChartConfig) sanitize() {
	def := NewChartConfig()
	c.Ticker = stockval.NormalizeTicker(c.Ticker)
	if !stockval.IsValidTicker(c.Ticker) {
		c.Ticker = def.Ticker
	}
	if _, err := candles.ParseInterval(c.Interval); err != nil {
		c.Interval = def.Interval
	}
	if c.Strategy.Validate() != nil {
		c.Strategy = def.Strategy
	}
	if start, _ := c.DateRange(); c.Period == "" && start.IsZero() {
		c.Period = def.Period
	}
	if _, ok := widgets.PlotThemeByName(c.Theme); !ok {
		c.Theme = def.Theme
	}
	if c.PaddingFraction < 0 || c.PaddingFraction > 1 {
		c.PaddingFraction = def.PaddingFraction
	}
	c.sanitizeLayout(def.Layout)
	c.sanitizeLabels(def.Labels)
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		c.WindowWidth, c.WindowHeight = def.WindowWidth, def.WindowHeight
	}
}

func (c *ChartConfig) sanitizeLayout(def stockplot.LayoutOptions) {
	l := &c.Layout
	m := l.Margins
	if m.Left < 0 || m.Right < 0 || m.Top < 0 || m.Bottom < 0 || m == (stockplot.Margins{}) {
		l.Margins = def.Margins
	}
	if l.OscillatorMinHeight <= 0 {
		l.OscillatorMinHeight = def.OscillatorMinHeight
	}
	if l.OscillatorFraction <= 0 || l.OscillatorFraction >= 1 {
		l.OscillatorFraction = def.OscillatorFraction
	}
	if l.PaneGap < 0 {
		l.PaneGap = def.PaneGap
	}
	if l.BodyFraction <= 0 || l.BodyFraction > 1 {
		l.BodyFraction = def.BodyFraction
	}
	if l.MinPaneHeight <= 0 {
		l.MinPaneHeight = def.MinPaneHeight
	}
}

func (c *ChartConfig) sanitizeLabels(def stockplot.LabelOptions) {
	l := &c.Labels
	g := &l.Granularity
	if g.SampleSize <= 0 {
		g.SampleSize = def.Granularity.SampleSize
	}
	if g.MidnightFraction <= 0 || g.MidnightFraction > 1 {
		g.MidnightFraction = def.Granularity.MidnightFraction
	}
	if g.MinMidnightCount <= 0 {
		g.MinMidnightCount = def.Granularity.MinMidnightCount
	}
	if l.MinDailyLabelGap <= 0 {
		l.MinDailyLabelGap = def.MinDailyLabelGap
	}
	if l.IntradayLabelWidth <= 0 {
		l.IntradayLabelWidth = def.IntradayLabelWidth
	}
	if l.MinIntradayLabels <= 0 {
		l.MinIntradayLabels = def.MinIntradayLabels
	}
	if l.MaxIntradayLabels < l.MinIntradayLabels {
		l.MaxIntradayLabels = max(def.MaxIntradayLabels, l.MinIntradayLabels)
	}
	if l.PriceLevels < 2 {
		l.PriceLevels = def.PriceLevels
	}
}
