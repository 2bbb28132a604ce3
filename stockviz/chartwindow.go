// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockviz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"daisychart/candles"
	"daisychart/config"
	"daisychart/metrics"
	"daisychart/stockapi"
	"daisychart/stockplot"
	"daisychart/stockval"
	"daisychart/widgets"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	log "github.com/sirupsen/logrus"
)

// ChartWindow shows one live chart in a Gio window.
type ChartWindow struct {
	win              *app.Window
	config           config.Config
	chart            config.ChartConfig
	session          *Session
	renderer         *stockplot.Renderer
	plotTheme        *widgets.PlotTheme
	matTheme         *material.Theme
	intervalDropDown *widgets.DropDown[candles.Interval]
	strategyDropDown *widgets.DropDown[string]
	ma10Toggle       *widgets.Toggle
	ma30Toggle       *widgets.Toggle
	oscillatorToggle *widgets.Toggle
	openMutex        sync.Mutex
	openSerial       atomic.Uint64
	statusMutex      sync.Mutex
	status           string
	modified         bool
}

func NewChartWindow(c config.Config, source DataSource, m *metrics.Metrics) (*ChartWindow, error) {
	appConfig, err := c.Copy()
	if err != nil {
		return nil, err
	}
	chart := appConfig.Chart
	pth, ok := widgets.PlotThemeByName(chart.Theme)
	if !ok {
		pth = widgets.NewDarkPlotTheme()
	}
	w := &ChartWindow{
		config:    c,
		chart:     chart,
		renderer:  NewRenderer(chart, pth),
		plotTheme: pth,
		matTheme:  widgets.NewMaterialTheme(pth),
		intervalDropDown: widgets.NewDropDown(
			allIntervals(),
			candles.Interval.String,
			chart.ParsedInterval()),
		strategyDropDown: widgets.NewDropDown(
			[]string{stockval.StrategyBreakRetest, stockval.StrategyMACrossover},
			func(s string) string { return s },
			chart.Strategy.Name),
		ma10Toggle:       widgets.NewToggle("MA10", chart.Panes.ShowMA10),
		ma30Toggle:       widgets.NewToggle("MA30", chart.Panes.ShowMA30),
		oscillatorToggle: widgets.NewToggle("RSI", chart.Panes.ShowOscillator),
	}
	w.session = NewSession(source, w, m)
	return w, nil
}

func allIntervals() []candles.Interval {
	r := make([]candles.Interval, 0, candles.NumIntervals)
	for i := candles.Interval(0); i < candles.NumIntervals; i++ {
		r = append(r, i)
	}
	return r
}

// NewRenderer creates a renderer using the configured layout and labels.
func NewRenderer(c config.ChartConfig, pth *widgets.PlotTheme) *stockplot.Renderer {
	r := stockplot.NewRenderer(pth)
	r.Layout = c.Layout
	r.Labels = c.Labels
	r.PaddingFraction = c.PaddingFraction
	return r
}

func (w *ChartWindow) Invalidate() {
	if w.win != nil {
		w.win.Invalidate()
	}
}

func (w *ChartWindow) Run(ctx context.Context) error {
	w.win = app.NewWindow(
		app.Title(w.config.GetAppName()),
		app.Size(unit.Dp(w.chart.WindowWidth), unit.Dp(w.chart.WindowHeight)),
	)
	w.open(ctx)
	err := w.handleEvents(ctx)
	w.closeSession()
	if saveErr := w.saveConfiguration(); saveErr != nil {
		log.WithError(saveErr).Error("error saving configuration")
	}
	return err
}

func (w *ChartWindow) open(ctx context.Context) {
	serial := w.openSerial.Add(1)
	req := NewSeriesRequest(w.chart)
	w.setStatus("loading...")
	go w.openLatest(ctx, serial, req)
}

// openLatest opens req unless a newer selection was made in the meantime.
func (w *ChartWindow) openLatest(ctx context.Context, serial uint64, req stockapi.SeriesRequest) bool {
	w.openMutex.Lock()
	defer w.openMutex.Unlock()
	if w.openSerial.Load() != serial {
		return false
	}
	err := w.session.Open(ctx, req)
	if w.openSerial.Load() == serial {
		if err != nil {
			w.setStatus(err.Error())
		} else {
			w.setStatus("")
		}
	}
	w.Invalidate()
	return true
}

// closeSession stops the session and skips pending opens.
func (w *ChartWindow) closeSession() {
	w.openSerial.Add(1)
	w.session.Close()
	// An open which passed the serial check before may have reopened the session.
	w.openMutex.Lock()
	w.session.Close()
	w.openMutex.Unlock()
}

func (w *ChartWindow) setStatus(s string) {
	w.statusMutex.Lock()
	w.status = s
	w.statusMutex.Unlock()
}

func (w *ChartWindow) getStatus() string {
	w.statusMutex.Lock()
	defer w.statusMutex.Unlock()
	return w.status
}

func (w *ChartWindow) handleEvents(ctx context.Context) error {
	var ops op.Ops

	for e := range w.win.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)
			paint.Fill(gtx.Ops, w.matTheme.Bg)
			w.layout(ctx, gtx)
			e.Frame(gtx.Ops)
		case system.DestroyEvent:
			return e.Err
		}
	}
	return nil
}

func (w *ChartWindow) panes() stockplot.PaneConfig {
	return stockplot.PaneConfig{
		ShowMA10:       w.ma10Toggle.On,
		ShowMA30:       w.ma30Toggle.On,
		ShowOscillator: w.oscillatorToggle.On,
	}
}

func (w *ChartWindow) title() string {
	return fmt.Sprintf("%s  %s  %s", w.chart.Ticker, w.chart.Interval, w.chart.Strategy.Name)
}

func (w *ChartWindow) layout(ctx context.Context, gtx layout.Context) layout.Dimensions {
	toggled := false
	toggle := func(t *widgets.Toggle) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			dims, changed := t.Layout(w.matTheme, gtx)
			toggled = toggled || changed
			return dims
		})
	}
	dims := layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return stockplot.LayoutTitleField(gtx, w.matTheme, w.plotTheme, w.title(), w.getStatus())
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return w.intervalDropDown.Layout(w.matTheme, gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return w.strategyDropDown.Layout(w.matTheme, gtx)
				}),
				toggle(w.ma10Toggle),
				toggle(w.ma30Toggle),
				toggle(w.oscillatorToggle),
			)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			w.session.Render(stockplot.NewGioSurface(gtx, w.matTheme), w.renderer, w.panes())
			return layout.Dimensions{Size: gtx.Constraints.Max}
		}),
	)

	reopen := false
	if r, changed := w.intervalDropDown.Changed(); changed {
		w.chart.Interval = r.String()
		reopen = true
	}
	if s, changed := w.strategyDropDown.Changed(); changed {
		w.chart.Strategy.Name = s
		reopen = true
	}
	if reopen {
		w.modified = true
		w.open(ctx)
	}
	if toggled {
		w.modified = true
		w.chart.Panes = w.panes()
		gtx.Execute(op.InvalidateCmd{})
	}
	return dims
}

// saveConfiguration stores the chart selection if it was changed in the window.
func (w *ChartWindow) saveConfiguration() error {
	if !w.modified {
		return nil
	}
	appConfig, err := w.config.Lock()
	if err != nil {
		return err
	}
	appConfig.Chart.Interval = w.chart.Interval
	appConfig.Chart.Strategy = w.chart.Strategy
	appConfig.Chart.Panes = w.chart.Panes
	return w.config.Unlock(appConfig)
}
