// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package initapp

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"time"

	"daisychart/brokers/daisy"
	"daisychart/calendar"
	"daisychart/config"
	"daisychart/logger"
	"daisychart/metrics"
	"daisychart/mock"
	"daisychart/stockapi"
	"daisychart/stockplot"
	"daisychart/stockviz"
	"daisychart/widgets"

	"github.com/sirupsen/logrus"
)

// InitApp holds everything the commands share: configuration, logging, metrics and the data provider.
type InitApp struct {
	config        config.Config
	metrics       *metrics.Metrics
	metricsServer *metrics.Server
	provider      stockapi.ChartDataProvider
	log           *logrus.Entry
}

// RenderOptions select the output of a headless render.
type RenderOptions struct {
	Width  int
	Height int
	Scale  float32
	// Overrides of the configured chart, empty values keep the configuration.
	Ticker   string
	Interval string
	Period   string
}

var ErrInvalidSize = errors.New("render size must be positive")

func (o RenderOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, o.Width, o.Height)
	}
	return nil
}

func NewInitApp(c config.Config) *InitApp {
	return &InitApp{
		config:  config.WithEnv(c),
		metrics: metrics.NewMetrics(),
		log:     logger.WithComponent("app"),
	}
}

// Initialize configures logging and starts the metrics endpoint if one is configured.
// A non-empty log level takes precedence over the configuration.
func (a *InitApp) Initialize(logLevel string) error {
	appConfig, err := a.config.Copy()
	if err != nil {
		return err
	}
	logger.Configure(appConfig.Log)
	if logLevel != "" {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
	}
	if appConfig.Metrics.ListenAddr != "" {
		a.metricsServer = metrics.NewServer(appConfig.Metrics.ListenAddr, a.metrics)
		a.metricsServer.Start()
	}
	return nil
}

func (a *InitApp) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *InitApp) Provider() (stockapi.ChartDataProvider, error) {
	if a.provider != nil {
		return a.provider, nil
	}
	p := daisy.NewBroker(a.metrics)
	if err := p.ReadConfig(a.config); err != nil {
		return nil, err
	}
	a.provider = p
	return p, nil
}

// RunViewer shows the chart window until it is closed.
func (a *InitApp) RunViewer(ctx context.Context) error {
	p, err := a.Provider()
	if err != nil {
		return err
	}
	w, err := stockviz.NewChartWindow(a.config, p, a.metrics)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// RenderPng fetches the configured series and writes the rendered chart as PNG.
func (a *InitApp) RenderPng(ctx context.Context, out io.Writer, opts RenderOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	appConfig, err := a.config.Copy()
	if err != nil {
		return err
	}
	chart := appConfig.Chart
	if opts.Ticker != "" {
		chart.Ticker = opts.Ticker
	}
	if opts.Interval != "" {
		chart.Interval = opts.Interval
	}
	if opts.Period != "" {
		chart.Period = opts.Period
		chart.StartDate = ""
	}
	p, err := a.Provider()
	if err != nil {
		return err
	}
	req := stockviz.NewSeriesRequest(chart)
	if err := req.Validate(); err != nil {
		return err
	}
	seq, err := p.FetchSeries(ctx, req)
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"ticker": req.Ticker, "bars": len(seq)}).Info("rendering chart")

	pth, ok := widgets.PlotThemeByName(chart.Theme)
	if !ok {
		pth = widgets.NewDarkPlotTheme()
	}
	surface := stockplot.NewRasterSurface(opts.Width, opts.Height, opts.Scale)
	start := time.Now()
	stockviz.NewRenderer(chart, pth).Render(surface, seq, chart.Panes)
	a.metrics.ObserveRender(time.Since(start))
	if err := png.Encode(out, surface.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// RunMockServer serves generated data on addr until ctx is cancelled.
func (a *InitApp) RunMockServer(ctx context.Context, addr string, emitEvery time.Duration) error {
	s := mock.NewServer(mock.NewGenerator(calendar.NewNYSECalendar()), a.metrics, emitEvery)
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Stop()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.log.WithField("addr", addr).Info("mock server listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *InitApp) Terminate() {
	if a.metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.metricsServer.Stop(ctx); err != nil {
		a.log.WithError(err).Warn("metrics server shutdown")
	}
}
