// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package initapp

import (
	"bytes"
	"context"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	"daisychart/brokers/daisy"
	"daisychart/calendar"
	"daisychart/config"
	"daisychart/mock"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockConfig(t *testing.T) config.Config {
	s := mock.NewServer(mock.NewGenerator(calendar.NewNYSECalendar()), nil, time.Second)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		srv.Close()
	})
	c := config.NewTestConfig()
	appConfig, err := c.Lock()
	require.NoError(t, err)
	b := appConfig.BrokerConfig[daisy.GetBrokerId()]
	b.DataUrl = srv.URL
	appConfig.BrokerConfig[daisy.GetBrokerId()] = b
	appConfig.Chart.Interval = "1d"
	appConfig.Chart.Period = "6mo"
	require.NoError(t, c.Unlock(appConfig))
	return c
}

func TestInitializeRejectsInvalidLogLevel(t *testing.T) {
	a := NewInitApp(config.NewTestConfig())
	assert.Error(t, a.Initialize("loud"))
	require.NoError(t, a.Initialize(""))
	a.Terminate()
}

func TestRenderPng(t *testing.T) {
	a := NewInitApp(newMockConfig(t))
	var buf bytes.Buffer
	err := a.RenderPng(context.Background(), &buf, RenderOptions{Width: 400, Height: 300, Scale: 2, Ticker: "aapl"})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
	assert.Equal(t, 1, testutil.CollectAndCount(a.Metrics().RenderSeconds))
}

func TestRenderPngRejectsInvalidPeriod(t *testing.T) {
	a := NewInitApp(newMockConfig(t))
	var buf bytes.Buffer
	err := a.RenderPng(context.Background(), &buf, RenderOptions{Width: 100, Height: 100, Scale: 1, Period: "forever"})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRenderPngRejectsInvalidSize(t *testing.T) {
	a := NewInitApp(config.NewTestConfig())
	for _, opts := range []RenderOptions{
		{Width: -1, Height: 300, Scale: 1},
		{Width: 400, Height: 0, Scale: 1},
	} {
		var buf bytes.Buffer
		err := a.RenderPng(context.Background(), &buf, opts)
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Zero(t, buf.Len())
	}
	assert.NoError(t, RenderOptions{Width: 1, Height: 1}.Validate())
}

func TestRunMockServerStopsOnCancel(t *testing.T) {
	a := NewInitApp(config.NewTestConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunMockServer(ctx, "127.0.0.1:0", time.Second) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("mock server did not stop")
	}
}
