// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package daisy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daisychart/config"
	"daisychart/metrics"
	"daisychart/stockapi"
	"daisychart/stockval"
	"daisychart/webclient"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var ErrUnexpectedStatus = webclient.ErrUnexpectedStatus

const (
	seriesPath       = "/api/ohlc"
	recentSeriesPath = "/api/ohlc/recent"
	streamPath       = "/api/ws"
	streamBufferSize = 64
)

type daisyBroker struct {
	rateLimiter *webclient.RateLimiter
	apiClient   *http.Client
	dialer      *websocket.Dialer
	config      config.BrokerConfig
	metrics     *metrics.Metrics
	now         func() time.Time
	log         *log.Entry
}

// NewBroker creates a client of the analysis service. m may be nil.
func NewBroker(m *metrics.Metrics) stockapi.ChartDataProvider {
	return &daisyBroker{
		rateLimiter: webclient.NewRateLimiter(0),
		apiClient:   &http.Client{},
		dialer:      &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		metrics:     m,
		now:         time.Now,
		log:         log.WithField("component", "daisy"),
	}
}

func GetBrokerId() stockval.BrokerId {
	return stockval.BrokerDaisy
}

func (rq *daisyBroker) ReadConfig(c config.Config) error {
	appConfig, err := c.Copy()
	if err != nil {
		return err
	}
	bc, ok := appConfig.BrokerConfig[GetBrokerId()]
	if !ok || bc.DataUrl == "" {
		return fmt.Errorf("missing %s data url", GetBrokerId())
	}
	if _, err := url.Parse(bc.DataUrl); err != nil {
		return fmt.Errorf("invalid %s data url: %w", GetBrokerId(), err)
	}
	rq.config = bc
	rq.apiClient.Timeout = time.Second * time.Duration(bc.DataTimeoutSeconds)
	rq.dialer.HandshakeTimeout = rq.apiClient.Timeout
	rq.rateLimiter = webclient.NewRateLimiter(bc.RateLimitPerSecond)
	return nil
}

func (rq *daisyBroker) runRequest(ctx context.Context, cmd string, query url.Values) (*http.Response, error) {
	retry := true
	var resp *http.Response
	for retry {
		err := rq.rateLimiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(rq.config.DataUrl, "/")+cmd, nil)
		if err != nil {
			return nil, err
		}
		req.URL.RawQuery = query.Encode()
		req.Header.Set("Accept", "application/json")

		resp, err = rq.apiClient.Do(req)
		if err != nil {
			return nil, err
		}
		retry, err = rq.rateLimiter.HandleResponseWithWait(ctx, resp)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		if retry {
			resp.Body.Close()
		}
	}
	return resp, nil
}

func (rq *daisyBroker) FetchSeries(ctx context.Context, req stockapi.SeriesRequest) (stockval.PointSequence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cmd := seriesPath
	if req.IsRecent() {
		cmd = recentSeriesPath
	}
	resp, err := rq.runRequest(ctx, cmd, req.Query(rq.now()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var series SeriesResponse
	if err = webclient.ParseJsonResponse(resp, &series); err != nil {
		return nil, fmt.Errorf("daisy series %s: %w", req.Ticker, err)
	}
	seq, skipped := Points(series.Data)
	rq.countMalformed(skipped)
	rq.log.WithFields(log.Fields{
		"ticker":   req.Ticker,
		"interval": req.Interval.String(),
		"points":   len(seq),
		"skipped":  skipped,
	}).Debug("series received")
	return stockval.Normalize(seq), nil
}

func (rq *daisyBroker) countMalformed(n int) {
	for i := 0; i < n; i++ {
		rq.metrics.EventDropped(metrics.DropMalformed)
	}
}

func (rq *daisyBroker) streamUrl(req stockapi.StreamRequest) (string, error) {
	raw := rq.config.WsUrl
	if raw == "" {
		raw = strings.TrimRight(rq.config.DataUrl, "/") + streamPath
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.RawQuery = req.Query().Encode()
	return u.String(), nil
}

func (rq *daisyBroker) StreamEvents(ctx context.Context, req stockapi.StreamRequest) (<-chan stockval.UpdateEvent, error) {
	if !stockval.IsValidTicker(req.Ticker) {
		return nil, fmt.Errorf("%w: ticker %q", stockapi.ErrInvalidRequest, req.Ticker)
	}
	u, err := rq.streamUrl(req)
	if err != nil {
		return nil, err
	}
	conn, resp, err := rq.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: websocket handshake returned %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return nil, fmt.Errorf("could not connect to daisy websocket: %w", err)
	}
	rq.log.WithField("stream", req.Key()).Info("realtime connection established")

	events := make(chan stockval.UpdateEvent, streamBufferSize)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()
	go rq.handleStream(ctx, conn, req, events, done)
	return events, nil
}

func (rq *daisyBroker) handleStream(ctx context.Context, conn *websocket.Conn, req stockapi.StreamRequest,
	events chan<- stockval.UpdateEvent, done chan<- struct{}) {
	defer close(events)
	defer close(done)
	defer conn.Close()
	logger := rq.log.WithField("stream", req.Key())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("realtime connection was terminated")
			}
			return
		}
		var msg StreamMessage
		if err = json.Unmarshal(raw, &msg); err != nil {
			logger.WithError(err).Warn("dropping undecodable message")
			rq.metrics.EventDropped(metrics.DropMalformed)
			continue
		}
		ev, skipped, err := msg.Event()
		rq.countMalformed(skipped)
		if err != nil {
			logger.WithError(err).Warn("dropping malformed message")
			rq.metrics.EventDropped(metrics.DropMalformed)
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
