// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockapi

import (
	"context"
	"daisychart/candles"
	"daisychart/config"
	"daisychart/stockval"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

var ErrInvalidRequest = errors.New("invalid request")

const DateLayout = "2006-01-02"

var periodRegex = regexp.MustCompile(`^[1-9][0-9]*(d|wk|mo|y)$`)

// SeriesRequest asks for either a date range or a recent period.
type SeriesRequest struct {
	Ticker   string
	Interval candles.Interval
	Strategy stockval.StrategyParams
	Start    time.Time
	End      time.Time
	// Period selects the recent mode, e.g. "2d". Start and End are ignored if set.
	Period string
}

func (r SeriesRequest) IsRecent() bool {
	return r.Period != ""
}

func (r SeriesRequest) Validate() error {
	if !stockval.IsValidTicker(r.Ticker) {
		return fmt.Errorf("%w: ticker %q", ErrInvalidRequest, r.Ticker)
	}
	if err := r.Strategy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.IsRecent() {
		if !periodRegex.MatchString(r.Period) {
			return fmt.Errorf("%w: period %q", ErrInvalidRequest, r.Period)
		}
		return nil
	}
	if r.Start.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidRequest)
	}
	return nil
}

// Query returns the query parameters. An end date before the start date is replaced by today.
func (r SeriesRequest) Query(now time.Time) url.Values {
	q := url.Values{}
	q.Set("ticker", r.Ticker)
	q.Set("interval", r.Interval.String())
	for k, v := range r.Strategy.QueryValues() {
		q.Set(k, v)
	}
	if r.IsRecent() {
		q.Set("period", r.Period)
		return q
	}
	end := r.End
	if end.IsZero() || end.Before(r.Start) {
		end = now
	}
	q.Set("start", r.Start.Format(DateLayout))
	q.Set("end", end.Format(DateLayout))
	return q
}

// StreamRequest identifies one live connection.
type StreamRequest struct {
	Ticker   string
	Interval candles.Interval
	Strategy stockval.StrategyParams
}

func (r StreamRequest) Key() string {
	return fmt.Sprintf("%s/%s/%s", r.Ticker, r.Interval, r.Strategy)
}

func (r StreamRequest) Query() url.Values {
	q := url.Values{}
	q.Set("ticker", r.Ticker)
	q.Set("interval", r.Interval.String())
	for k, v := range r.Strategy.QueryValues() {
		q.Set(k, v)
	}
	return q
}

type SeriesFetcher interface {
	// FetchSeries returns the indicator-annotated series, which may be empty.
	FetchSeries(ctx context.Context, req SeriesRequest) (stockval.PointSequence, error)
}

type EventStreamer interface {
	// StreamEvents delivers events until ctx is cancelled or the connection ends.
	// The channel is closed afterwards. Cancelling ctx closes the connection.
	StreamEvents(ctx context.Context, req StreamRequest) (<-chan stockval.UpdateEvent, error)
}

type ChartDataProvider interface {
	SeriesFetcher
	EventStreamer
	ReadConfig(c config.Config) error
}
