// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockviz

import (
	"daisychart/config"
	"daisychart/stockapi"
)

// NewSeriesRequest builds the request of the configured chart. A configured
// start date selects the date range mode, the period is used otherwise.
func NewSeriesRequest(c config.ChartConfig) stockapi.SeriesRequest {
	req := stockapi.SeriesRequest{
		Ticker:   c.Ticker,
		Interval: c.ParsedInterval(),
		Strategy: c.Strategy,
	}
	start, end := c.DateRange()
	if !start.IsZero() {
		req.Start, req.End = start, end
	} else {
		req.Period = c.Period
	}
	return req
}
