// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package webclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const MinWaitTime = time.Millisecond * 250
const MaxRetryWaitTime = time.Second * 10

// RateLimiter throttles outgoing requests and backs off if the server complains.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerSecond with a burst of one request.
// A non-positive rate disables limiting.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

func (l *RateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// HandleResponseWithWait returns retry=true after a delay if the server responded with 429.
// The delay follows the Retry-After header if present.
func (l *RateLimiter) HandleResponseWithWait(ctx context.Context, resp *http.Response) (retry bool, err error) {
	if resp.StatusCode != http.StatusTooManyRequests {
		return false, nil
	}
	wait := MinWaitTime
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
		wait = min(time.Duration(s)*time.Second, MaxRetryWaitTime)
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(wait):
		return true, nil
	}
}
