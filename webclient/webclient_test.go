// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package webclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(code int, contentType, body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	return &http.Response{StatusCode: code, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func TestParseJsonResponse(t *testing.T) {
	var v struct{ Ticker string }
	require.NoError(t, ParseJsonResponse(response(200, "application/json; charset=utf-8", `{"ticker":"TSLA"}`), &v))
	assert.Equal(t, "TSLA", v.Ticker)

	err := ParseJsonResponse(response(404, "text/plain", "not found"), &v)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "404")

	err = ParseJsonResponse(response(400, "application/json", `{"detail":"bad query: period"}`), &v)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "bad query: period")

	err = ParseJsonResponse(response(200, "text/html", "<html>"), &v)
	assert.True(t, errors.Is(err, ErrContentType))
}

func TestRateLimiterThrottles(t *testing.T) {
	l := NewRateLimiter(20)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	// The first request passes, the others wait for 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateLimiterUnlimited(t *testing.T) {
	l := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestHandleResponseWithWait(t *testing.T) {
	l := NewRateLimiter(0)
	retry, err := l.HandleResponseWithWait(context.Background(), response(200, "application/json", ""))
	require.NoError(t, err)
	assert.False(t, retry)

	retry, err = l.HandleResponseWithWait(context.Background(), response(429, "text/plain", ""))
	require.NoError(t, err)
	assert.True(t, retry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := response(429, "text/plain", "")
	resp.Header.Set("Retry-After", "5")
	_, err = l.HandleResponseWithWait(ctx, resp)
	assert.True(t, errors.Is(err, context.Canceled))
}
