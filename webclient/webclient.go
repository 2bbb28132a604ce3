// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package webclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrContentType      = errors.New("unexpected content type")
)

const maxErrorBody = 512

// errorDetail is the error body of JSON APIs which report a single message.
type errorDetail struct {
	Detail string `json:"detail"`
}

// ParseJsonResponse decodes a successful JSON response into v.
func ParseJsonResponse(resp *http.Response, v any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	m, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || m != "application/json" {
		return fmt.Errorf("%w: %q", ErrContentType, resp.Header.Get("Content-Type"))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var d errorDetail
	if json.Unmarshal(b, &d) == nil && d.Detail != "" {
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, d.Detail)
	}
	return fmt.Errorf("%w %d (%s)", ErrUnexpectedStatus, resp.StatusCode, b)
}
