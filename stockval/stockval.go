// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockval

import (
	"regexp"
	"strings"
)

const DefaultTicker = "TSLA"

type BrokerId string

const BrokerDaisy BrokerId = "daisy"

var tickerRegex = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,16}$`)

var nonTickerRegex = regexp.MustCompile(`[^A-Za-z0-9.\-^=]+`)

// NormalizeTicker removes characters which cannot be part of a symbol and converts to upper case.
func NormalizeTicker(t string) string {
	return strings.ToUpper(nonTickerRegex.ReplaceAllString(strings.TrimSpace(t), ""))
}

func IsValidTicker(t string) bool {
	return tickerRegex.MatchString(t)
}

func IndexOf[T comparable](s []T, e T) int {
	for i, v := range s {
		if v == e {
			return i
		}
	}
	return -1
}
