// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package calendar

import "time"

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// TradingHours is the regular session of one trading day.
type TradingHours struct {
	Open  time.Time
	Close time.Time
}

func (h TradingHours) StateAt(t time.Time) State {
	if h.Open.IsZero() || t.Before(h.Open) || !t.Before(h.Close) {
		return StateClosed
	}
	return StateOpen
}
