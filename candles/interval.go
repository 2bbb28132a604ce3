// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package candles

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownInterval = errors.New("unknown bar interval")

// Interval is the bucket size of a bar series.
type Interval int32

const (
	OneMinute Interval = iota
	FiveMinutes
	FifteenMinutes
	ThirtyMinutes
	SixtyMinutes
	OneDay
	OneWeek
	OneMonth
)

const NumIntervals = OneMonth + 1

var intervalCodes = [NumIntervals]string{"1m", "5m", "15m", "30m", "60m", "1d", "1wk", "1mo"}

// ParseInterval accepts the interval codes used in API queries.
func ParseInterval(s string) (Interval, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	switch code {
	case "1h":
		return SixtyMinutes, nil
	case "1w":
		return OneWeek, nil
	}
	for i, c := range intervalCodes {
		if c == code {
			return Interval(i), nil
		}
	}
	return OneDay, fmt.Errorf("%w: %q", ErrUnknownInterval, s)
}

// String returns the query code of the interval.
func (r Interval) String() string {
	if r < 0 || r >= NumIntervals {
		return "invalid"
	}
	return intervalCodes[r]
}

func (r Interval) IsIntraday() bool {
	return r < OneDay
}

// LabelFormat is the time layout for labels of a single bar.
func (r Interval) LabelFormat() string {
	if r.IsIntraday() {
		return "15:04"
	}
	return "02 Jan 06"
}

func (r Interval) GetDuration(context time.Time) time.Duration {
	switch r {
	case OneMinute:
		return time.Minute
	case FiveMinutes:
		return time.Minute * 5
	case FifteenMinutes:
		return time.Minute * 15
	case ThirtyMinutes:
		return time.Minute * 30
	case SixtyMinutes:
		return time.Hour
	case OneDay:
		return getDayDuration(context)
	case OneWeek:
		d, _ := getWeekDuration(context)
		return d
	case OneMonth:
		d, _ := getMonthDuration(context)
		return d
	default:
		panic("unsupported bar interval")
	}
}

// GetNthBarTime returns the start of the bar n intervals after the bar containing t.
func (r Interval) GetNthBarTime(t time.Time, n int) time.Time {
	t = r.BarStart(t)
	if n < 0 {
		for i := 0; i > n; i-- {
			// Go one second back to the previous interval to get the correct duration.
			t = t.Add(-r.GetDuration(t.Add(-time.Second)))
		}
	}
	for i := 0; i < n; i++ {
		t = t.Add(r.GetDuration(t))
	}
	return t
}

// BarStart returns the start time of the bar containing t.
// Bars of a day or longer start at UTC midnight.
func (r Interval) BarStart(t time.Time) time.Time {
	switch r {
	case OneMinute:
		return t.Truncate(time.Minute)
	case FiveMinutes:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()/5*5, 0, 0, t.Location())
	case FifteenMinutes:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()/15*15, 0, 0, t.Location())
	case ThirtyMinutes:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()/30*30, 0, 0, t.Location())
	case SixtyMinutes:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case OneDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case OneWeek:
		// Bar weeks start on Mondays. Golang weeks start on Sundays.
		_, s := getWeekDuration(t)
		return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	case OneMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		panic("unsupported bar interval")
	}
}

func getDayDuration(t time.Time) time.Duration {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Sub(
		time.Date(y, m, d, 0, 0, 0, 0, t.Location()),
	)
}

func getWeekDuration(t time.Time) (time.Duration, time.Time) {
	weekdayDiff := int(t.Weekday()) - int(time.Monday)
	if weekdayDiff < 0 {
		weekdayDiff = 7 + weekdayDiff
	}
	y, m, d := t.Date()
	d -= weekdayDiff
	s := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return time.Date(y, m, d+7, 0, 0, 0, 0, t.Location()).Sub(s), s
}

func getMonthDuration(t time.Time) (time.Duration, time.Time) {
	// Use "Sub" call so that daylight saving time is considered.
	y, m, _ := t.Date()
	s := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location()).Sub(s), s
}
