// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package calendar

import (
	"time"

	"daisychart/candles"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/aa"
	"github.com/rickar/cal/v2/us"
)

const observedHolidayPostfix = "(observed)"

// ExchangeCalendar knows the trading days and regular session of an exchange.
type ExchangeCalendar struct {
	location         *time.Location
	calendar         *cal.BusinessCalendar
	openTime         clockTime
	closeTime        clockTime
	partialCloseTime clockTime
}

type clockTime struct {
	hours   int
	minutes int
}

func (c clockTime) on(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.hours, c.minutes, 0, 0, day.Location())
}

func NewNYSECalendar() *ExchangeCalendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("NYSE time location not supported")
	}
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		aa.GoodFriday,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	c.Cacheable = true
	return &ExchangeCalendar{
		location:         loc,
		calendar:         c,
		openTime:         clockTime{hours: 9, minutes: 30},
		closeTime:        clockTime{hours: 16},
		partialCloseTime: clockTime{hours: 13},
	}
}

func (e *ExchangeCalendar) Location() *time.Location {
	return e.location
}

func (e *ExchangeCalendar) IsHoliday(t time.Time) (bool, string) {
	actual, observed, h := e.calendar.IsHoliday(t.In(e.location))
	switch {
	case !actual && !observed:
		return false, ""
	case !actual:
		return true, h.Name + " " + observedHolidayPostfix
	default:
		return true, h.Name
	}
}

// IsTradingDay reports whether the exchange opens on the day of t, and whether it closes early.
func (e *ExchangeCalendar) IsTradingDay(t time.Time) (trading bool, partial bool) {
	day := t.In(e.location)
	trading = e.calendar.IsWorkday(day)
	if !trading {
		return
	}
	// Early close before independence day and christmas, and after thanksgiving.
	if holiday, name := e.IsHoliday(day.AddDate(0, 0, 1)); holiday &&
		(name == us.IndependenceDay.Name || name == us.ChristmasDay.Name) {
		partial = true
	} else if holiday, name = e.IsHoliday(day.AddDate(0, 0, -1)); holiday && name == us.ThanksgivingDay.Name {
		partial = true
	}
	return
}

func (e *ExchangeCalendar) GetTradingHours(t time.Time) (trading, partial bool, h TradingHours) {
	day := t.In(e.location)
	trading, partial = e.IsTradingDay(day)
	if !trading {
		return
	}
	h.Open = e.openTime.on(day)
	if partial {
		h.Close = e.partialCloseTime.on(day)
	} else {
		h.Close = e.closeTime.on(day)
	}
	return
}

// TradingDays returns the trading days in [start, end] as UTC midnights.
func (e *ExchangeCalendar) TradingDays(start, end time.Time) []time.Time {
	var days []time.Time
	y, m, d := start.Date()
	day := time.Date(y, m, d, 12, 0, 0, 0, e.location)
	ey, em, ed := end.Date()
	last := time.Date(ey, em, ed, 12, 0, 0, 0, e.location)
	for !day.After(last) {
		if trading, _ := e.IsTradingDay(day); trading {
			y, m, d = day.Date()
			days = append(days, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		}
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// SessionBars returns the start times of all intraday bars of the regular session on the day of t.
func (e *ExchangeCalendar) SessionBars(t time.Time, r candles.Interval) []time.Time {
	trading, _, h := e.GetTradingHours(t)
	if !trading || !r.IsIntraday() {
		return nil
	}
	var bars []time.Time
	for b := h.Open; b.Before(h.Close); b = b.Add(r.GetDuration(b)) {
		bars = append(bars, b)
	}
	return bars
}

// NextBarTime returns the start of the regular session bar following t,
// skipping closed hours and non-trading days.
func (e *ExchangeCalendar) NextBarTime(t time.Time, r candles.Interval) time.Time {
	if !r.IsIntraday() {
		day := r.GetNthBarTime(t, 1)
		for i := 0; i < 14; i++ {
			if trading, _ := e.IsTradingDay(day.Add(12 * time.Hour)); trading {
				return day
			}
			day = r.GetNthBarTime(day, 1)
		}
		return day
	}
	next := r.GetNthBarTime(t.In(e.location), 1)
	for i := 0; i < 14; i++ {
		trading, _, h := e.GetTradingHours(next)
		if trading && h.StateAt(next) == StateOpen {
			return next
		}
		if trading && next.Before(h.Open) {
			return h.Open
		}
		y, m, d := next.Date()
		next = time.Date(y, m, d+1, 0, 0, 0, 0, e.location)
	}
	return next
}
