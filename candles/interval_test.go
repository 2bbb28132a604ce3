// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package candles

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	for i := Interval(0); i < NumIntervals; i++ {
		r, err := ParseInterval(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, r)
	}
	r, err := ParseInterval(" 1H ")
	require.NoError(t, err)
	assert.Equal(t, SixtyMinutes, r)

	_, err = ParseInterval("7m")
	assert.True(t, errors.Is(err, ErrUnknownInterval))
}

func TestIntraday(t *testing.T) {
	assert.True(t, FifteenMinutes.IsIntraday())
	assert.False(t, OneDay.IsIntraday())
	assert.Equal(t, "15:04", OneMinute.LabelFormat())
}

func TestGetMonthDuration(t *testing.T) {
	// December has 31 days
	d, _ := getMonthDuration(time.Date(2022, 12, 24, 10, 10, 10, 0, time.UTC))
	assert.Equal(t, float64(44640), d.Minutes())
	// February 2024 has 29 days
	d, _ = getMonthDuration(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, float64(29*24*60), d.Minutes())
}

func TestGetDayDurationDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Clocks go back one hour on this day.
	d := getDayDuration(time.Date(2023, 11, 5, 12, 0, 0, 0, loc))
	assert.Equal(t, float64(25*60), d.Minutes())
}

func TestGetNthBarTime(t *testing.T) {
	d := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, OneMonth.GetNthBarTime(d, 12).Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, OneMonth.GetNthBarTime(d, -1).Equal(time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC)))

	m := time.Date(2024, 3, 4, 14, 33, 20, 0, time.UTC)
	assert.True(t, FiveMinutes.GetNthBarTime(m, 0).Equal(time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)))
	assert.True(t, FiveMinutes.GetNthBarTime(m, 2).Equal(time.Date(2024, 3, 4, 14, 40, 0, 0, time.UTC)))
}

func TestBarStartWeek(t *testing.T) {
	// Wednesday belongs to the week starting Monday Jan 3rd.
	d := time.Date(2022, 1, 5, 13, 0, 0, 0, time.UTC)
	assert.True(t, OneWeek.BarStart(d).Equal(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)))
	// Sunday belongs to the previous week.
	d = time.Date(2022, 1, 9, 13, 0, 0, 0, time.UTC)
	assert.True(t, OneWeek.BarStart(d).Equal(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)))
}
