// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockval

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCandleRequiresCompleteQuartet(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Point{Time: ts, Open: Float(100), High: Float(110), Low: Float(95), Close: Float(105)}
	o, h, l, c, ok := p.Candle()
	assert.True(t, ok)
	assert.Equal(t, []float64{100, 110, 95, 105}, []float64{o, h, l, c})

	missing := p
	missing.Low = nil
	_, _, _, _, ok = missing.Candle()
	assert.False(t, ok)

	nan := p
	nan.Close = Float(math.NaN())
	_, _, _, _, ok = nan.Candle()
	assert.False(t, ok)

	inconsistent := p
	inconsistent.High = Float(101)
	_, _, _, _, ok = inconsistent.Candle()
	assert.False(t, ok)
}

func TestSignalThreshold(t *testing.T) {
	assert.False(t, Point{BuySignal: 0}.HasBuySignal())
	assert.False(t, Point{BuySignal: 0.5}.HasBuySignal())
	assert.True(t, Point{BuySignal: 1}.HasBuySignal())
	assert.True(t, Point{SellSignal: 3}.HasSellSignal())
}

func TestValue(t *testing.T) {
	p := Point{MA10: Float(10), Oscillator: Float(math.Inf(1))}
	v, ok := p.Value(SeriesMA10)
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)
	_, ok = p.Value(SeriesMA30)
	assert.False(t, ok)
	_, ok = p.Value(SeriesOscillator)
	assert.False(t, ok)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "105.00", FormatPrice(105))
	assert.Equal(t, "0.10", FormatPrice(0.1))
	assert.Equal(t, "12.35", FormatPrice(12.345678))
	assert.Equal(t, "0.00", FormatPrice(-0.001))
	assert.Equal(t, "-", FormatPrice(math.NaN()))
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "BRK.B", NormalizeTicker(" brk.b "))
	assert.True(t, IsValidTicker("TSLA"))
	assert.False(t, IsValidTicker(""))
}
