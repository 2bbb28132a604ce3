// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"daisychart/stockval"
	"math"
)

type Granularity int

const (
	GranularityIntraday Granularity = iota
	GranularityDaily
)

func (g Granularity) String() string {
	if g == GranularityDaily {
		return "daily"
	}
	return "intraday"
}

// GranularityRules decide whether a series consists of daily bars,
// based on how many of the leading timestamps are at midnight.
type GranularityRules struct {
	SampleSize       int     `yaml:"sampleSize"`
	MidnightFraction float64 `yaml:"midnightFraction"`
	MinMidnightCount int     `yaml:"minMidnightCount"`
}

func DefaultGranularityRules() GranularityRules {
	return GranularityRules{SampleSize: 50, MidnightFraction: 0.7, MinMidnightCount: 5}
}

// ClassifyGranularity uses the default rules.
func ClassifyGranularity(seq stockval.PointSequence) Granularity {
	return DefaultGranularityRules().Classify(seq)
}

func (r GranularityRules) Classify(seq stockval.PointSequence) Granularity {
	n := min(len(seq), r.SampleSize)
	if n == 0 {
		return GranularityIntraday
	}
	midnight := 0
	for _, p := range seq[:n] {
		h, m, s := p.Time.Clock()
		if h == 0 && m == 0 && s == 0 && p.Time.Nanosecond() == 0 {
			midnight++
		}
	}
	if midnight >= r.MinMidnightCount && float64(midnight)/float64(n) >= r.MidnightFraction {
		return GranularityDaily
	}
	return GranularityIntraday
}

type LabelOptions struct {
	Granularity        GranularityRules `yaml:"granularity"`
	MinDailyLabelGap   float32          `yaml:"minDailyLabelGap"`
	IntradayLabelWidth float32          `yaml:"intradayLabelWidth"`
	MinIntradayLabels  int              `yaml:"minIntradayLabels"`
	MaxIntradayLabels  int              `yaml:"maxIntradayLabels"`
	PriceLevels        int              `yaml:"priceLevels"`
}

func DefaultLabelOptions() LabelOptions {
	return LabelOptions{
		Granularity:        DefaultGranularityRules(),
		MinDailyLabelGap:   60,
		IntradayLabelWidth: 80,
		MinIntradayLabels:  5,
		MaxIntradayLabels:  20,
		PriceLevels:        6,
	}
}

type TimeLabel struct {
	Index int
	X     float32
	Text  string
}

type PriceLabel struct {
	Value float64
	Y     float32
	Text  string
}

// TimeLabels selects the bars which get a time axis label.
func (o LabelOptions) TimeLabels(seq stockval.PointSequence, l Layout) []TimeLabel {
	if len(seq) == 0 || l.Count != len(seq) {
		return nil
	}
	if o.Granularity.Classify(seq) == GranularityDaily {
		return o.dailyLabels(seq, l)
	}
	return o.intradayLabels(seq, l)
}

// One label per month transition, skipping labels which are too close to the previous one.
func (o LabelOptions) dailyLabels(seq stockval.PointSequence, l Layout) []TimeLabel {
	var labels []TimeLabel
	prevMonth := -1
	for i, p := range seq {
		month := p.Time.Year()*12 + int(p.Time.Month())
		if month == prevMonth {
			continue
		}
		prevMonth = month
		x := MapIndexToX(i, l.Main.Min.X, l.BarSlotWidth)
		if len(labels) > 0 && x-labels[len(labels)-1].X < o.MinDailyLabelGap {
			continue
		}
		labels = append(labels, TimeLabel{Index: i, X: x, Text: p.Time.Format("Jan")})
	}
	return labels
}

func (o LabelOptions) intradayLabels(seq stockval.PointSequence, l Layout) []TimeLabel {
	count := o.IntradayLabelCount(l.Main.Dx())
	last := len(seq) - 1
	labels := make([]TimeLabel, 0, count+1)
	prevIndex := -1
	for j := 0; j <= count; j++ {
		i := int(math.Round(float64(j) * float64(last) / float64(count)))
		if i == prevIndex {
			continue
		}
		prevIndex = i
		labels = append(labels, TimeLabel{
			Index: i,
			X:     MapIndexToX(i, l.Main.Min.X, l.BarSlotWidth),
			Text:  seq[i].Time.Format("15:04"),
		})
	}
	return labels
}

// IntradayLabelCount bounds the number of label intervals by the pane width.
func (o LabelOptions) IntradayLabelCount(paneWidth float32) int {
	n := o.MinIntradayLabels
	if o.IntradayLabelWidth > 0 {
		n = int(math.Floor(float64(paneWidth / o.IntradayLabelWidth)))
	}
	return max(1, o.MinIntradayLabels, min(o.MaxIntradayLabels, n))
}

// PriceLabels returns evenly spaced levels from the top of the padded range down to its bottom.
func (o LabelOptions) PriceLabels(valueMin, valueMax, paddingFraction float64, pane Rect) []PriceLabel {
	levels := max(o.PriceLevels, 2)
	lo, hi := PaddedRange(valueMin, valueMax, paddingFraction)
	labels := make([]PriceLabel, levels)
	for k := range labels {
		v := hi - float64(k)*(hi-lo)/float64(levels-1)
		labels[k] = PriceLabel{
			Value: v,
			Y:     MapValueToY(v, valueMin, valueMax, pane.Min.Y, pane.Dy(), paddingFraction),
			Text:  stockval.FormatPrice(v),
		}
	}
	return labels
}
