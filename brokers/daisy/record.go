// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package daisy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"daisychart/stockval"
)

var ErrMalformedRecord = errors.New("malformed record")

const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeBar      = "bar"
)

// Naive timestamps are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NullFloat is a JSON number which may be null, NaN or a numeric string.
type NullFloat struct {
	Float float64
	Valid bool
}

func Null(v *float64) NullFloat {
	if v == nil || !stockval.IsValidFloat(*v) {
		return NullFloat{}
	}
	return NullFloat{Float: *v, Valid: true}
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid || !stockval.IsValidFloat(n.Float) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float)
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	*n = NullFloat{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		// Non-numeric strings are treated as missing values.
		if f, err := strconv.ParseFloat(s, 64); err == nil && stockval.IsValidFloat(f) {
			*n = NullFloat{Float: f, Valid: true}
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = NullFloat{Float: f, Valid: true}
	return nil
}

func (n NullFloat) ptr() *float64 {
	if !n.Valid || !stockval.IsValidFloat(n.Float) {
		return nil
	}
	return stockval.Float(n.Float)
}

// Record is a single bar as delivered by the analysis service.
// Additional indicator columns are ignored.
type Record struct {
	Time       string    `json:"time"`
	Open       NullFloat `json:"Open"`
	High       NullFloat `json:"High"`
	Low        NullFloat `json:"Low"`
	Close      NullFloat `json:"Close"`
	Volume     NullFloat `json:"Volume"`
	MA10       NullFloat `json:"MA10"`
	MA30       NullFloat `json:"MA30"`
	RSI14      NullFloat `json:"RSI14"`
	BuySignal  NullFloat `json:"BRK_BUY"`
	SellSignal NullFloat `json:"BRK_SELL"`
	State      string    `json:"BRK_STATE,omitempty"`
}

type SeriesResponse struct {
	Ticker string   `json:"ticker"`
	Data   []Record `json:"data"`
}

type StreamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid time %q", ErrMalformedRecord, s)
}

func (r Record) Point() (stockval.Point, error) {
	t, err := ParseTime(r.Time)
	if err != nil {
		return stockval.Point{}, err
	}
	p := stockval.Point{
		Time:       t,
		Open:       r.Open.ptr(),
		High:       r.High.ptr(),
		Low:        r.Low.ptr(),
		Close:      r.Close.ptr(),
		Volume:     r.Volume.ptr(),
		MA10:       r.MA10.ptr(),
		MA30:       r.MA30.ptr(),
		Oscillator: r.RSI14.ptr(),
	}
	if v := r.BuySignal.ptr(); v != nil {
		p.BuySignal = *v
	}
	if v := r.SellSignal.ptr(); v != nil {
		p.SellSignal = *v
	}
	return p, nil
}

func NewRecord(p stockval.Point) Record {
	return Record{
		Time:       p.Time.Format(time.RFC3339),
		Open:       Null(p.Open),
		High:       Null(p.High),
		Low:        Null(p.Low),
		Close:      Null(p.Close),
		Volume:     Null(p.Volume),
		MA10:       Null(p.MA10),
		MA30:       Null(p.MA30),
		RSI14:      Null(p.Oscillator),
		BuySignal:  NullFloat{Float: p.BuySignal, Valid: true},
		SellSignal: NullFloat{Float: p.SellSignal, Valid: true},
	}
}

func NewRecords(seq stockval.PointSequence) []Record {
	r := make([]Record, 0, len(seq))
	for _, p := range seq {
		r = append(r, NewRecord(p))
	}
	return r
}

// Points converts records, skipping malformed ones. The number of skipped records is returned.
func Points(records []Record) (stockval.PointSequence, int) {
	seq := make(stockval.PointSequence, 0, len(records))
	skipped := 0
	for _, r := range records {
		p, err := r.Point()
		if err != nil {
			skipped++
			continue
		}
		seq = append(seq, p)
	}
	return seq, skipped
}

func NewSnapshotMessage(seq stockval.PointSequence) (StreamMessage, error) {
	data, err := json.Marshal(NewRecords(seq))
	return StreamMessage{Type: MessageTypeSnapshot, Data: data}, err
}

func NewBarMessage(p stockval.Point) (StreamMessage, error) {
	data, err := json.Marshal(NewRecord(p))
	return StreamMessage{Type: MessageTypeBar, Data: data}, err
}

// Event decodes a stream message. The number of skipped snapshot records is returned.
func (m StreamMessage) Event() (stockval.UpdateEvent, int, error) {
	switch m.Type {
	case MessageTypeSnapshot:
		var records []Record
		if err := json.Unmarshal(m.Data, &records); err != nil {
			return stockval.UpdateEvent{}, 0, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		seq, skipped := Points(records)
		return stockval.SnapshotEvent(seq), skipped, nil
	case MessageTypeBar:
		var r Record
		if err := json.Unmarshal(m.Data, &r); err != nil {
			return stockval.UpdateEvent{}, 0, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		p, err := r.Point()
		if err != nil {
			return stockval.UpdateEvent{}, 0, err
		}
		return stockval.BarEvent(p), 0, nil
	default:
		return stockval.UpdateEvent{}, 0, fmt.Errorf("%w: unknown message type %q", ErrMalformedRecord, m.Type)
	}
}
