// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockval

type UpdateKind int

const (
	UpdateSnapshot UpdateKind = iota
	UpdateBar
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateSnapshot:
		return "snapshot"
	case UpdateBar:
		return "bar"
	default:
		return "unknown"
	}
}

// UpdateEvent is either a full snapshot or a single bar.
type UpdateEvent struct {
	Kind   UpdateKind
	Points PointSequence // Snapshot only
	Bar    Point         // Bar only
}

func SnapshotEvent(points PointSequence) UpdateEvent {
	return UpdateEvent{Kind: UpdateSnapshot, Points: points}
}

func BarEvent(p Point) UpdateEvent {
	return UpdateEvent{Kind: UpdateBar, Bar: p}
}

type MergeOutcome int

const (
	MergeReplaced MergeOutcome = iota
	MergeAppended
	MergeUpdated
	MergeDropped
)

func (m MergeOutcome) String() string {
	switch m {
	case MergeReplaced:
		return "replaced"
	case MergeAppended:
		return "appended"
	case MergeUpdated:
		return "updated"
	default:
		return "dropped"
	}
}

// ApplyUpdate merges an event into the sequence and returns the resulting sequence.
// A snapshot replaces everything. A bar with the time of the last element replaces that
// element, a newer bar is appended. Bars older than the last element, bars without time
// and unknown events leave the sequence unchanged.
// The input sequence may be modified in place.
func ApplyUpdate(seq PointSequence, ev UpdateEvent) (PointSequence, MergeOutcome) {
	switch ev.Kind {
	case UpdateSnapshot:
		return Normalize(ev.Points), MergeReplaced
	case UpdateBar:
		p := ev.Bar
		if p.Time.IsZero() {
			return seq, MergeDropped
		}
		last, ok := seq.Last()
		if !ok {
			return append(seq, p), MergeAppended
		}
		switch {
		case last.Time.Equal(p.Time):
			seq[len(seq)-1] = p
			return seq, MergeUpdated
		case p.Time.Before(last.Time):
			return seq, MergeDropped
		default:
			return append(seq, p), MergeAppended
		}
	default:
		return seq, MergeDropped
	}
}
