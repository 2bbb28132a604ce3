// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package widgets

import (
	"gioui.org/layout"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// Toggle is a button which switches a boolean setting.
type Toggle struct {
	Label  string
	On     bool
	button widget.Clickable
}

func NewToggle(label string, on bool) *Toggle {
	return &Toggle{Label: label, On: on}
}

// Layout draws the toggle and reports whether it was switched.
func (t *Toggle) Layout(th *material.Theme, gtx layout.Context) (layout.Dimensions, bool) {
	changed := false
	for t.button.Clicked(gtx) {
		t.On = !t.On
		changed = true
	}
	b := material.Button(th, &t.button, t.Label)
	if !t.On {
		b.Background = WithAlpha(b.Background, 80)
	}
	dims := layout.Inset{Top: 4, Right: 2, Bottom: 4, Left: 2}.Layout(gtx, b.Layout)
	return dims, changed
}
