// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package widgets

import (
	"image/color"

	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
)

type dropDownItem[T comparable] struct {
	value  T
	text   string
	button *widget.Clickable
}

// DropDown selects one of a fixed list of values.
type DropDown[T comparable] struct {
	items    []dropDownItem[T]
	selected int
	changed  bool
	menu     component.MenuState
	button   widget.Clickable
	toggled  bool
}

func NewDropDown[T comparable](values []T, text func(T) string, selected T) *DropDown[T] {
	d := &DropDown[T]{items: make([]dropDownItem[T], len(values))}
	for i, v := range values {
		d.items[i] = dropDownItem[T]{value: v, text: text(v), button: new(widget.Clickable)}
		if v == selected {
			d.selected = i
		}
	}
	return d
}

func (d *DropDown[T]) Values() []T {
	v := make([]T, len(d.items))
	for i, item := range d.items {
		v[i] = item.value
	}
	return v
}

func (d *DropDown[T]) Selected() T {
	var v T
	if d.selected < len(d.items) {
		v = d.items[d.selected].value
	}
	return v
}

// Changed reports whether a different value was picked since the last call.
// Call from same goroutine as Layout.
func (d *DropDown[T]) Changed() (T, bool) {
	c := d.changed
	d.changed = false
	return d.Selected(), c
}

func (d *DropDown[T]) Layout(th *material.Theme, gtx layout.Context) layout.Dimensions {
	d.menu.Options = d.menu.Options[:0]
	for i, m := range d.items {
		if m.button.Clicked(gtx) && d.toggled {
			d.changed = d.changed || i != d.selected
			d.selected = i
			d.toggled = false
			gtx.Execute(op.InvalidateCmd{})
		}
		d.menu.Options = append(d.menu.Options, component.MenuItem(th, m.button, m.text).Layout)
	}
	if d.button.Clicked(gtx) {
		gtx.Execute(key.FocusCmd{Tag: &d.button})
		d.toggled = !d.toggled
		gtx.Execute(op.InvalidateCmd{})
	} else if d.toggled && !gtx.Focused(&d.button) {
		d.toggled = false
		gtx.Execute(op.InvalidateCmd{})
	}

	var buttonDims layout.Dimensions
	button := layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		var buttonText string
		if d.selected < len(d.items) {
			buttonText = d.items[d.selected].text
		}
		buttonDims = layout.Inset{Top: 4, Right: 2, Bottom: 4, Left: 2}.Layout(gtx, material.Button(th, &d.button, buttonText).Layout)
		return buttonDims
	})
	if !d.toggled || len(d.items) == 0 {
		layout.Flex{Axis: layout.Vertical}.Layout(gtx, button)
		return buttonDims
	}
	// The open menu is drawn on top of the chart.
	macro := op.Record(gtx.Ops)
	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		button,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: 2}.Layout(gtx, newMenu(th, &d.menu).Layout)
		}),
	)
	op.Defer(gtx.Ops, macro.Stop())
	return buttonDims
}

// newMenu returns a flat menu without shadow.
func newMenu(th *material.Theme, state *component.MenuState) component.MenuStyle {
	m := component.Menu(th, state)
	m.AmbientColor = th.Palette.ContrastBg
	m.PenumbraColor = color.NRGBA{}
	m.UmbraColor = color.NRGBA{}
	return m
}
