// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

// Package chartfont provides the chart font for the Gio text shaper and for raster output.
package chartfont

import (
	"log"
	"math"
	"sync"

	"gioui.org/font"
	"gioui.org/font/opentype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	xopentype "golang.org/x/image/font/opentype"
)

const Typeface = "Go"

var once sync.Once
var collection []font.FontFace

var parseOnce sync.Once
var parsed *sfnt.Font

// Collection returns the font collection for a Gio text shaper.
func Collection() []font.FontFace {
	once.Do(func() {
		face, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Panicf("failed to parse font: %v", err)
		}
		collection = append(collection, font.FontFace{Font: font.Font{Typeface: Typeface}, Face: face})
		n := len(collection)
		collection = collection[:n:n]
	})
	return collection
}

// NewFace returns a face with the given pixel size for raster output.
// Faces are not safe for concurrent use.
func NewFace(sizePx float32) xfont.Face {
	parseOnce.Do(func() {
		f, err := xopentype.Parse(goregular.TTF)
		if err != nil {
			log.Panicf("failed to parse font: %v", err)
		}
		parsed = f
	})
	face, err := xopentype.NewFace(parsed, &xopentype.FaceOptions{
		Size:    math.Max(float64(sizePx), 1),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		log.Panicf("failed to create font face: %v", err)
	}
	return face
}
