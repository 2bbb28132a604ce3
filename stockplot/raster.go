// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"daisychart/fonts/chartfont"
	"image"
	"image/color"
	"image/draw"
	"math"

	"gioui.org/f32"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RasterSurface renders into an RGBA image, e.g. for PNG export.
type RasterSurface struct {
	img    *image.RGBA
	mask   *image.Alpha
	z      *vector.Rasterizer
	width  float32
	height float32
	scale  float32
	clips  []image.Rectangle
	faces  map[float32]font.Face
}

// NewRasterSurface creates a surface of width x height device independent units.
// The image has the size multiplied by scale.
func NewRasterSurface(width, height int, scale float32) *RasterSurface {
	if scale <= 0 {
		scale = 1
	}
	pxW := int(math.Ceil(float64(float32(width) * scale)))
	pxH := int(math.Ceil(float64(float32(height) * scale)))
	return &RasterSurface{
		img:    image.NewRGBA(image.Rect(0, 0, pxW, pxH)),
		mask:   image.NewAlpha(image.Rect(0, 0, pxW, pxH)),
		z:      vector.NewRasterizer(pxW, pxH),
		width:  float32(width),
		height: float32(height),
		scale:  scale,
		faces:  make(map[float32]font.Face),
	}
}

func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

func (s *RasterSurface) Size() (float32, float32) {
	return s.width, s.height
}

func (s *RasterSurface) Scale() float32 {
	return s.scale
}

func (s *RasterSurface) clipRect() image.Rectangle {
	if len(s.clips) == 0 {
		return s.img.Bounds()
	}
	return s.clips[len(s.clips)-1]
}

func (s *RasterSurface) px(p f32.Point) f32.Point {
	return p.Mul(s.scale)
}

func (s *RasterSurface) Clear(c color.NRGBA) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *RasterSurface) FillRect(r Rect, c color.NRGBA) {
	s.FillPolygon([]f32.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}}, c)
}

func (s *RasterSurface) FillPolygon(pts []f32.Point, c color.NRGBA) {
	if len(pts) < 3 || c.A == 0 {
		return
	}
	px := make([]f32.Point, len(pts))
	for i, p := range pts {
		px[i] = s.px(p)
	}
	box := polygonBounds(px).Intersect(s.clipRect())
	if box.Empty() {
		return
	}
	// Only the bounding box of the polygon is rasterized.
	s.z.Reset(box.Dx(), box.Dy())
	s.z.DrawOp = draw.Src
	origin := f32.Pt(float32(box.Min.X), float32(box.Min.Y))
	start := px[0].Sub(origin)
	s.z.MoveTo(start.X, start.Y)
	for _, p := range px[1:] {
		p = p.Sub(origin)
		s.z.LineTo(p.X, p.Y)
	}
	s.z.ClosePath()
	s.z.Draw(s.mask, box, image.Opaque, image.Point{})
	draw.DrawMask(s.img, box, image.NewUniform(c), image.Point{}, s.mask, box.Min, draw.Over)
}

// polygonBounds returns the pixel rectangle covering all points, including partially covered pixels.
func polygonBounds(pts []f32.Point) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(float64(minX))),
		int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))),
		int(math.Ceil(float64(maxY))),
	)
}

func (s *RasterSurface) StrokePolyline(pts []f32.Point, width float32, c color.NRGBA) {
	for i := 1; i < len(pts); i++ {
		s.strokeSegment(pts[i-1], pts[i], width, c)
	}
}

func (s *RasterSurface) StrokePolygon(pts []f32.Point, width float32, c color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	s.StrokePolyline(pts, width, c)
	s.strokeSegment(pts[len(pts)-1], pts[0], width, c)
}

// Each segment is filled as a quad, so that overlapping segments do not cancel each other out.
func (s *RasterSurface) strokeSegment(a, b f32.Point, width float32, c color.NRGBA) {
	d := b.Sub(a)
	l := float32(math.Hypot(float64(d.X), float64(d.Y)))
	if l < 1e-4 {
		return
	}
	// Do not let lines vanish after scaling.
	half := max(width, 1/s.scale) / 2
	n := f32.Pt(-d.Y/l*half, d.X/l*half)
	s.FillPolygon([]f32.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, c)
}

func (s *RasterSurface) face(size float32) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := chartfont.NewFace(size * s.scale)
	s.faces[size] = f
	return f
}

func (s *RasterSurface) DrawText(text string, pos f32.Point, size float32, align Align, c color.NRGBA) {
	if text == "" {
		return
	}
	face := s.face(size)
	p := s.px(pos)
	advance := font.MeasureString(face, text)
	x := fixed.Int26_6(p.X * 64)
	switch align {
	case AlignCenter:
		x -= advance / 2
	case AlignRight:
		x -= advance
	}
	m := face.Metrics()
	baseline := fixed.Int26_6(p.Y*64) + (m.Ascent-m.Descent)/2
	dst, ok := s.img.SubImage(s.clipRect()).(*image.RGBA)
	if !ok {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: baseline},
	}
	d.DrawString(text)
}

func (s *RasterSurface) PushClip(r Rect) {
	px := image.Rect(
		int(math.Floor(float64(r.Min.X*s.scale))),
		int(math.Floor(float64(r.Min.Y*s.scale))),
		int(math.Ceil(float64(r.Max.X*s.scale))),
		int(math.Ceil(float64(r.Max.Y*s.scale))),
	)
	s.clips = append(s.clips, px.Intersect(s.clipRect()))
}

func (s *RasterSurface) PopClip() {
	if len(s.clips) > 0 {
		s.clips = s.clips[:len(s.clips)-1]
	}
}
