// Package geometry holds the pure sizing and placement math shared by the
// editor, the previews and the export pipeline.
package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Size is an integer pixel size.
type Size struct {
	Width  int
	Height int
}

// Area returns Width*Height.
func (s Size) Area() int { return s.Width * s.Height }

// Empty reports whether either side is zero or negative.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is a floating point rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the rectangle's midpoint.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// ExportDimensions returns the largest frame-ratio rectangle that fits inside
// the image's native pixels. Both the width-constrained and the
// height-constrained candidates are considered; the larger fitting one wins.
// When rounding leaves neither candidate inside native bounds, the
// height-constrained candidate is used with its width clamped. No side is
// ever rounded below one pixel.
func ExportDimensions(nativeW, nativeH, frameW, frameH int) Size {
	if nativeW <= 0 || nativeH <= 0 || frameW <= 0 || frameH <= 0 {
		return Size{}
	}

	byWidth := Size{
		Width:  nativeW,
		Height: max(1, int(math.Round(float64(nativeW)*float64(frameH)/float64(frameW)))),
	}
	byHeight := Size{
		Width:  max(1, int(math.Round(float64(nativeH)*float64(frameW)/float64(frameH)))),
		Height: nativeH,
	}

	widthFits := byWidth.Height <= nativeH
	heightFits := byHeight.Width <= nativeW

	switch {
	case widthFits && heightFits:
		if byHeight.Area() > byWidth.Area() {
			return byHeight
		}
		return byWidth
	case widthFits:
		return byWidth
	case heightFits:
		return byHeight
	default:
		return Size{Width: min(byHeight.Width, nativeW), Height: nativeH}
	}
}

// Normalized is one export size mapped into the shared display space.
type Normalized struct {
	Export        Size
	DisplayWidth  float64
	DisplayHeight float64
	// ScaleFactor converts display pixels back to export pixels.
	ScaleFactor float64
}

// NormalizeFrames maps every export size into display space with one scale,
// reference / max(all export widths and heights), so frames of the same
// aspect ratio always get the same display size. The scale is returned
// alongside; it is zero when no export size is usable.
func NormalizeFrames(exports []Size, reference float64) ([]Normalized, float64) {
	maxDim := 0
	for _, e := range exports {
		maxDim = max(maxDim, e.Width, e.Height)
	}
	if maxDim == 0 || reference <= 0 {
		return make([]Normalized, len(exports)), 0
	}

	scale := reference / float64(maxDim)
	out := make([]Normalized, len(exports))
	for i, e := range exports {
		n := Normalized{
			Export:        e,
			DisplayWidth:  float64(e.Width) * scale,
			DisplayHeight: float64(e.Height) * scale,
		}
		if n.DisplayWidth > 0 {
			n.ScaleFactor = float64(e.Width) / n.DisplayWidth
		}
		out[i] = n
	}
	return out, scale
}

// MaxDisplay returns the largest display width and height across ns.
func MaxDisplay(ns []Normalized) (float64, float64) {
	var w, h float64
	for _, n := range ns {
		w = math.Max(w, n.DisplayWidth)
		h = math.Max(h, n.DisplayHeight)
	}
	return w, h
}

// PlaceImage returns the rectangle an image of native size occupies on a
// canvas of the given size when its centre sits at the canvas centre plus
// (x, y)·scale and it is scaled by zoom/100·scale. A zero canvas size yields
// coordinates relative to the canvas centre.
func PlaceImage(canvasW, canvasH float64, nativeW, nativeH int, x, y, zoom, scale float64) Rect {
	s := zoom / 100 * scale
	w := float64(nativeW) * s
	h := float64(nativeH) * s
	return Rect{
		X: canvasW/2 + x*scale - w/2,
		Y: canvasH/2 + y*scale - h/2,
		W: w,
		H: h,
	}
}

// CoversFrame reports whether the transformed image fully covers a frame of
// the given size, boundaries inclusive. All values are in frame pixels.
func CoversFrame(imageW, imageH, frameW, frameH int, x, y, zoom float64) bool {
	r := PlaceImage(float64(frameW), float64(frameH), imageW, imageH, x, y, zoom, 1)
	return r.X <= 0 && r.Y <= 0 && r.Right() >= float64(frameW) && r.Bottom() >= float64(frameH)
}

// CoverZoom is the zoom percentage at which a centred image fills the
// largest export width and height of the set.
func CoverZoom(nativeW, nativeH int, exports []Size) float64 {
	if nativeW <= 0 || nativeH <= 0 {
		return 100
	}
	maxW, maxH := 0, 0
	for _, e := range exports {
		maxW = max(maxW, e.Width)
		maxH = max(maxH, e.Height)
	}
	if maxW == 0 || maxH == 0 {
		return 100
	}
	return math.Max(float64(maxW)/float64(nativeW), float64(maxH)/float64(nativeH)) * 100
}

// AverageColor box-downsamples img to 50×50 and averages the channels.
func AverageColor(img image.Image) color.NRGBA {
	if img == nil || img.Bounds().Empty() {
		return color.NRGBA{A: 255}
	}

	small := imaging.Resize(img, 50, 50, imaging.Box)
	var r, g, b, n float64
	for i := 0; i+3 < len(small.Pix); i += 4 {
		r += float64(small.Pix[i])
		g += float64(small.Pix[i+1])
		b += float64(small.Pix[i+2])
		n++
	}
	if n == 0 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{
		R: uint8(math.Round(r / n)),
		G: uint8(math.Round(g / n)),
		B: uint8(math.Round(b / n)),
		A: 255,
	}
}
