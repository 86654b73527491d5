// Package textlayout positions and draws text layers. Layout is pure and
// takes a measuring function; Renderer turns a layout into gg draw calls.
package textlayout

import (
	"math"
	"strings"

	"frameup/internal/geometry"
	"frameup/internal/model"
)

// MeasureFunc returns the advance width of s in pixels for the face being
// laid out.
type MeasureFunc func(s string) float64

// Line is one laid out line of a block.
type Line struct {
	Text    string
	Width   float64
	CenterY float64
}

// Blank reports whether the line has no visible glyphs.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Block is a text layer resolved to pixel positions for one target area at
// one scale.
type Block struct {
	Lines      []Line
	CenterX    float64
	CenterY    float64
	FontSize   float64
	LineHeight float64
	Padding    float64
	Radius     float64
	Height     float64
	// Background is set when per-line background boxes should be drawn.
	Background bool
}

// Layout resolves layer inside area at the given scale. Font size, padding,
// radius and edge distance are multiplied by scale; the block is centred
// horizontally and placed vertically by the layer's alignment.
func Layout(measure MeasureFunc, layer model.TextLayer, area geometry.Rect, scale float64) Block {
	fontSize := layer.FontSize * scale
	lineMul := layer.LineHeight
	if lineMul <= 0 {
		lineMul = 1.2
	}

	b := Block{
		CenterX:    area.X + area.W/2,
		FontSize:   fontSize,
		LineHeight: fontSize * lineMul,
		Padding:    layer.Padding * scale,
		Radius:     layer.BorderRadius * scale,
		Background: layer.ShowBackground && !model.IsTransparent(layer.BackgroundColor),
	}

	texts := layer.Lines()
	b.Height = float64(len(texts)) * b.LineHeight

	distance := layer.DistanceFromEdge * scale
	switch layer.VerticalAlign {
	case model.AlignTop:
		b.CenterY = area.Y + distance + b.Height/2
	case model.AlignBottom:
		b.CenterY = area.Y + area.H - distance - b.Height/2
	default:
		b.CenterY = area.Y + area.H/2
	}

	top := b.CenterY - b.Height/2
	b.Lines = make([]Line, len(texts))
	for i, s := range texts {
		b.Lines[i] = Line{
			Text:    s,
			Width:   measure(s),
			CenterY: top + b.LineHeight*(float64(i)+0.5),
		}
	}
	return b
}

// BackgroundRect is the box behind line i: its measured width and the font
// size, grown by the padding on every side.
func (b Block) BackgroundRect(i int) geometry.Rect {
	l := b.Lines[i]
	return geometry.Rect{
		X: b.CenterX - l.Width/2 - b.Padding,
		Y: l.CenterY - b.FontSize/2 - b.Padding,
		W: l.Width + 2*b.Padding,
		H: b.FontSize + 2*b.Padding,
	}
}

// radiusFor limits the corner radius to half of r's shorter side.
func (b Block) radiusFor(r geometry.Rect) float64 {
	return math.Max(0, math.Min(b.Radius, math.Min(r.W, r.H)/2))
}

// Extent bounds everything the block may paint, including glyph overhang
// and a margin of extra pixels on every side.
func (b Block) Extent(margin float64) geometry.Rect {
	if len(b.Lines) == 0 {
		return geometry.Rect{X: b.CenterX, Y: b.CenterY}
	}
	var maxW float64
	for _, l := range b.Lines {
		maxW = math.Max(maxW, l.Width)
	}
	pad := b.Padding + b.FontSize + margin
	first := b.Lines[0].CenterY
	last := b.Lines[len(b.Lines)-1].CenterY
	return geometry.Rect{
		X: b.CenterX - maxW/2 - pad,
		Y: first - pad,
		W: maxW + 2*pad,
		H: last - first + 2*pad,
	}
}
