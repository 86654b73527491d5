package textlayout

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"frameup/internal/fonts"
	"frameup/internal/geometry"
	"frameup/internal/model"
)

var (
	defaultFill       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	defaultBackground = color.NRGBA{A: 255}
)

// Renderer draws text layers onto a gg context.
type Renderer struct {
	fonts *fonts.Registry
}

func NewRenderer(reg *fonts.Registry) *Renderer {
	return &Renderer{fonts: reg}
}

// Face resolves the layer's font at the scaled size.
func (r *Renderer) Face(layer model.TextLayer, scale float64) font.Face {
	return r.fonts.Face(layer.FontFamily, layer.Bold, layer.Italic, layer.FontSize*scale)
}

// Measure returns a MeasureFunc for face.
func Measure(face font.Face) MeasureFunc {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

// Layout lays out layer with real font metrics.
func (r *Renderer) Layout(layer model.TextLayer, area geometry.Rect, scale float64) Block {
	return Layout(Measure(r.Face(layer, scale)), layer, area, scale)
}

// Draw paints layer into area on dc: line backgrounds, then the blurred
// shadow, then the glyphs. Blank layers paint nothing.
func (r *Renderer) Draw(dc *gg.Context, layer model.TextLayer, area geometry.Rect, scale float64) {
	if layer.Blank() || layer.FontSize*scale <= 0 {
		return
	}
	face := r.Face(layer, scale)
	block := Layout(Measure(face), layer, area, scale)

	if block.Background {
		dc.Push()
		dc.SetColor(model.MustColor(layer.BackgroundColor, defaultBackground))
		for i, line := range block.Lines {
			if line.Blank() {
				continue
			}
			rect := block.BackgroundRect(i)
			if radius := block.radiusFor(rect); radius > 0 {
				dc.DrawRoundedRectangle(rect.X, rect.Y, rect.W, rect.H, radius)
			} else {
				dc.DrawRectangle(rect.X, rect.Y, rect.W, rect.H)
			}
			dc.Fill()
		}
		dc.Pop()
	}

	if layer.Shadow.Enabled && !model.IsTransparent(layer.Shadow.Color) {
		drawShadow(dc, block, face, layer.Shadow, scale)
	}

	dc.Push()
	dc.SetFontFace(face)
	dc.SetColor(model.MustColor(layer.Color, defaultFill))
	for _, line := range block.Lines {
		if line.Blank() {
			continue
		}
		dc.DrawStringAnchored(line.Text, block.CenterX, line.CenterY, 0.5, 0.5)
	}
	dc.Pop()
}

// DrawFaded paints layer like Draw at the given opacity. The layer is drawn
// on a scratch context sized to its extent and composited onto dc.
func (r *Renderer) DrawFaded(dc *gg.Context, layer model.TextLayer, area geometry.Rect, scale, opacity float64) {
	if opacity >= 1 {
		r.Draw(dc, layer, area, scale)
		return
	}
	if opacity <= 0 || layer.Blank() || layer.FontSize*scale <= 0 {
		return
	}

	block := r.Layout(layer, area, scale)
	ext := block.Extent(shadowReach(layer.Shadow, scale))
	ox, oy := math.Floor(ext.X), math.Floor(ext.Y)
	w, h := int(math.Ceil(ext.W))+2, int(math.Ceil(ext.H))+2
	if w <= 0 || h <= 0 {
		return
	}

	scratch := gg.NewContext(w, h)
	shifted := geometry.Rect{X: area.X - ox, Y: area.Y - oy, W: area.W, H: area.H}
	r.Draw(scratch, layer, shifted, scale)

	faded := imaging.AdjustFunc(scratch.Image(), func(c color.NRGBA) color.NRGBA {
		c.A = uint8(math.Round(float64(c.A) * opacity))
		return c
	})
	dc.DrawImage(faded, int(ox), int(oy))
}

// shadowReach is how far a shadow can paint beyond the glyph boxes.
func shadowReach(s model.Shadow, scale float64) float64 {
	if !s.Enabled {
		return 0
	}
	sigma := math.Abs(s.Blur) * scale / 2
	return math.Max(math.Abs(s.OffsetX), math.Abs(s.OffsetY))*scale + math.Ceil(3*sigma)
}

// drawShadow renders the glyphs in the shadow colour on a scratch context
// that covers the block plus the blur reach, blurs it and composites it at
// the offset position. Backgrounds are never shadowed.
func drawShadow(dc *gg.Context, block Block, face font.Face, s model.Shadow, scale float64) {
	sigma := math.Abs(s.Blur) * scale / 2
	ext := block.Extent(math.Ceil(3*sigma) + 1)
	ox := math.Floor(ext.X + s.OffsetX*scale)
	oy := math.Floor(ext.Y + s.OffsetY*scale)
	w, h := int(math.Ceil(ext.W))+2, int(math.Ceil(ext.H))+2
	if w <= 0 || h <= 0 {
		return
	}

	scratch := gg.NewContext(w, h)
	scratch.SetFontFace(face)
	scratch.SetColor(model.MustColor(s.Color, defaultBackground))
	for _, line := range block.Lines {
		if line.Blank() {
			continue
		}
		x := block.CenterX + s.OffsetX*scale - ox
		y := line.CenterY + s.OffsetY*scale - oy
		scratch.DrawStringAnchored(line.Text, x, y, 0.5, 0.5)
	}

	img := scratch.Image()
	if sigma > 0 {
		img = imaging.Blur(img, sigma)
	}
	dc.DrawImage(img, int(ox), int(oy))
}
