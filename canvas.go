package main

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"frameup/internal/compositor"
	"frameup/internal/interact"
	domain "frameup/internal/model"
)

// previewOversample renders previews larger than their cell size and
// shrinks them, so small text still shows up as shapes.
const previewOversample = 4

// cellMapping converts terminal cells over a drawn editor canvas into
// display pixels relative to the canvas centre.
type cellMapping struct {
	left, top  int
	cols, rows int
	// scale is terminal pixels per canvas pixel; a cell is one pixel wide
	// and two pixels tall.
	scale   float64
	canvasW float64
	canvasH float64
}

func (c cellMapping) contains(x, y int) bool {
	return x >= c.left && x < c.left+c.cols && y >= c.top && y < c.top+c.rows
}

func (c cellMapping) point(x, y int) interact.Point {
	if c.scale <= 0 {
		return interact.Point{}
	}
	px := (float64(x-c.left) + 0.5) / c.scale
	py := (float64(y-c.top)*2 + 1) / c.scale
	return interact.Point{X: px - c.canvasW/2, Y: py - c.canvasH/2}
}

// fitCells scales a w×h pixel surface down to fit cols×rows cells.
func fitCells(w, h, cols, rows int) (int, int, float64) {
	if w <= 0 || h <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0, 0
	}
	scale := math.Min(float64(cols)/float64(w), float64(rows*2)/float64(h))
	tw := max(1, int(math.Floor(float64(w)*scale)))
	th := max(1, int(math.Floor(float64(h)*scale)))
	return tw, th, scale
}

// halfBlocks draws img with one "▀" per cell: the foreground is the upper
// pixel and the background the lower one.
func halfBlocks(img image.Image) []string {
	b := img.Bounds()
	rows := (b.Dy() + 1) / 2
	lines := make([]string, rows)
	styles := make(map[[2]color.NRGBA]string)

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		sb.Reset()
		y := b.Min.Y + 2*r
		for x := b.Min.X; x < b.Max.X; x++ {
			top := opaque(img.At(x, y))
			bottom := top
			if y+1 < b.Max.Y {
				bottom = opaque(img.At(x, y+1))
			}
			key := [2]color.NRGBA{top, bottom}
			cell, ok := styles[key]
			if !ok {
				cell = lipgloss.NewStyle().
					Foreground(lipgloss.Color(domain.HexColor(top))).
					Background(lipgloss.Color(domain.HexColor(bottom))).
					Render("▀")
				styles[key] = cell
			}
			sb.WriteString(cell)
		}
		lines[r] = sb.String()
	}
	return lines
}

// opaque flattens c onto black.
func opaque(c color.Color) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

// editorLines renders the editor canvas into a cols×rows cell area whose top
// row is at screen row top.
func (m *model) editorLines(cols, rows, top int) ([]string, cellMapping, error) {
	rev := m.session.Revision()
	c := m.editorCache
	if c.valid && c.revision == rev && c.cols == cols && c.rows == rows {
		return c.lines, c.mapping, nil
	}

	scene := m.session.Scene()
	view, err := m.comp.Editor(scene)
	if err != nil {
		return nil, cellMapping{}, err
	}
	img, err := m.comp.RenderImage(scene, compositor.Options{Mode: compositor.ModeEditor, Handles: true})
	if err != nil {
		return nil, cellMapping{}, err
	}

	tw, th, scale := fitCells(view.Width, view.Height, cols, rows)
	if tw == 0 {
		return nil, cellMapping{}, compositor.ErrNoSurface
	}
	drawn := halfBlocks(imaging.Resize(img, tw, th, imaging.Linear))

	offX := (cols - tw) / 2
	offY := (rows - len(drawn)) / 2
	lines := make([]string, 0, rows)
	for i := 0; i < offY; i++ {
		lines = append(lines, "")
	}
	indent := strings.Repeat(" ", offX)
	for _, l := range drawn {
		lines = append(lines, indent+l)
	}

	mapping := cellMapping{
		left:    offX,
		top:     top + offY,
		cols:    tw,
		rows:    len(drawn),
		scale:   scale,
		canvasW: float64(view.Width),
		canvasH: float64(view.Height),
	}
	*c = canvasCache{revision: rev, cols: cols, rows: rows, lines: lines, mapping: mapping, valid: true}
	return lines, mapping, nil
}

// previewLines renders one frame's preview into at most cols×rows cells.
func (m *model) previewLines(frameID string, cols, rows int) ([]string, error) {
	rev := m.session.Revision()
	c := m.previewCache
	if c.valid && c.revision == rev && c.cols == cols && c.rows == rows && c.frame == frameID {
		return c.lines, nil
	}

	side := min(cols, rows*2)
	if side <= 0 {
		return nil, compositor.ErrNoSurface
	}
	img, err := m.comp.RenderImage(m.session.Scene(), compositor.Options{
		Mode:         compositor.ModePreview,
		FrameID:      frameID,
		PreviewWidth: float64(side * previewOversample),
	})
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w := max(1, b.Dx()/previewOversample)
	h := max(1, b.Dy()/previewOversample)
	lines := halfBlocks(imaging.Resize(img, w, h, imaging.Box))

	*c = canvasCache{revision: rev, cols: cols, rows: rows, frame: frameID, lines: lines, valid: true}
	return lines, nil
}
