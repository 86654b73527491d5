package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"frameup/internal/fonts"
	"frameup/internal/geometry"
	"frameup/internal/model"
	"frameup/internal/textlayout"
)

var (
	// ErrEmptyScene is returned when there is no image or no visible frame.
	ErrEmptyScene = errors.New("scene has no image or no visible frames")
	// ErrNoSurface is returned when a render target would have no pixels.
	ErrNoSurface = errors.New("drawing surface unavailable")
)

var (
	handleFill   = color.White
	handleStroke = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	defaultFrame = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
)

// Mode selects what Render draws.
type Mode int

const (
	ModeEditor Mode = iota
	ModePreview
	ModeExport
)

func (m Mode) String() string {
	switch m {
	case ModeEditor:
		return "editor"
	case ModePreview:
		return "preview"
	case ModeExport:
		return "export"
	default:
		return "unknown"
	}
}

// Options parameterises one render.
type Options struct {
	Mode Mode
	// FrameID selects the frame for preview and export renders.
	FrameID string
	// Handles draws the corner handles on the editor canvas.
	Handles bool
	// PreviewWidth is the long side of a preview in pixels.
	PreviewWidth float64
}

// Compositor renders scenes. It is not safe for concurrent use; give each
// goroutine its own via Fork.
type Compositor struct {
	fonts     *fonts.Registry
	text      *textlayout.Renderer
	reference float64
}

// New creates a compositor whose editor maps the largest export dimension
// to reference pixels.
func New(reg *fonts.Registry, reference float64) *Compositor {
	if reference <= 0 {
		reference = DefaultReference
	}
	return &Compositor{
		fonts:     reg,
		text:      textlayout.NewRenderer(reg),
		reference: reference,
	}
}

// Fork returns a compositor with its own font face cache.
func (c *Compositor) Fork() *Compositor {
	return New(c.fonts.Fork(), c.reference)
}

func (c *Compositor) Reference() float64 { return c.reference }

// Text exposes the text renderer used for layers.
func (c *Compositor) Text() *textlayout.Renderer { return c.text }

// EditorView is the placement of everything on the editor canvas.
type EditorView struct {
	Width        int
	Height       int
	DisplayScale float64
	Image        geometry.Rect
	// Frames holds one centred rectangle per Layout frame.
	Frames []geometry.Rect
	Layout Layout
}

// Editor sizes the editor canvas for scene and places the image and frames.
func (c *Compositor) Editor(scene Scene) (EditorView, error) {
	if err := checkScene(scene); err != nil {
		return EditorView{}, err
	}
	layout := scene.Layout(c.reference)
	if layout.DisplayScale == 0 {
		return EditorView{}, ErrNoSurface
	}

	src, t := scene.Source, scene.Transform
	img := geometry.PlaceImage(0, 0, src.Width, src.Height, t.X, t.Y, t.Zoom, layout.DisplayScale)
	pad := EditorPadding()
	w := math.Ceil(math.Max(layout.MaxWidth, img.W+2*pad))
	h := math.Ceil(math.Max(layout.MaxHeight, img.H+2*pad))
	return editorView(scene, layout, int(w), int(h)), nil
}

func editorView(scene Scene, layout Layout, w, h int) EditorView {
	src, t := scene.Source, scene.Transform
	fw, fh := float64(w), float64(h)
	v := EditorView{
		Width:        w,
		Height:       h,
		DisplayScale: layout.DisplayScale,
		Image:        geometry.PlaceImage(fw, fh, src.Width, src.Height, t.X, t.Y, t.Zoom, layout.DisplayScale),
		Frames:       make([]geometry.Rect, len(layout.Frames)),
		Layout:       layout,
	}
	for i, f := range layout.Frames {
		v.Frames[i] = geometry.Rect{
			X: (fw - f.DisplayWidth) / 2,
			Y: (fh - f.DisplayHeight) / 2,
			W: f.DisplayWidth,
			H: f.DisplayHeight,
		}
	}
	return v
}

// Surface returns the pixel size a render with opts needs.
func (c *Compositor) Surface(scene Scene, opts Options) (geometry.Size, error) {
	if opts.Mode == ModeEditor {
		v, err := c.Editor(scene)
		if err != nil {
			return geometry.Size{}, err
		}
		return geometry.Size{Width: v.Width, Height: v.Height}, nil
	}

	fl, err := c.frame(scene, opts.FrameID)
	if err != nil {
		return geometry.Size{}, err
	}
	if opts.Mode == ModeExport {
		return fl.Export, nil
	}
	width := opts.PreviewWidth
	if width <= 0 {
		width = c.reference
	}
	w, h, _ := PreviewSize(fl.Export, width)
	return geometry.Size{Width: int(math.Round(w)), Height: int(math.Round(h))}, nil
}

// RenderImage allocates a surface of the right size and renders into it.
func (c *Compositor) RenderImage(scene Scene, opts Options) (image.Image, error) {
	size, err := c.Surface(scene, opts)
	if err != nil {
		return nil, err
	}
	if size.Empty() {
		return nil, ErrNoSurface
	}
	dc := gg.NewContext(size.Width, size.Height)
	if err := c.Render(dc, scene, opts); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// Render draws scene onto dc. Editor renders lay the canvas out for dc's
// size; preview and export renders draw one frame filling dc, with the
// scale taken from dc's width over the frame's export width.
func (c *Compositor) Render(dc *gg.Context, scene Scene, opts Options) error {
	if err := checkScene(scene); err != nil {
		return err
	}
	if dc.Width() <= 0 || dc.Height() <= 0 {
		return ErrNoSurface
	}

	switch opts.Mode {
	case ModeEditor:
		layout := scene.Layout(c.reference)
		if layout.DisplayScale == 0 {
			return ErrNoSurface
		}
		c.renderEditor(dc, scene, editorView(scene, layout, dc.Width(), dc.Height()), opts.Handles)
		return nil
	case ModePreview, ModeExport:
		fl, err := c.frame(scene, opts.FrameID)
		if err != nil {
			return err
		}
		if fl.Export.Empty() {
			return ErrNoSurface
		}
		scale := float64(dc.Width()) / float64(fl.Export.Width)
		c.renderFrame(dc, scene, fl, scale, opts.Mode == ModePreview)
		return nil
	default:
		return fmt.Errorf("render mode %d: %w", opts.Mode, model.ErrInvalid)
	}
}

func checkScene(scene Scene) error {
	if scene.Source == nil || scene.Source.Width == 0 || scene.Source.Height == 0 || len(scene.Frames) == 0 {
		return ErrEmptyScene
	}
	return nil
}

func (c *Compositor) frame(scene Scene, id string) (FrameLayout, error) {
	if err := checkScene(scene); err != nil {
		return FrameLayout{}, err
	}
	fl, ok := scene.Layout(c.reference).Find(id)
	if !ok {
		return FrameLayout{}, fmt.Errorf("frame %q: %w", id, model.ErrNotFound)
	}
	return fl, nil
}

func (c *Compositor) renderEditor(dc *gg.Context, scene Scene, v EditorView, handles bool) {
	src := scene.Source

	dc.Push()
	dc.SetColor(src.Average)
	dc.Clear()
	dc.Pop()

	drawScaled(dc, src.Dimmed, v.Image)

	// Full opacity inside the union of all frames.
	dc.Push()
	for _, r := range v.Frames {
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	}
	dc.Clip()
	drawScaled(dc, src.Image, v.Image)
	dc.ResetClip()
	dc.Pop()

	for i, fl := range v.Layout.Frames {
		c.drawFrameOutline(dc, fl.Frame, v.Frames[i])
	}

	for _, r := range v.Frames {
		dc.Push()
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Clip()
		c.drawLayers(dc, scene, r, v.DisplayScale, true)
		dc.ResetClip()
		dc.Pop()
	}

	if handles {
		drawHandles(dc, v.Image)
	}
}

func (c *Compositor) renderFrame(dc *gg.Context, scene Scene, fl FrameLayout, scale float64, pending bool) {
	src, t := scene.Source, scene.Transform
	w, h := float64(dc.Width()), float64(dc.Height())

	bg := src.Average
	if geometry.CoversFrame(src.Width, src.Height, fl.Export.Width, fl.Export.Height, t.X, t.Y, t.Zoom) {
		bg = NeutralBackground
	}
	dc.Push()
	dc.SetColor(bg)
	dc.Clear()
	dc.Pop()

	drawScaled(dc, src.Image, geometry.PlaceImage(w, h, src.Width, src.Height, t.X, t.Y, t.Zoom, scale))
	c.drawLayers(dc, scene, geometry.Rect{W: w, H: h}, scale, pending)
}

func (c *Compositor) drawLayers(dc *gg.Context, scene Scene, area geometry.Rect, scale float64, pending bool) {
	for _, l := range scene.Layers {
		c.text.Draw(dc, l, area, scale)
	}
	if pending && scene.Pending != nil {
		c.text.DrawFaded(dc, *scene.Pending, area, scale, PendingOpacity)
	}
}

func (c *Compositor) drawFrameOutline(dc *gg.Context, f model.Frame, r geometry.Rect) {
	col := model.MustColor(f.Color, defaultFrame)

	dc.Push()
	dc.SetColor(col)
	dc.SetLineWidth(frameLineWidth)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Stroke()

	dc.SetFontFace(c.fonts.Face(fonts.DefaultFamily, false, false, labelFontSize))
	label := f.Label()
	lw, _ := dc.MeasureString(label)
	dc.DrawRectangle(r.X, r.Y, lw+labelPadding*2, labelHeight)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored(label, r.X+labelPadding, r.Y+3, 0, 1)
	dc.Pop()
}

func drawHandles(dc *gg.Context, r geometry.Rect) {
	dc.Push()
	dc.SetLineWidth(1.5)
	for _, p := range [][2]float64{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.X, r.Bottom()},
		{r.Right(), r.Bottom()},
	} {
		dc.DrawRectangle(p[0]-HandleSize/2, p[1]-HandleSize/2, HandleSize, HandleSize)
		dc.SetColor(handleFill)
		dc.FillPreserve()
		dc.SetColor(handleStroke)
		dc.Stroke()
	}
	dc.Pop()
}

// drawScaled draws img stretched over r.
func drawScaled(dc *gg.Context, img image.Image, r geometry.Rect) {
	b := img.Bounds()
	if b.Empty() || r.W <= 0 || r.H <= 0 {
		return
	}
	dc.Push()
	dc.Translate(r.X, r.Y)
	dc.Scale(r.W/float64(b.Dx()), r.H/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}
