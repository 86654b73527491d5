// Package compositor draws the editor canvas, the per-frame previews and
// the full-resolution exports from one scene description.
package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"frameup/internal/geometry"
	"frameup/internal/model"
)

const (
	// HandleSize is the side of a corner handle in editor pixels.
	HandleSize = 10
	// DefaultReference is the display size of the largest export dimension.
	DefaultReference = 400
	// PendingOpacity is applied to the text layer still being composed.
	PendingOpacity = 0.8

	dimOpacity     = 0.3
	labelFontSize  = 12
	labelPadding   = 4
	labelHeight    = 18
	frameLineWidth = 2
)

// NeutralBackground fills preview and export surfaces when the image
// covers the frame completely.
var NeutralBackground = color.NRGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff}

// EditorPadding is the margin kept around the transformed image on the
// editor canvas so its handles stay reachable.
func EditorPadding() float64 {
	return math.Max(HandleSize*2, 50)
}

// Source is a decoded image plus the derived data every render needs.
type Source struct {
	Image   image.Image
	Dimmed  image.Image
	Width   int
	Height  int
	Average color.NRGBA
}

// NewSource prepares img for compositing. Images whose bounds do not start
// at the origin are copied so that pixel (0, 0) is the top-left corner.
func NewSource(img image.Image) *Source {
	if img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	b := img.Bounds()
	return &Source{
		Image:   img,
		Dimmed:  fade(img, dimOpacity),
		Width:   b.Dx(),
		Height:  b.Dy(),
		Average: geometry.AverageColor(img),
	}
}

// AverageHex is the average colour formatted as #rrggbb.
func (s *Source) AverageHex() string {
	return model.HexColor(s.Average)
}

func fade(img image.Image, opacity float64) image.Image {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = uint8(math.Round(float64(c.A) * opacity))
		return c
	})
}

// Scene is an immutable snapshot of everything a render needs.
type Scene struct {
	Source *Source
	// Frames are the visible frames in display order.
	Frames    []model.Frame
	Layers    []model.TextLayer
	Pending   *model.TextLayer
	Transform model.Transform
}

// FrameLayout pairs a frame with its export and display sizes.
type FrameLayout struct {
	Frame model.Frame
	geometry.Normalized
}

// Layout is the normalised frame set of a scene.
type Layout struct {
	Frames []FrameLayout
	// DisplayScale maps native image pixels to editor pixels.
	DisplayScale float64
	MaxWidth     float64
	MaxHeight    float64
}

// Find returns the layout of the frame with the given id.
func (l Layout) Find(id string) (FrameLayout, bool) {
	for _, f := range l.Frames {
		if f.Frame.ID == id {
			return f, true
		}
	}
	return FrameLayout{}, false
}

// Layout computes export sizes for every frame of the scene and maps them
// into display space with reference as the largest display dimension.
func (s Scene) Layout(reference float64) Layout {
	if s.Source == nil || len(s.Frames) == 0 {
		return Layout{}
	}
	exports := make([]geometry.Size, len(s.Frames))
	for i, f := range s.Frames {
		exports[i] = geometry.ExportDimensions(s.Source.Width, s.Source.Height, f.Width, f.Height)
	}
	ns, scale := geometry.NormalizeFrames(exports, reference)

	out := Layout{Frames: make([]FrameLayout, len(ns)), DisplayScale: scale}
	for i, n := range ns {
		out.Frames[i] = FrameLayout{Frame: s.Frames[i], Normalized: n}
	}
	out.MaxWidth, out.MaxHeight = geometry.MaxDisplay(ns)
	return out
}

// Exports lists the export size of every frame in order.
func (l Layout) Exports() []geometry.Size {
	out := make([]geometry.Size, len(l.Frames))
	for i, f := range l.Frames {
		out[i] = f.Export
	}
	return out
}

// PreviewSize fits an export size into a square of side width, keeping its
// aspect ratio. The scale maps export pixels to preview pixels.
func PreviewSize(export geometry.Size, width float64) (w, h, scale float64) {
	if export.Empty() || width <= 0 {
		return 0, 0, 0
	}
	ratio := float64(export.Width) / float64(export.Height)
	if ratio >= 1 {
		w, h = width, width/ratio
	} else {
		w, h = width*ratio, width
	}
	return w, h, w / float64(export.Width)
}
