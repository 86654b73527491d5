// Package editor holds the composer's state and the commands that change
// it. A Session is owned by one goroutine; renders and exports work on the
// immutable Scene snapshots it hands out.
package editor

import (
	"errors"
	"log/slog"
	"slices"

	"frameup/internal/compositor"
	"frameup/internal/geometry"
	"frameup/internal/interact"
	"frameup/internal/model"
	"frameup/internal/store"
)

// ErrNoImage is returned by commands that need a loaded image.
var ErrNoImage = errors.New("no image loaded")

// ZoomStep is the zoom change of one keyboard nudge, in percent.
const ZoomStep = 5

// Session is the editor state.
type Session struct {
	logger    *slog.Logger
	reference float64

	source    *compositor.Source
	image     ImageInfo
	transform model.Transform

	frames      []model.Frame
	layers      []model.TextLayer
	nextLayerID int
	styles      []model.TextStyle
	pending     *model.TextLayer

	pointer interact.Controller

	revision       uint64
	configRevision uint64
}

// New creates a session with the frames and styles of doc. reference is the
// editor display size of the largest export dimension.
func New(doc store.Document, reference float64, logger *slog.Logger) *Session {
	if reference <= 0 {
		reference = compositor.DefaultReference
	}
	s := &Session{
		logger:      logger.With("component", "editor"),
		reference:   reference,
		transform:   model.IdentityTransform(),
		nextLayerID: 1,
	}
	s.setDocument(doc)
	return s
}

// Revision changes whenever anything visible changes.
func (s *Session) Revision() uint64 { return s.revision }

// ConfigRevision changes whenever the frames or styles change.
func (s *Session) ConfigRevision() uint64 { return s.configRevision }

func (s *Session) touch() { s.revision++ }

func (s *Session) touchConfig() {
	s.revision++
	s.configRevision++
}

// Document returns the persistable part of the session.
func (s *Session) Document() store.Document {
	return store.Document{
		Version: store.CurrentVersion,
		Frames:  slices.Clone(s.frames),
		Styles:  slices.Clone(s.styles),
	}
}

// ReplaceDocument swaps in frames and styles loaded from elsewhere. Layers,
// the image and the transform are kept.
func (s *Session) ReplaceDocument(doc store.Document) {
	s.setDocument(doc)
	s.touch()
}

func (s *Session) setDocument(doc store.Document) {
	s.frames = slices.Clone(doc.Frames)
	s.styles = slices.Clone(doc.Styles)
	if s.styles == nil {
		s.styles = []model.TextStyle{}
	}
}

// HasImage reports whether an image is loaded.
func (s *Session) HasImage() bool { return s.source != nil }

// Image describes the loaded image.
func (s *Session) Image() ImageInfo { return s.image }

// Transform returns the shared image transform.
func (s *Session) Transform() model.Transform { return s.transform }

// Scene snapshots the state for rendering. Slices are copied so the
// snapshot can be used from another goroutine.
func (s *Session) Scene() compositor.Scene {
	scene := compositor.Scene{
		Source:    s.source,
		Frames:    model.VisibleFrames(s.frames),
		Layers:    slices.Clone(s.layers),
		Transform: s.transform,
	}
	if s.pending != nil {
		p := *s.pending
		scene.Pending = &p
	}
	return scene
}

// Layout is the normalised layout of the visible frames.
func (s *Session) Layout() compositor.Layout {
	return s.Scene().Layout(s.reference)
}

// SetTransform replaces the transform, clamping the zoom.
func (s *Session) SetTransform(t model.Transform) {
	t.Zoom = model.ClampZoom(t.Zoom)
	if t == s.transform {
		return
	}
	s.transform = t
	s.touch()
}

// Pan moves the image by dx, dy native pixels.
func (s *Session) Pan(dx, dy float64) {
	t := s.transform
	t.X += dx
	t.Y += dy
	s.SetTransform(t)
}

// SetZoom sets the zoom percentage, clamped to [MinZoom, MaxZoom].
func (s *Session) SetZoom(zoom float64) {
	t := s.transform
	t.Zoom = zoom
	s.SetTransform(t)
}

// ZoomBy changes the zoom by delta percentage points.
func (s *Session) ZoomBy(delta float64) {
	s.SetZoom(s.transform.Zoom + delta)
}

// Reset returns the image to the centre at native zoom.
func (s *Session) Reset() {
	s.SetTransform(model.IdentityTransform())
}

// Cover centres the image and zooms it so it fills every visible frame.
func (s *Session) Cover() error {
	if s.source == nil {
		return ErrNoImage
	}
	zoom := geometry.CoverZoom(s.source.Width, s.source.Height, s.Layout().Exports())
	s.SetTransform(model.Transform{Zoom: zoom})
	return nil
}

// CenterH centres the image horizontally.
func (s *Session) CenterH() {
	t := s.transform
	t.X = 0
	s.SetTransform(t)
}

// CenterV centres the image vertically.
func (s *Session) CenterV() {
	t := s.transform
	t.Y = 0
	s.SetTransform(t)
}

// Space maps the image into editor display pixels.
func (s *Session) Space() interact.Space {
	if s.source == nil {
		return interact.Space{}
	}
	return interact.Space{
		NativeWidth:  s.source.Width,
		NativeHeight: s.source.Height,
		DisplayScale: s.Layout().DisplayScale,
	}
}

// PointerDown starts a drag or a corner resize at p, given in display
// pixels relative to the editor canvas centre.
func (s *Session) PointerDown(p interact.Point) interact.State {
	return s.pointer.Press(p, s.transform, s.Space())
}

// PointerMove continues the gesture. centerAnchored resizes about the image
// centre instead of the opposite corner. It reports whether the transform
// changed.
func (s *Session) PointerMove(p interact.Point, centerAnchored bool) bool {
	t, ok := s.pointer.Move(p, centerAnchored)
	if !ok {
		return false
	}
	before := s.transform
	s.SetTransform(t)
	return s.transform != before
}

// PointerUp ends the gesture. Leaving the canvas is handled the same way.
func (s *Session) PointerUp() {
	s.pointer.Release()
}

// PointerCancel aborts the gesture and restores the transform it started from.
func (s *Session) PointerCancel() {
	if t, ok := s.pointer.Cancel(); ok {
		s.SetTransform(t)
	}
}

// PointerState is the current gesture state.
func (s *Session) PointerState() interact.State { return s.pointer.State() }

// Hover reports the resize handle under p, if any.
func (s *Session) Hover(p interact.Point) interact.Corner {
	if s.source == nil {
		return interact.NoCorner
	}
	return interact.CornerAt(p, s.transform, s.Space())
}
