// Package interact turns pointer gestures on the editor canvas into image
// transform updates: dragging pans the image, dragging a corner handle
// resizes it about the opposite corner.
//
// Points are in editor display pixels relative to the canvas centre, so a
// canvas that grows or shrinks during a gesture does not move the anchor.
package interact

import (
	"math"

	"frameup/internal/geometry"
	"frameup/internal/model"
)

const (
	// HandleSize is the drawn size of a corner handle.
	HandleSize = 10
	// HitTolerance is how close, per axis, a press must be to a corner.
	HitTolerance = 15
)

// Corner identifies one of the image's resize handles.
type Corner int

const (
	NoCorner Corner = iota
	NW
	NE
	SW
	SE
)

func (c Corner) String() string {
	switch c {
	case NW:
		return "nw"
	case NE:
		return "ne"
	case SW:
		return "sw"
	case SE:
		return "se"
	default:
		return ""
	}
}

// Cursor names the pointer shape to show over the corner.
func (c Corner) Cursor() string {
	switch c {
	case NW, SE:
		return "nwse-resize"
	case NE, SW:
		return "nesw-resize"
	default:
		return "grab"
	}
}

// Opposite returns the diagonally opposite corner.
func (c Corner) Opposite() Corner {
	switch c {
	case NW:
		return SE
	case NE:
		return SW
	case SW:
		return NE
	case SE:
		return NW
	default:
		return NoCorner
	}
}

// signs returns +1 for the east/south side and -1 for west/north.
func (c Corner) signs() (float64, float64) {
	switch c {
	case NW:
		return -1, -1
	case NE:
		return 1, -1
	case SW:
		return -1, 1
	default:
		return 1, 1
	}
}

// State is the controller's gesture state.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Point is a position in centre-relative display pixels.
type Point struct {
	X, Y float64
}

// Space describes how the image maps into display pixels.
type Space struct {
	NativeWidth  int
	NativeHeight int
	DisplayScale float64
}

// ImageRect is the image's display rectangle relative to the canvas centre.
func ImageRect(t model.Transform, s Space) geometry.Rect {
	return geometry.PlaceImage(0, 0, s.NativeWidth, s.NativeHeight, t.X, t.Y, t.Zoom, s.DisplayScale)
}

// CornerPoint returns the position of corner c on r.
func CornerPoint(c Corner, r geometry.Rect) Point {
	switch c {
	case NW:
		return Point{r.X, r.Y}
	case NE:
		return Point{r.Right(), r.Y}
	case SW:
		return Point{r.X, r.Bottom()}
	case SE:
		return Point{r.Right(), r.Bottom()}
	default:
		cx, cy := r.Center()
		return Point{cx, cy}
	}
}

// CornerAt returns the first corner, in nw, ne, sw, se order, within
// HitTolerance of p on both axes.
func CornerAt(p Point, t model.Transform, s Space) Corner {
	r := ImageRect(t, s)
	for _, c := range []Corner{NW, NE, SW, SE} {
		cp := CornerPoint(c, r)
		if math.Abs(p.X-cp.X) < HitTolerance && math.Abs(p.Y-cp.Y) < HitTolerance {
			return c
		}
	}
	return NoCorner
}

// Controller is the pointer state machine. The zero value is idle.
type Controller struct {
	state   State
	corner  Corner
	space   Space
	pointer Point
	start   model.Transform
}

func (c *Controller) State() State   { return c.state }
func (c *Controller) Corner() Corner { return c.corner }

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool { return c.state != Idle }

// Press starts a gesture at p: a resize when p hits a corner handle,
// otherwise a drag. It is ignored when the image has no display size.
func (c *Controller) Press(p Point, t model.Transform, s Space) State {
	if s.DisplayScale <= 0 || s.NativeWidth <= 0 || s.NativeHeight <= 0 {
		c.reset()
		return c.state
	}
	c.space = s
	c.pointer = p
	c.start = t
	if corner := CornerAt(p, t, s); corner != NoCorner {
		c.state, c.corner = Resizing, corner
	} else {
		c.state, c.corner = Dragging, NoCorner
	}
	return c.state
}

// Move updates the gesture for the pointer at p and returns the resulting
// transform. The second result is false when no gesture is active. With
// centerAnchored set a resize only changes the zoom.
func (c *Controller) Move(p Point, centerAnchored bool) (model.Transform, bool) {
	switch c.state {
	case Dragging:
		ds := c.space.DisplayScale
		return model.Transform{
			X:    c.start.X + (p.X-c.pointer.X)/ds,
			Y:    c.start.Y + (p.Y-c.pointer.Y)/ds,
			Zoom: c.start.Zoom,
		}, true
	case Resizing:
		return c.resize(p, centerAnchored), true
	default:
		return model.Transform{}, false
	}
}

func (c *Controller) resize(p Point, centerAnchored bool) model.Transform {
	ds := c.space.DisplayScale
	nw, nh := float64(c.space.NativeWidth), float64(c.space.NativeHeight)
	old := ImageRect(c.start, c.space)

	sx, sy := c.corner.signs()
	newW := old.W + sx*(p.X-c.pointer.X)
	newH := old.H + sy*(p.Y-c.pointer.Y)
	zoom := model.ClampZoom(math.Max(newW/nw, newH/nh) / ds * 100)

	if centerAnchored {
		return model.Transform{X: c.start.X, Y: c.start.Y, Zoom: zoom}
	}

	scale := zoom / 100 * ds
	w, h := nw*scale, nh*scale
	fixed := CornerPoint(c.corner.Opposite(), old)
	cx := fixed.X + sx*w/2
	cy := fixed.Y + sy*h/2
	return model.Transform{X: cx / ds, Y: cy / ds, Zoom: zoom}
}

// Release ends the gesture. The pointer leaving the canvas is a release.
func (c *Controller) Release() {
	c.reset()
}

// Cancel ends the gesture and returns the transform it started from. The
// second result is false when no gesture was active.
func (c *Controller) Cancel() (model.Transform, bool) {
	if c.state == Idle {
		return model.Transform{}, false
	}
	start := c.start
	c.reset()
	return start, true
}

func (c *Controller) reset() {
	c.state = Idle
	c.corner = NoCorner
}
