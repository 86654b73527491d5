// Package model holds the composer's data types: platform frames, text
// layers, named text styles and the shared image transform.
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalid marks input rejected at the boundary.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound marks a lookup by id that matched nothing.
	ErrNotFound = errors.New("not found")
)

const (
	MinFrameSize = 100
	MaxFrameSize = 4000
)

// Frame is a named target rectangle, typically a social network post format.
// Its position in the frame list is its display and export order.
type Frame struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Color     string `json:"color"`
	Icon      string `json:"icon,omitempty"`
	Visible   bool   `json:"visible"`
}

// AspectRatio is width over height.
func (f Frame) AspectRatio() float64 {
	if f.Height == 0 {
		return 0
	}
	return float64(f.Width) / float64(f.Height)
}

// Label is the short text shown on the frame outline in the editor.
func (f Frame) Label() string {
	return fmt.Sprintf("%s %d×%d", f.Name, f.Width, f.Height)
}

// FramePalette is cycled through when a frame arrives without a colour.
var FramePalette = []string{"#e1306c", "#1877f2", "#0a66c2", "#ff9800", "#4caf50", "#9c27b0"}

// DefaultFrames returns a fresh copy of the built-in frame set.
func DefaultFrames() []Frame {
	return []Frame{
		{ID: "instagram", Name: "Instagram", ShortName: "IG", Width: 1080, Height: 1080, Color: "#e1306c", Icon: "📸", Visible: true},
		{ID: "facebook", Name: "Facebook", ShortName: "FB", Width: 1200, Height: 630, Color: "#1877f2", Icon: "📘", Visible: true},
		{ID: "linkedin", Name: "LinkedIn", ShortName: "LI", Width: 1200, Height: 627, Color: "#0a66c2", Icon: "💼", Visible: true},
	}
}

// ValidateFrame checks the frame fields that every code path relies on.
func ValidateFrame(f Frame) error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("frame id is empty: %w", ErrInvalid)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("frame %q: name is empty: %w", f.ID, ErrInvalid)
	}
	if f.Width < MinFrameSize || f.Width > MaxFrameSize {
		return fmt.Errorf("frame %q: width %d outside [%d, %d]: %w", f.ID, f.Width, MinFrameSize, MaxFrameSize, ErrInvalid)
	}
	if f.Height < MinFrameSize || f.Height > MaxFrameSize {
		return fmt.Errorf("frame %q: height %d outside [%d, %d]: %w", f.ID, f.Height, MinFrameSize, MaxFrameSize, ErrInvalid)
	}
	if f.Color != "" {
		if _, err := ParseColor(f.Color); err != nil {
			return fmt.Errorf("frame %q: %w", f.ID, err)
		}
	}
	return nil
}

// VisibleFrames filters frames down to the visible ones, keeping order.
func VisibleFrames(frames []Frame) []Frame {
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if f.Visible {
			out = append(out, f)
		}
	}
	return out
}

// Transform is the single image placement shared by every frame. X and Y are
// the offset of the image centre from the canvas centre in native pixels;
// Zoom is a percentage where 100 is native size.
type Transform struct {
	X    float64 `json:"imageX"`
	Y    float64 `json:"imageY"`
	Zoom float64 `json:"zoom"`
}

const (
	MinZoom = 10
	MaxZoom = 500
)

// IdentityTransform is the transform applied to a freshly loaded image.
func IdentityTransform() Transform {
	return Transform{Zoom: 100}
}

// ClampZoom limits a zoom percentage to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return Clamp(z, MinZoom, MaxZoom)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
