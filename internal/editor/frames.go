package editor

import (
	"fmt"
	"slices"

	"frameup/internal/model"
)

// Frames returns a copy of every frame, visible or not, in order.
func (s *Session) Frames() []model.Frame { return slices.Clone(s.frames) }

func (s *Session) frameIndex(id string) int {
	return slices.IndexFunc(s.frames, func(f model.Frame) bool { return f.ID == id })
}

// AddFrame appends a frame. A missing colour is taken from the palette.
func (s *Session) AddFrame(f model.Frame) error {
	if f.Color == "" {
		f.Color = model.FramePalette[len(s.frames)%len(model.FramePalette)]
	}
	if err := model.ValidateFrame(f); err != nil {
		return err
	}
	if s.frameIndex(f.ID) >= 0 {
		return fmt.Errorf("frame %q already exists: %w", f.ID, model.ErrInvalid)
	}
	s.frames = append(s.frames, f)
	s.touchConfig()
	return nil
}

// UpdateFrame applies patch to a copy of the frame and stores it if valid.
// The id cannot be changed.
func (s *Session) UpdateFrame(id string, patch func(*model.Frame)) error {
	i := s.frameIndex(id)
	if i < 0 {
		return fmt.Errorf("frame %q: %w", id, model.ErrNotFound)
	}
	f := s.frames[i]
	patch(&f)
	f.ID = id
	if err := model.ValidateFrame(f); err != nil {
		return err
	}
	if f == s.frames[i] {
		return nil
	}
	s.frames[i] = f
	s.touchConfig()
	return nil
}

// DeleteFrame removes a frame.
func (s *Session) DeleteFrame(id string) error {
	i := s.frameIndex(id)
	if i < 0 {
		return fmt.Errorf("frame %q: %w", id, model.ErrNotFound)
	}
	s.frames = slices.Delete(s.frames, i, i+1)
	s.touchConfig()
	return nil
}

// MoveFrame shifts a frame by delta positions, stopping at either end.
func (s *Session) MoveFrame(id string, delta int) error {
	i := s.frameIndex(id)
	if i < 0 {
		return fmt.Errorf("frame %q: %w", id, model.ErrNotFound)
	}
	j := min(max(i+delta, 0), len(s.frames)-1)
	if i == j {
		return nil
	}
	f := s.frames[i]
	s.frames = slices.Delete(s.frames, i, i+1)
	s.frames = slices.Insert(s.frames, j, f)
	s.touchConfig()
	return nil
}

// ToggleFrame flips a frame's visibility.
func (s *Session) ToggleFrame(id string) error {
	return s.UpdateFrame(id, func(f *model.Frame) { f.Visible = !f.Visible })
}
