package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"frameup/internal/model"
)

// Layers returns a copy of the text layers in drawing order.
func (s *Session) Layers() []model.TextLayer { return slices.Clone(s.layers) }

// Layer returns the layer with the given id.
func (s *Session) Layer(id int) (model.TextLayer, error) {
	i := s.layerIndex(id)
	if i < 0 {
		return model.TextLayer{}, fmt.Errorf("layer %d: %w", id, model.ErrNotFound)
	}
	return s.layers[i], nil
}

func (s *Session) layerIndex(id int) int {
	return slices.IndexFunc(s.layers, func(l model.TextLayer) bool { return l.ID == id })
}

// AddLayer appends l under a fresh id and returns that id.
func (s *Session) AddLayer(l model.TextLayer) (int, error) {
	l.ID = s.nextLayerID
	if err := model.ValidateLayer(l); err != nil {
		return 0, err
	}
	s.nextLayerID++
	s.layers = append(s.layers, l)
	s.touch()
	return l.ID, nil
}

// UpdateLayer applies patch to a copy of the layer and stores the result if
// it is valid. The id cannot be changed.
func (s *Session) UpdateLayer(id int, patch func(*model.TextLayer)) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("layer %d: %w", id, model.ErrNotFound)
	}
	l := s.layers[i]
	patch(&l)
	l.ID = id
	if err := model.ValidateLayer(l); err != nil {
		return err
	}
	if l == s.layers[i] {
		return nil
	}
	s.layers[i] = l
	s.touch()
	return nil
}

// DeleteLayer removes a layer.
func (s *Session) DeleteLayer(id int) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("layer %d: %w", id, model.ErrNotFound)
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	s.touch()
	return nil
}

// Pending returns the layer being composed, if any.
func (s *Session) Pending() (model.TextLayer, bool) {
	if s.pending == nil {
		return model.TextLayer{}, false
	}
	return *s.pending, true
}

// SetPending shows l as the layer being composed. Previews draw it faded and
// exports leave it out.
func (s *Session) SetPending(l model.TextLayer) {
	l = model.ClampLayer(l)
	if s.pending != nil && *s.pending == l {
		return
	}
	s.pending = &l
	s.touch()
}

// CommitPending turns the pending layer into a real one.
func (s *Session) CommitPending() (int, error) {
	if s.pending == nil {
		return 0, fmt.Errorf("pending layer: %w", model.ErrNotFound)
	}
	if s.pending.Blank() {
		return 0, fmt.Errorf("pending layer has no text: %w", model.ErrInvalid)
	}
	id, err := s.AddLayer(*s.pending)
	if err != nil {
		return 0, err
	}
	s.pending = nil
	return id, nil
}

// DiscardPending drops the pending layer.
func (s *Session) DiscardPending() {
	if s.pending == nil {
		return
	}
	s.pending = nil
	s.touch()
}

// Styles returns a copy of the saved styles.
func (s *Session) Styles() []model.TextStyle { return slices.Clone(s.styles) }

func (s *Session) styleIndex(id string) int {
	return slices.IndexFunc(s.styles, func(st model.TextStyle) bool { return st.ID == id })
}

// SaveStyle stores the style of a layer under name. Saving under an existing
// name replaces that style and keeps its id.
func (s *Session) SaveStyle(name string, layerID int) (model.TextStyle, error) {
	name = strings.TrimSpace(name)
	l, err := s.Layer(layerID)
	if err != nil {
		return model.TextStyle{}, err
	}

	i := slices.IndexFunc(s.styles, func(st model.TextStyle) bool { return st.Name == name })
	id := uuid.NewString()
	if i >= 0 {
		id = s.styles[i].ID
	}
	st := model.StyleFromLayer(id, name, l)
	if err := model.ValidateStyle(st); err != nil {
		return model.TextStyle{}, err
	}

	if i >= 0 {
		s.styles[i] = st
	} else {
		s.styles = append(s.styles, st)
	}
	s.touchConfig()
	s.logger.Debug("style saved", "name", name, "id", id)
	return st, nil
}

// ApplyStyle copies a saved style onto a layer.
func (s *Session) ApplyStyle(styleID string, layerID int) error {
	i := s.styleIndex(styleID)
	if i < 0 {
		return fmt.Errorf("style %q: %w", styleID, model.ErrNotFound)
	}
	st := s.styles[i]
	return s.UpdateLayer(layerID, func(l *model.TextLayer) {
		*l = st.ApplyTo(*l)
	})
}

// DeleteStyle removes a saved style.
func (s *Session) DeleteStyle(id string) error {
	i := s.styleIndex(id)
	if i < 0 {
		return fmt.Errorf("style %q: %w", id, model.ErrNotFound)
	}
	s.styles = slices.Delete(s.styles, i, i+1)
	s.touchConfig()
	return nil
}
