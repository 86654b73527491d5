package main

import (
	"slices"

	"frameup/internal/compositor"
	domain "frameup/internal/model"
)

// handleNavigation pans the image with the arrow and hjkl keys. Shifted keys
// pan further.
func (m *model) handleNavigation(key string) {
	step := m.getMoveSpeed(key)
	switch key {
	case "h", "left", "H", "shift+left":
		m.session.Pan(-step, 0)
	case "l", "right", "L", "shift+right":
		m.session.Pan(step, 0)
	case "k", "up", "K", "shift+up":
		m.session.Pan(0, -step)
	case "j", "down", "J", "shift+down":
		m.session.Pan(0, step)
	}
}

func (m *model) getMoveSpeed(key string) float64 {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return fastPanStep
	default:
		return panStep
	}
}

// cycleLayer moves the layer selection through the committed layers. The
// step past either end clears the selection.
func (m *model) cycleLayer(delta int) {
	layers := m.session.Layers()
	if len(layers) == 0 {
		m.selectedLayer = 0
		return
	}
	i := slices.IndexFunc(layers, func(l domain.TextLayer) bool { return l.ID == m.selectedLayer })
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(layers) - 1
	default:
		i += delta
	}
	if i < 0 || i >= len(layers) {
		m.selectedLayer = 0
		return
	}
	m.selectedLayer = layers[i].ID
}

func (m *model) currentLayer() (domain.TextLayer, bool) {
	if m.selectedLayer == 0 {
		return domain.TextLayer{}, false
	}
	l, err := m.session.Layer(m.selectedLayer)
	if err != nil {
		m.selectedLayer = 0
		return domain.TextLayer{}, false
	}
	return l, true
}

// previewFrameID is the frame shown in the preview pane: the chosen one while
// it is visible, otherwise the first visible frame.
func (m *model) previewFrameID() string {
	frames := m.session.Layout().Frames
	for _, fl := range frames {
		if fl.Frame.ID == m.previewFrame {
			return m.previewFrame
		}
	}
	if len(frames) == 0 {
		return ""
	}
	return frames[0].Frame.ID
}

func (m *model) cyclePreview() {
	frames := m.session.Layout().Frames
	if len(frames) == 0 {
		m.errorMessage = "no visible frames"
		return
	}
	current := m.previewFrameID()
	i := slices.IndexFunc(frames, func(fl compositor.FrameLayout) bool { return fl.Frame.ID == current })
	m.previewFrame = frames[(i+1)%len(frames)].Frame.ID
}

func (m *model) currentFrame() (domain.Frame, bool) {
	frames := m.session.Frames()
	if m.selectedFrame < 0 || m.selectedFrame >= len(frames) {
		return domain.Frame{}, false
	}
	return frames[m.selectedFrame], true
}

// clampSelections keeps list selections inside their lists after the lists
// change underneath them.
func (m *model) clampSelections() {
	m.selectedFrame = max(0, min(m.selectedFrame, len(m.session.Frames())-1))
	m.selectedStyle = max(0, min(m.selectedStyle, len(m.session.Styles())-1))
	m.currentLayer()
}
