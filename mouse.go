package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"frameup/internal/editor"
	"frameup/internal/interact"
)

// handleMouse drives the image with the pointer: a press on a corner handle
// resizes, anywhere else on the canvas drags, and the wheel zooms. The cell
// mapping is frozen for the whole gesture so a canvas that resizes under the
// pointer does not make the image jump.
func (m *model) handleMouse(msg tea.MouseMsg) {
	if m.mode != ModeNormal || m.help || !m.session.HasImage() {
		return
	}
	live := m.editorCache.mapping
	onCanvas := m.editorCache.valid && live.contains(msg.X, msg.Y)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !onCanvas {
			return
		}
		g := live
		m.gesture = &g
		m.session.PointerDown(g.point(msg.X, msg.Y))

	case msg.Action == tea.MouseActionMotion:
		if m.gesture != nil {
			if !m.gesture.contains(msg.X, msg.Y) {
				m.endGesture()
				return
			}
			m.session.PointerMove(m.gesture.point(msg.X, msg.Y), msg.Shift)
			return
		}
		m.hover = interact.NoCorner
		if onCanvas {
			m.hover = m.session.Hover(live.point(msg.X, msg.Y))
		}

	case msg.Action == tea.MouseActionRelease:
		m.endGesture()

	case msg.Button == tea.MouseButtonWheelUp:
		if onCanvas {
			m.session.ZoomBy(editor.ZoomStep)
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if onCanvas {
			m.session.ZoomBy(-editor.ZoomStep)
		}
	}
}

func (m *model) endGesture() {
	if m.gesture == nil {
		return
	}
	m.session.PointerUp()
	m.gesture = nil
}
