package main

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"frameup/internal/editor"
	domain "frameup/internal/model"
)

// startNewLayer opens the text input for a new layer. Until it is committed
// the layer is pending: previews show it faded and exports leave it out.
func (m *model) startNewLayer() {
	if !m.session.HasImage() {
		m.errorMessage = editor.ErrNoImage.Error()
		return
	}
	m.editText = newTextInput("")
	m.session.SetPending(domain.DefaultTextLayer())
	m.mode = ModeTextInput
}

func (m *model) startEditLayer() {
	l, ok := m.currentLayer()
	if !ok {
		m.errorMessage = "select a text layer with tab first"
		return
	}
	m.editText = newTextInput(l.Text)
	m.originalEditText = l.Text
	m.mode = ModeEditing
}

func (m *model) handleTextKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.cancelText()
		return nil
	case "ctrl+s":
		m.commitText()
		return nil
	case "enter":
		m.editText.insert("\n")
	case "backspace":
		m.editText.backspace()
	case "delete":
		m.editText.deleteForward()
	case "left":
		m.editText.left()
	case "right":
		m.editText.right()
	case "ctrl+v":
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = "clipboard: " + err.Error()
			return nil
		}
		m.editText.insert(cleanClipboardText(text))
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.editText.insert(cleanClipboardText(string(msg.Runes)))
		case tea.KeySpace:
			m.editText.insert(" ")
		default:
			return nil
		}
	}
	m.syncText()
	return nil
}

// syncText pushes the input buffer into the layer being written so the
// canvas follows every keystroke.
func (m *model) syncText() {
	text := m.editText.String()
	switch m.mode {
	case ModeTextInput:
		l, ok := m.session.Pending()
		if !ok {
			l = domain.DefaultTextLayer()
		}
		l.Text = text
		m.session.SetPending(l)
	case ModeEditing:
		m.report(m.session.UpdateLayer(m.selectedLayer, func(l *domain.TextLayer) { l.Text = text }))
	}
}

func (m *model) commitText() {
	switch m.mode {
	case ModeTextInput:
		id, err := m.session.CommitPending()
		if err != nil {
			m.errorMessage = "type some text first, or Esc to discard"
			return
		}
		m.selectedLayer = id
		m.successMessage = "Text layer added"
	case ModeEditing:
		m.successMessage = "Text updated"
	}
	m.mode = ModeNormal
}

func (m *model) cancelText() {
	switch m.mode {
	case ModeTextInput:
		m.session.DiscardPending()
	case ModeEditing:
		original := m.originalEditText
		m.report(m.session.UpdateLayer(m.selectedLayer, func(l *domain.TextLayer) { l.Text = original }))
	}
	m.mode = ModeNormal
}

// styleLayer applies a one-key style change to the selected layer.
func (m *model) styleLayer(key string) {
	l, ok := m.currentLayer()
	if !ok {
		m.errorMessage = "select a text layer with tab first"
		return
	}
	m.report(m.session.UpdateLayer(l.ID, func(l *domain.TextLayer) {
		switch key {
		case "a":
			l.VerticalAlign = l.VerticalAlign.Next()
		case "[":
			l.FontSize = max(domain.MinFontSize, l.FontSize-fontStep)
		case "]":
			l.FontSize = min(domain.MaxFontSize, l.FontSize+fontStep)
		case "b":
			l.Bold = !l.Bold
		case "i":
			l.Italic = !l.Italic
		case "g":
			l.ShowBackground = !l.ShowBackground
		case "w":
			l.Shadow.Enabled = !l.Shadow.Enabled
		case "f":
			l.FontFamily = nextFamily(m.fonts.Families(), l.FontFamily)
		}
	}))
}

// nextFamily returns the family after current, wrapping around. Unknown
// families restart the cycle.
func nextFamily(families []string, current string) string {
	if len(families) == 0 {
		return current
	}
	i := slices.Index(families, current)
	return families[(i+1)%len(families)]
}
