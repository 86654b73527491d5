package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	domain "frameup/internal/model"
)

// homeMode is the mode list screens return to.
func (m *model) homeMode() Mode {
	if m.session.HasImage() {
		return ModeNormal
	}
	return ModeStartup
}

func (m *model) handleFramesKey(key string) tea.Cmd {
	m.errorMessage = ""
	m.successMessage = ""
	frames := m.session.Frames()

	switch key {
	case "j", "down":
		if m.selectedFrame < len(frames)-1 {
			m.selectedFrame++
		}
	case "k", "up":
		if m.selectedFrame > 0 {
			m.selectedFrame--
		}
	case " ", "v":
		if f, ok := m.currentFrame(); ok {
			m.report(m.session.ToggleFrame(f.ID))
		}
	case "J", "shift+down":
		m.moveFrame(1)
	case "K", "shift+up":
		m.moveFrame(-1)
	case "enter", "p":
		if f, ok := m.currentFrame(); ok {
			if !f.Visible {
				m.errorMessage = fmt.Sprintf("%s is hidden", f.Name)
				return nil
			}
			m.previewFrame = f.ID
			m.successMessage = fmt.Sprintf("Previewing %s", f.Name)
		}
	case "n":
		m.startPrompt(PromptNewFrame, "")
	case "s":
		if f, ok := m.currentFrame(); ok {
			m.startPrompt(PromptFrameSize, fmt.Sprintf("%dx%d", f.Width, f.Height))
		}
	case "d":
		if _, ok := m.currentFrame(); ok {
			return m.confirm(ConfirmDeleteFrame)
		}
	case "esc", "F", "q":
		m.mode = m.homeMode()
	case "?":
		m.help = true
	}
	return nil
}

func (m *model) moveFrame(delta int) {
	f, ok := m.currentFrame()
	if !ok {
		return
	}
	if err := m.session.MoveFrame(f.ID, delta); err != nil {
		m.report(err)
		return
	}
	m.selectedFrame = slices.IndexFunc(m.session.Frames(), func(g domain.Frame) bool { return g.ID == f.ID })
}

func (m *model) handleStylesKey(key string) tea.Cmd {
	m.errorMessage = ""
	m.successMessage = ""
	styles := m.session.Styles()

	switch key {
	case "j", "down":
		if m.selectedStyle < len(styles)-1 {
			m.selectedStyle++
		}
	case "k", "up":
		if m.selectedStyle > 0 {
			m.selectedStyle--
		}
	case "enter", "a":
		if m.selectedStyle >= len(styles) {
			return nil
		}
		l, ok := m.currentLayer()
		if !ok {
			m.errorMessage = "select a text layer with tab first"
			return nil
		}
		st := styles[m.selectedStyle]
		if err := m.session.ApplyStyle(st.ID, l.ID); err != nil {
			m.report(err)
			return nil
		}
		m.successMessage = fmt.Sprintf("Applied style %q", st.Name)
		m.mode = m.homeMode()
	case "d":
		if m.selectedStyle < len(styles) {
			return m.confirm(ConfirmDeleteStyle)
		}
	case "esc", "S", "q":
		m.mode = m.homeMode()
	case "?":
		m.help = true
	}
	return nil
}

func (m *model) startPrompt(purpose PromptPurpose, initial string) {
	m.prompt = newTextInput(initial)
	m.promptPurpose = purpose
	m.promptReturn = m.mode
	m.mode = ModePrompt
}

func (m *model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = m.promptReturn
		m.errorMessage = ""
		return nil
	case "enter":
		if err := m.submitPrompt(strings.TrimSpace(m.prompt.String())); err != nil {
			m.report(err)
			return nil
		}
		m.errorMessage = ""
		m.mode = m.promptReturn
		return nil
	case "backspace":
		m.prompt.backspace()
	case "delete":
		m.prompt.deleteForward()
	case "left":
		m.prompt.left()
	case "right":
		m.prompt.right()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.prompt.insert(strings.Map(dropControl, string(msg.Runes)))
		case tea.KeySpace:
			m.prompt.insert(" ")
		}
	}
	return nil
}

func dropControl(r rune) rune {
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

func (m *model) submitPrompt(text string) error {
	switch m.promptPurpose {
	case PromptStyleName:
		if text == "" {
			return fmt.Errorf("style name is empty: %w", domain.ErrInvalid)
		}
		st, err := m.session.SaveStyle(text, m.selectedLayer)
		if err != nil {
			return err
		}
		m.successMessage = fmt.Sprintf("Saved style %q", st.Name)
	case PromptNewFrame:
		name, w, h, err := parseFrameSpec(text)
		if err != nil {
			return err
		}
		f := domain.Frame{ID: m.uniqueFrameID(name), Name: name, Width: w, Height: h, Visible: true}
		if err := m.session.AddFrame(f); err != nil {
			return err
		}
		m.selectedFrame = len(m.session.Frames()) - 1
		m.successMessage = fmt.Sprintf("Added %s", f.Label())
	case PromptFrameSize:
		f, ok := m.currentFrame()
		if !ok {
			return fmt.Errorf("no frame selected: %w", domain.ErrNotFound)
		}
		w, h, err := parseSize(text)
		if err != nil {
			return err
		}
		if err := m.session.UpdateFrame(f.ID, func(f *domain.Frame) { f.Width, f.Height = w, h }); err != nil {
			return err
		}
		m.successMessage = fmt.Sprintf("%s is now %d×%d", f.Name, w, h)
	}
	return nil
}

// parseFrameSpec reads "Name WxH", for example "Story 1080x1920".
func parseFrameSpec(s string) (string, int, int, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return "", 0, 0, fmt.Errorf("want \"Name WIDTHxHEIGHT\", got %q: %w", s, domain.ErrInvalid)
	}
	w, h, err := parseSize(fields[len(fields)-1])
	if err != nil {
		return "", 0, 0, err
	}
	return strings.Join(fields[:len(fields)-1], " "), w, h, nil
}

// parseSize reads "WxH"; "×" and "X" work as the separator too.
func parseSize(s string) (int, int, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "×", "x")
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WIDTHxHEIGHT: %w", s, domain.ErrInvalid)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("width %q: %w", ws, domain.ErrInvalid)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("height %q: %w", hs, domain.ErrInvalid)
	}
	return w, h, nil
}

// uniqueFrameID derives a lower-case id from name that no frame uses yet.
func (m *model) uniqueFrameID(name string) string {
	base := slug(name)
	taken := func(id string) bool {
		return slices.ContainsFunc(m.session.Frames(), func(f domain.Frame) bool { return f.ID == id })
	}
	id := base
	for n := 2; taken(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "frame"
	}
	return s
}
