package main

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"frameup/internal/editor"
	"frameup/internal/interact"
	domain "frameup/internal/model"
	"frameup/internal/store"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.SaveDirectory = filepath.Join(dir, "out")
	cfg.Confirmations = false
	cfg.ExportDelay = 0
	cfg.Store.Path = filepath.Join(dir, "frameup.json")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := openDeps(context.Background(), cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)

	m := newModel(cfg, logger, d, store.Default())
	m.width, m.height = 120, 40
	return m
}

func withImage(t *testing.T, m model) model {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 600, 400))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 200, G: 80, B: 40, A: 255}), image.Point{}, draw.Src)
	m = send(m, imageDecodedMsg{img: img, info: editor.ImageInfo{Path: "/tmp/test.png", Name: "test.png", Bytes: 1234}})
	if m.mode != ModeNormal {
		t.Fatalf("mode after image load = %s", m.modeString())
	}
	return m
}

func send(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

// drain runs cmd and everything it leads to, feeding each message back
// into the model.
func drain(m model, cmd tea.Cmd) model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(model)
			queue = append(queue, more)
		}
	}
	return m
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTransformKeys(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("+"), keys("+"), keys("L"), keys("j"))
	tr := m.session.Transform()
	if tr.Zoom != 110 || tr.X != fastPanStep || tr.Y != panStep {
		t.Errorf("transform %+v, want zoom 110, x %d, y %d", tr, fastPanStep, panStep)
	}

	m = send(m, keys("x"))
	if got := m.session.Transform(); got.X != 0 || got.Y != panStep {
		t.Errorf("centre-H gave %+v", got)
	}
	m = send(m, keys("r"))
	if got := m.session.Transform(); got != domain.IdentityTransform() {
		t.Errorf("reset gave %+v", got)
	}
}

func TestAddAndStyleLayer(t *testing.T) {
	m := withImage(t, newTestModel(t))

	m = send(m, keys("t"), keys("Hello"), tea.KeyMsg{Type: tea.KeyEnter}, keys("there"))
	if m.mode != ModeTextInput {
		t.Fatalf("mode %s", m.modeString())
	}
	pending, ok := m.session.Pending()
	if !ok || pending.Text != "Hello\nthere" {
		t.Fatalf("pending %+v %v", pending, ok)
	}
	if len(m.session.Layers()) != 0 {
		t.Fatal("pending text committed early")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	layers := m.session.Layers()
	if len(layers) != 1 || m.selectedLayer != layers[0].ID {
		t.Fatalf("layers %+v selected %d", layers, m.selectedLayer)
	}
	if _, ok := m.session.Pending(); ok {
		t.Error("pending layer left after commit")
	}

	m = send(m, keys("b"), keys("]"), keys("a"))
	l, _ := m.session.Layer(m.selectedLayer)
	if !l.Bold || l.FontSize != domain.DefaultFontSize+fontStep || l.VerticalAlign != domain.AlignBottom {
		t.Errorf("styled layer %+v", l)
	}
}

func TestEditLayerEscRestoresText(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("t"), keys("Draft"), tea.KeyMsg{Type: tea.KeyCtrlS})

	m = send(m, keys("e"), tea.KeyMsg{Type: tea.KeyBackspace}, keys("!"))
	if l, _ := m.session.Layer(m.selectedLayer); l.Text != "Draf!" {
		t.Fatalf("live edit gave %q", l.Text)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if l, _ := m.session.Layer(m.selectedLayer); l.Text != "Draft" {
		t.Errorf("cancelled edit left %q", l.Text)
	}
	if m.mode != ModeNormal {
		t.Errorf("mode %s", m.modeString())
	}
}

func TestEscDiscardsPendingLayer(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("t"), keys("nope"), tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := m.session.Pending(); ok {
		t.Error("pending layer survived Esc")
	}
	if len(m.session.Layers()) != 0 {
		t.Error("Esc committed the layer")
	}
}

func TestDeleteLayerWithoutConfirmation(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("t"), keys("x"), tea.KeyMsg{Type: tea.KeyCtrlS}, keys("d"))
	if len(m.session.Layers()) != 0 || m.selectedLayer != 0 {
		t.Errorf("layer not deleted: %+v", m.session.Layers())
	}
}

func TestConfirmationPrompt(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m.config.Confirmations = true
	m = send(m, keys("t"), keys("x"), tea.KeyMsg{Type: tea.KeyCtrlS}, keys("d"))
	if m.mode != ModeConfirm {
		t.Fatalf("mode %s, want confirm", m.modeString())
	}
	m = send(m, keys("n"))
	if m.mode != ModeNormal || len(m.session.Layers()) != 1 {
		t.Fatal("declined delete still removed the layer")
	}
	m = send(m, keys("d"), keys("y"))
	if len(m.session.Layers()) != 0 {
		t.Error("confirmed delete kept the layer")
	}
}

func TestSaveStylePersists(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("t"), keys("x"), tea.KeyMsg{Type: tea.KeyCtrlS}, keys("s"))
	if m.mode != ModePrompt {
		t.Fatalf("mode %s", m.modeString())
	}
	m = send(m, keys("Headline"))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if cmd == nil {
		t.Fatal("style change did not schedule a save")
	}
	m = drain(m, cmd)
	if m.errorMessage != "" {
		t.Fatalf("error: %s", m.errorMessage)
	}

	data, err := os.ReadFile(m.config.Store.Path)
	if err != nil {
		t.Fatal(err)
	}
	doc, warnings := store.Decode(data)
	if len(warnings) != 0 || len(doc.Styles) != 1 || doc.Styles[0].Name != "Headline" {
		t.Errorf("stored styles %+v, warnings %v", doc.Styles, warnings)
	}
}

func TestFramesScreen(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("F"), keys("n"), keys("Story"), tea.KeyMsg{Type: tea.KeySpace}, keys("1080x1920"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != ModeFrames {
		t.Fatalf("mode %s, error %q", m.modeString(), m.errorMessage)
	}
	frames := m.session.Frames()
	last := frames[len(frames)-1]
	if last.ID != "story" || last.Width != 1080 || last.Height != 1920 || !last.Visible {
		t.Errorf("new frame %+v", last)
	}

	// Hide the new frame and move it to the top.
	m = send(m, keys(" "), keys("K"), keys("K"), keys("K"))
	frames = m.session.Frames()
	if frames[0].ID != "story" || frames[0].Visible || m.selectedFrame != 0 {
		t.Errorf("frames %+v selected %d", frames, m.selectedFrame)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != ModeNormal {
		t.Errorf("Esc left mode %s", m.modeString())
	}
}

func TestMouseDragAndCancel(t *testing.T) {
	m := withImage(t, newTestModel(t))
	if v := m.View(); v == "" {
		t.Fatal("empty view")
	}
	c := m.editorCache.mapping
	if !m.editorCache.valid || c.cols == 0 {
		t.Fatal("editor canvas not rendered")
	}
	cx, cy := c.left+c.cols/2, c.top+c.rows/2

	m = send(m,
		tea.MouseMsg{X: cx, Y: cy, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: cx + 5, Y: cy, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	if m.session.PointerState() != interact.Dragging {
		t.Fatalf("state %v, want dragging", m.session.PointerState())
	}
	if m.session.Transform().X <= 0 {
		t.Fatalf("drag right gave %+v", m.session.Transform())
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.PointerState() != interact.Idle || m.session.Transform() != domain.IdentityTransform() {
		t.Errorf("cancel left %v %+v", m.session.PointerState(), m.session.Transform())
	}
}

func TestMouseLeavingCanvasReleases(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m.View()
	c := m.editorCache.mapping
	cx, cy := c.left+c.cols/2, c.top+c.rows/2

	m = send(m,
		tea.MouseMsg{X: cx, Y: cy, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: cx, Y: cy + 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	moved := m.session.Transform()
	m = send(m, tea.MouseMsg{X: cx, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if m.session.PointerState() != interact.Idle {
		t.Error("leaving the canvas did not end the drag")
	}
	if m.session.Transform() != moved {
		t.Errorf("transform changed on release: %+v, want %+v", m.session.Transform(), moved)
	}
}

func TestExportAllFromKeyboard(t *testing.T) {
	m := withImage(t, newTestModel(t))
	next, cmd := m.Update(keys("E"))
	m = next.(model)
	if !m.exporting {
		t.Fatalf("export not started: %q", m.errorMessage)
	}
	m = drain(m, cmd)

	if m.exporting || m.errorMessage != "" {
		t.Fatalf("exporting %v, error %q", m.exporting, m.errorMessage)
	}
	if m.exportDone != 3 || !strings.Contains(m.successMessage, "Exported 3") {
		t.Errorf("done %d, message %q", m.exportDone, m.successMessage)
	}
	for _, name := range []string{"instagram-400x400.png", "facebook-600x315.png", "linkedin-600x314.png"} {
		if _, err := os.Stat(filepath.Join(m.config.ExportDir(), name)); err != nil {
			t.Errorf("missing export: %v", err)
		}
	}
	if filepath.Base(m.lastExport) != "linkedin-600x314.png" {
		t.Errorf("last export %q", m.lastExport)
	}
}

func TestPastedPathRejectsNonImages(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/tmp/notes.txt'"), Paste: true})
	m = next.(model)
	if cmd != nil || !strings.Contains(m.errorMessage, "notes.txt") {
		t.Errorf("cmd %v, error %q", cmd != nil, m.errorMessage)
	}
}

func TestPastedImagePathStartsLoading(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/tmp/My Photo.png'"), Paste: true})
	m = next.(model)
	if cmd == nil || !strings.Contains(m.successMessage, "My Photo.png") {
		t.Errorf("cmd %v, message %q, error %q", cmd != nil, m.successMessage, m.errorMessage)
	}
}

func TestPickerPasteReplacesQuery(t *testing.T) {
	m := newTestModel(t)
	m.mode = ModeFileInput
	m.filename = "hol"

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("file:///tmp/My%20Photo.png\n"), Paste: true})
	if m.filename != "/tmp/My Photo.png" {
		t.Errorf("after paste filename = %q", m.filename)
	}
	m = send(m, keys("x"))
	if m.filename != "/tmp/My Photo.pngx" {
		t.Errorf("typing after paste gave %q", m.filename)
	}
	if m.mode != ModeFileInput {
		t.Errorf("mode %s, want file input", m.modeString())
	}
}

func TestNewImageClearsLayers(t *testing.T) {
	m := withImage(t, newTestModel(t))
	m = send(m, keys("t"), keys("x"), tea.KeyMsg{Type: tea.KeyCtrlS}, keys("n"))
	if m.mode != ModeStartup || m.session.HasImage() || len(m.session.Layers()) != 0 {
		t.Errorf("mode %s, image %v, layers %d", m.modeString(), m.session.HasImage(), len(m.session.Layers()))
	}
}
