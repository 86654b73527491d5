package editor

import (
	"context"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"

	"frameup/internal/compositor"
	"frameup/internal/export"
	"frameup/internal/fonts"
	"frameup/internal/interact"
	"frameup/internal/model"
	"frameup/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSession(t *testing.T, w, h int) *Session {
	t.Helper()
	s := New(store.Default(), compositor.DefaultReference, discard)
	if w > 0 {
		s.SetImage(imaging.New(w, h, color.NRGBA{R: 200, G: 100, B: 50, A: 255}), ImageInfo{Name: "test.png"})
	}
	return s
}

func textLayer(text string) model.TextLayer {
	l := model.DefaultTextLayer()
	l.Text = text
	return l
}

func TestTransformCommands(t *testing.T) {
	s := newSession(t, 3000, 2000)
	rev := s.Revision()

	s.Pan(10, -20)
	s.ZoomBy(ZoomStep)
	if got := s.Transform(); got != (model.Transform{X: 10, Y: -20, Zoom: 105}) {
		t.Errorf("after pan and zoom: %+v", got)
	}
	if s.Revision() == rev {
		t.Error("revision did not change")
	}

	s.CenterH()
	if got := s.Transform(); got.X != 0 || got.Y != -20 {
		t.Errorf("CenterH: %+v", got)
	}
	s.CenterV()
	if got := s.Transform(); got.Y != 0 {
		t.Errorf("CenterV: %+v", got)
	}

	s.SetZoom(1000)
	if s.Transform().Zoom != model.MaxZoom {
		t.Errorf("zoom not clamped: %v", s.Transform().Zoom)
	}
	s.SetZoom(1)
	if s.Transform().Zoom != model.MinZoom {
		t.Errorf("zoom not clamped: %v", s.Transform().Zoom)
	}

	s.Pan(50, 50)
	if err := s.Cover(); err != nil {
		t.Fatal(err)
	}
	if got := s.Transform(); got != (model.Transform{Zoom: 100}) {
		t.Errorf("Cover: %+v", got)
	}

	s.Pan(5, 5)
	s.Reset()
	if s.Transform() != model.IdentityTransform() {
		t.Errorf("Reset: %+v", s.Transform())
	}

	rev = s.Revision()
	s.Reset()
	if s.Revision() != rev {
		t.Error("no-op reset bumped the revision")
	}
}

func TestCoverWithoutImage(t *testing.T) {
	s := newSession(t, 0, 0)
	if err := s.Cover(); !errors.Is(err, ErrNoImage) {
		t.Errorf("got %v, want ErrNoImage", err)
	}
}

func TestPointerGestures(t *testing.T) {
	s := newSession(t, 3000, 2000)
	ds := s.Space().DisplayScale
	if math.Abs(ds-400.0/3000.0) > 1e-9 {
		t.Fatalf("display scale %v", ds)
	}

	if got := s.PointerDown(interact.Point{}); got != interact.Dragging {
		t.Fatalf("press in the middle: %v", got)
	}
	if !s.PointerMove(interact.Point{X: 40}, false) {
		t.Fatal("move did not change the transform")
	}
	if got := s.Transform().X; math.Abs(got-40/ds) > 1e-9 {
		t.Errorf("X = %v, want %v", got, 40/ds)
	}
	s.PointerCancel()
	if s.Transform() != model.IdentityTransform() {
		t.Errorf("cancel did not restore: %+v", s.Transform())
	}
	if s.PointerMove(interact.Point{X: 80}, false) {
		t.Error("move after cancel changed the transform")
	}

	// The image is 400×266.67 display pixels; its se corner is at (200, 133.33).
	corner := interact.Point{X: 200, Y: 2000 * ds / 2}
	if got := s.Hover(corner); got != interact.SE {
		t.Errorf("hover on se corner: %v", got)
	}
	if got := s.PointerDown(corner); got != interact.Resizing {
		t.Fatalf("press on corner: %v", got)
	}
	s.PointerMove(interact.Point{X: corner.X + 40, Y: corner.Y}, false)
	if z := s.Transform().Zoom; math.Abs(z-110) > 1e-9 {
		t.Errorf("zoom %v, want 110", z)
	}
	s.PointerUp()
	if s.PointerState() != interact.Idle {
		t.Errorf("state after release %v", s.PointerState())
	}
}

func TestLayers(t *testing.T) {
	s := newSession(t, 100, 100)

	id1, err := s.AddLayer(textLayer("one"))
	if err != nil {
		t.Fatal(err)
	}
	id2, _ := s.AddLayer(textLayer("two"))
	if id1 != 1 || id2 != 2 {
		t.Errorf("ids %d, %d", id1, id2)
	}

	bad := textLayer("bad")
	bad.FontSize = 500
	if _, err := s.AddLayer(bad); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("invalid layer accepted: %v", err)
	}

	if err := s.UpdateLayer(id1, func(l *model.TextLayer) { l.FontSize = 5 }); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("invalid update accepted: %v", err)
	}
	if l, _ := s.Layer(id1); l.FontSize != model.DefaultFontSize {
		t.Errorf("rejected update leaked: %v", l.FontSize)
	}

	if err := s.UpdateLayer(id1, func(l *model.TextLayer) {
		l.Text = "uno"
		l.ID = 99
	}); err != nil {
		t.Fatal(err)
	}
	if l, err := s.Layer(id1); err != nil || l.Text != "uno" {
		t.Errorf("update lost: %+v %v", l, err)
	}

	if err := s.DeleteLayer(id2); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteLayer(id2); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
	if n := len(s.Layers()); n != 1 {
		t.Errorf("%d layers left", n)
	}

	id3, _ := s.AddLayer(textLayer("three"))
	if id3 != 3 {
		t.Errorf("ids are reused: got %d", id3)
	}

	s.Clear()
	if s.HasImage() || len(s.Layers()) != 0 {
		t.Error("Clear kept the image or layers")
	}
	if id, _ := s.AddLayer(textLayer("fresh")); id != 1 {
		t.Errorf("id counter not reset: %d", id)
	}
}

func TestPendingLayer(t *testing.T) {
	s := newSession(t, 100, 100)
	if _, err := s.CommitPending(); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("commit without pending: %v", err)
	}

	s.SetPending(textLayer(""))
	if _, err := s.CommitPending(); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("blank pending committed: %v", err)
	}

	s.SetPending(textLayer("draft"))
	scene := s.Scene()
	if scene.Pending == nil || scene.Pending.Text != "draft" {
		t.Fatalf("scene pending %+v", scene.Pending)
	}
	// The snapshot does not alias session state.
	scene.Pending.Text = "changed"
	if p, _ := s.Pending(); p.Text != "draft" {
		t.Error("scene snapshot aliases the pending layer")
	}

	id, err := s.CommitPending()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Pending(); ok {
		t.Error("pending survived commit")
	}
	if l, _ := s.Layer(id); l.Text != "draft" {
		t.Errorf("committed layer %+v", l)
	}

	s.SetPending(textLayer("again"))
	s.DiscardPending()
	if s.Scene().Pending != nil {
		t.Error("discard kept the pending layer")
	}
}

func TestStyles(t *testing.T) {
	s := newSession(t, 100, 100)
	styled := textLayer("styled")
	styled.FontSize = 72
	styled.Bold = true
	styled.Shadow.Enabled = true
	src, _ := s.AddLayer(styled)
	dst, _ := s.AddLayer(textLayer("plain"))

	cfg := s.ConfigRevision()
	st, err := s.SaveStyle("Headline", src)
	if err != nil {
		t.Fatal(err)
	}
	if st.ID == "" || s.ConfigRevision() == cfg {
		t.Errorf("style %+v, config revision %d", st, s.ConfigRevision())
	}

	if err := s.ApplyStyle(st.ID, dst); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Layer(dst)
	if got.Text != "plain" || got.ID != dst || got.FontSize != 72 || !got.Bold || !got.Shadow.Enabled {
		t.Errorf("applied style: %+v", got)
	}

	again, err := s.SaveStyle("Headline", dst)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != st.ID || len(s.Styles()) != 1 {
		t.Errorf("saving under the same name added a style: %+v", s.Styles())
	}

	if _, err := s.SaveStyle("  ", src); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("blank style name accepted: %v", err)
	}
	if err := s.ApplyStyle("missing", dst); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("apply missing style: %v", err)
	}
	if err := s.DeleteStyle(st.ID); err != nil {
		t.Fatal(err)
	}
	if len(s.Document().Styles) != 0 {
		t.Error("style still in the document")
	}
}

func TestFrames(t *testing.T) {
	s := newSession(t, 3000, 2000)
	cfg := s.ConfigRevision()

	story := model.Frame{ID: "story", Name: "Story", Width: 1080, Height: 1920, Visible: true}
	if err := s.AddFrame(story); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFrame(story); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("duplicate frame: %v", err)
	}
	if f := s.Frames()[3]; f.Color != model.FramePalette[3] {
		t.Errorf("palette colour not assigned: %q", f.Color)
	}

	if err := s.MoveFrame("story", -10); err != nil {
		t.Fatal(err)
	}
	if s.Frames()[0].ID != "story" {
		t.Errorf("order %v", ids(s.Frames()))
	}

	if err := s.ToggleFrame("facebook"); err != nil {
		t.Fatal(err)
	}
	if got := ids(s.Scene().Frames); len(got) != 3 || got[2] != "linkedin" {
		t.Errorf("visible frames %v", got)
	}

	if err := s.UpdateFrame("story", func(f *model.Frame) { f.Width = 50 }); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("invalid frame update: %v", err)
	}
	if err := s.UpdateFrame("story", func(f *model.Frame) { f.Name = "Reel" }); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteFrame("instagram"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteFrame("instagram"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}

	doc := s.Document()
	if got := ids(doc.Frames); len(got) != 3 || got[0] != "story" || doc.Frames[0].Name != "Reel" {
		t.Errorf("document frames %v", got)
	}
	if s.ConfigRevision() == cfg {
		t.Error("config revision unchanged")
	}
}

func ids(frames []model.Frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.ID
	}
	return out
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := imaging.Save(imaging.New(64, 32, color.White), path); err != nil {
		t.Fatal(err)
	}

	s := newSession(t, 0, 0)
	if _, err := s.AddLayer(textLayer("kept")); err != nil {
		t.Fatal(err)
	}
	s.Pan(10, 10)
	if err := s.LoadImage(path); err != nil {
		t.Fatal(err)
	}
	info := s.Image()
	if info.Name != "photo.png" || info.Width != 64 || info.Height != 32 || info.Bytes == 0 {
		t.Errorf("image info %+v", info)
	}
	if s.Transform() != model.IdentityTransform() {
		t.Errorf("transform not reset: %+v", s.Transform())
	}
	if len(s.Layers()) != 1 {
		t.Error("replacing the image dropped the layers")
	}

	if err := s.LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file loaded")
	}
}

type memorySink struct {
	mu    sync.Mutex
	names []string
}

func (m *memorySink) Deliver(ctx context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	return name, nil
}

func TestExportJobs(t *testing.T) {
	reg, err := fonts.NewRegistry("", discard)
	if err != nil {
		t.Fatal(err)
	}
	sink := &memorySink{}
	p := export.New(compositor.New(reg, compositor.DefaultReference), sink, 0, discard)

	empty := newSession(t, 0, 0)
	if _, err := empty.ExportAll(p, nil); !errors.Is(err, ErrNoImage) {
		t.Errorf("export without image: %v", err)
	}

	s := newSession(t, 600, 400)
	s.ToggleFrame("linkedin")
	if _, err := s.ExportFrame(p, "linkedin"); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("hidden frame export: %v", err)
	}

	job, err := s.ExportAll(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Later edits do not affect a job that was already created.
	s.ToggleFrame("linkedin")
	results, err := job(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || len(sink.names) != 2 {
		t.Errorf("exported %v", sink.names)
	}

	one, err := s.ExportFrame(p, "linkedin")
	if err != nil {
		t.Fatal(err)
	}
	results, err = one(context.Background())
	if err != nil || len(results) != 1 || results[0].Name != "linkedin-600x314.png" {
		t.Errorf("single export %+v %v", results, err)
	}
}
