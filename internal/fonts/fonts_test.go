package fonts

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

func newTestRegistry(t *testing.T, dir string) *Registry {
	t.Helper()
	r, err := NewRegistry(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestUnknownFamilyFallsBack(t *testing.T) {
	r := newTestRegistry(t, "")

	want := font.MeasureString(r.Face(DefaultFamily, false, false, 32), "Fallback")
	got := font.MeasureString(r.Face("Comic Sans", false, false, 32), "Fallback")
	if got != want {
		t.Errorf("unknown family measured %v, default measured %v", got, want)
	}
}

func TestFaceIsCached(t *testing.T) {
	r := newTestRegistry(t, "")
	a := r.Face("Go", true, false, 20)
	b := r.Face("Go", true, false, 20)
	if a != b {
		t.Error("expected the same face for identical requests")
	}
	if c := r.Face("Go", true, false, 21); c == a {
		t.Error("expected a distinct face for a different size")
	}
}

func TestMissingVariantUsesRegular(t *testing.T) {
	r := newTestRegistry(t, "")
	// Go Medium ships no bold cut.
	want := font.MeasureString(r.Face("Go Medium", false, false, 24), "Medium")
	got := font.MeasureString(r.Face("Go Medium", true, false, 24), "Medium")
	if got != want {
		t.Errorf("bold fallback measured %v, regular measured %v", got, want)
	}
}

func TestFontDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "brand")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "Brand-Bold.ttf"), gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRegistry(t, dir)
	if !r.Has("Brand") {
		t.Fatalf("Brand not registered, have %v", r.Families())
	}
	if r.Has("broken") {
		t.Error("unparseable file was registered")
	}
	// Only a bold cut exists, so a regular request still resolves.
	if face := r.Face("Brand", false, false, 16); face == nil {
		t.Error("expected a face for Brand regular")
	}
}

func TestSplitFileName(t *testing.T) {
	tests := []struct {
		in      string
		family  string
		variant variant
	}{
		{"Inter-BoldItalic.ttf", "Inter", boldItalic},
		{"Inter-Bold.ttf", "Inter", bold},
		{"Inter-Italic.TTF", "Inter", italic},
		{"Inter-Regular.ttf", "Inter", regular},
		{"Lobster.ttf", "Lobster", regular},
	}
	for _, tt := range tests {
		family, v := splitFileName(tt.in)
		if family != tt.family || v != tt.variant {
			t.Errorf("splitFileName(%q) = %q, %v; want %q, %v", tt.in, family, v, tt.family, tt.variant)
		}
	}
}

func TestForkSharesFamilies(t *testing.T) {
	r := newTestRegistry(t, "")
	f := r.Fork()
	if len(f.Families()) != len(r.Families()) {
		t.Fatalf("fork families %v, original %v", f.Families(), r.Families())
	}
	if f.Face("Go", false, false, 12) == r.Face("Go", false, false, 12) {
		t.Error("fork must not share faces with the original")
	}
}
