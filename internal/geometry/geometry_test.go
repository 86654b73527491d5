package geometry

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestExportDimensions(t *testing.T) {
	tests := []struct {
		name                             string
		nativeW, nativeH, frameW, frameH int
		want                             Size
	}{
		{"landscape image square frame", 3000, 2000, 1080, 1080, Size{2000, 2000}},
		{"wide image square frame", 2000, 1000, 1, 1, Size{1000, 1000}},
		{"wide frame", 3000, 2000, 1200, 630, Size{3000, 1575}},
		{"tall image wide frame", 1000, 3000, 1200, 627, Size{1000, 523}},
		{"equal ratio", 1200, 630, 1200, 630, Size{1200, 630}},
		{"equal ratio scaled", 2400, 1260, 1200, 630, Size{2400, 1260}},
		{"tiny image very tall frame", 3, 7, 100, 4000, Size{1, 7}},
		{"tiny image very wide frame", 7, 3, 4000, 100, Size{7, 1}},
		{"zero frame", 1000, 1000, 0, 100, Size{}},
		{"zero image", 0, 1000, 100, 100, Size{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExportDimensions(tt.nativeW, tt.nativeH, tt.frameW, tt.frameH)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExportDimensionsIdempotent(t *testing.T) {
	images := []Size{{3000, 2000}, {1000, 3000}, {4032, 3024}, {801, 799}}
	frames := []Size{{1080, 1080}, {1200, 630}, {1200, 627}, {1080, 1350}, {1080, 1920}}
	for _, img := range images {
		for _, f := range frames {
			once := ExportDimensions(img.Width, img.Height, f.Width, f.Height)
			twice := ExportDimensions(once.Width, once.Height, f.Width, f.Height)
			if once != twice {
				t.Errorf("image %v frame %v: first %v, second %v", img, f, once, twice)
			}
			if once.Width > img.Width || once.Height > img.Height {
				t.Errorf("image %v frame %v: %v exceeds native bounds", img, f, once)
			}
		}
	}
}

func TestNormalizeFramesEqualRatio(t *testing.T) {
	a := ExportDimensions(3000, 2000, 1080, 1080)
	b := ExportDimensions(3000, 2000, 500, 500)
	c := ExportDimensions(3000, 2000, 1200, 630)

	ns, scale := NormalizeFrames([]Size{a, b, c}, 400)
	if !approxEqual(scale, 400.0/3000.0) {
		t.Fatalf("scale = %v, want %v", scale, 400.0/3000.0)
	}
	if ns[0].DisplayWidth != ns[1].DisplayWidth || ns[0].DisplayHeight != ns[1].DisplayHeight {
		t.Errorf("equal ratios got different display sizes: %+v vs %+v", ns[0], ns[1])
	}
	if !approxEqual(ns[2].DisplayWidth, 400) {
		t.Errorf("largest frame display width = %v, want 400", ns[2].DisplayWidth)
	}
	for _, n := range ns {
		if !approxEqual(n.ScaleFactor, 3000.0/400.0) {
			t.Errorf("scale factor = %v", n.ScaleFactor)
		}
	}

	w, h := MaxDisplay(ns)
	if !approxEqual(w, 400) || !approxEqual(h, 2000*400.0/3000.0) {
		t.Errorf("MaxDisplay = %v, %v", w, h)
	}
}

func TestNormalizeFramesEmpty(t *testing.T) {
	ns, scale := NormalizeFrames([]Size{{}}, 400)
	if scale != 0 || len(ns) != 1 || ns[0].DisplayWidth != 0 {
		t.Errorf("got %+v, %v", ns, scale)
	}
}

func TestCoversFrame(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		zoom float64
		want bool
	}{
		{"exact fit", 0, 0, 100, true},
		{"gap left", 1, 0, 100, false},
		{"gap right", -1, 0, 100, false},
		{"gap top", 0, 1, 100, false},
		{"gap bottom", 0, -1, 100, false},
		{"zoomed in with offset", 10, -10, 110, true},
		{"slightly small", 0, 0, 99.9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoversFrame(1000, 1000, 1000, 1000, tt.x, tt.y, tt.zoom); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaceImage(t *testing.T) {
	r := PlaceImage(400, 300, 1000, 500, 100, -50, 200, 0.1)
	// 1000×500 at 200% and 0.1 scale is 200×100
	if !approxEqual(r.W, 200) || !approxEqual(r.H, 100) {
		t.Fatalf("size %vx%v", r.W, r.H)
	}
	cx, cy := r.Center()
	if !approxEqual(cx, 210) || !approxEqual(cy, 145) {
		t.Errorf("centre (%v, %v), want (210, 145)", cx, cy)
	}

	rel := PlaceImage(0, 0, 1000, 500, 0, 0, 100, 1)
	if !approxEqual(rel.X, -500) || !approxEqual(rel.Y, -250) {
		t.Errorf("centre-relative origin (%v, %v)", rel.X, rel.Y)
	}
}

func TestCoverZoom(t *testing.T) {
	exports := []Size{{2000, 2000}, {3000, 1575}}
	got := CoverZoom(3000, 2000, exports)
	if !approxEqual(got, 100) {
		t.Errorf("CoverZoom = %v, want 100", got)
	}

	got = CoverZoom(1500, 1000, exports)
	if !approxEqual(got, 200) {
		t.Errorf("CoverZoom = %v, want 200", got)
	}

	if got := CoverZoom(0, 0, exports); got != 100 {
		t.Errorf("degenerate CoverZoom = %v", got)
	}
}

func TestAverageColorUniform(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	fill := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)

	if got := AverageColor(img); got != fill {
		t.Errorf("AverageColor = %v, want %v", got, fill)
	}
}

func TestAverageColorEmpty(t *testing.T) {
	got := AverageColor(image.NewNRGBA(image.Rectangle{}))
	if got != (color.NRGBA{A: 255}) {
		t.Errorf("AverageColor(empty) = %v", got)
	}
}
