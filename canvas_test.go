package main

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
)

func TestCellMappingPoint(t *testing.T) {
	c := cellMapping{left: 2, top: 1, cols: 10, rows: 5, scale: 0.1, canvasW: 100, canvasH: 100}

	tests := []struct {
		x, y       int
		wantX      float64
		wantY      float64
		wantInside bool
	}{
		{2, 1, -45, -40, true},
		{7, 3, 5, 0, true},
		{11, 5, 45, 40, true},
		{1, 1, -55, -40, false},
		{12, 1, 55, -40, false},
		{2, 6, -45, 60, false},
	}
	for _, tt := range tests {
		p := c.point(tt.x, tt.y)
		if math.Abs(p.X-tt.wantX) > 1e-9 || math.Abs(p.Y-tt.wantY) > 1e-9 {
			t.Errorf("point(%d,%d) = %v, want (%v,%v)", tt.x, tt.y, p, tt.wantX, tt.wantY)
		}
		if got := c.contains(tt.x, tt.y); got != tt.wantInside {
			t.Errorf("contains(%d,%d) = %v", tt.x, tt.y, got)
		}
	}
}

func TestFitCells(t *testing.T) {
	tests := []struct {
		w, h, cols, rows int
		wantW, wantH     int
	}{
		{500, 250, 100, 30, 100, 50},
		{500, 500, 100, 20, 40, 40},
		{10, 10, 100, 100, 100, 100},
		{0, 10, 100, 100, 0, 0},
	}
	for _, tt := range tests {
		w, h, _ := fitCells(tt.w, tt.h, tt.cols, tt.rows)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitCells(%d,%d,%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, tt.cols, tt.rows, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(100 * y), A: 255})
		}
	}
	lines := halfBlocks(img)
	if len(lines) != 2 {
		t.Fatalf("got %d lines for 3 pixel rows, want 2", len(lines))
	}
	for i, l := range lines {
		if n := strings.Count(l, "▀"); n != 2 {
			t.Errorf("line %d has %d cells, want 2", i, n)
		}
	}
}

func TestOpaqueDropsAlpha(t *testing.T) {
	got := opaque(color.NRGBA{R: 255, A: 0})
	if got.A != 255 || got.R != 0 {
		t.Errorf("transparent red flattened to %v, want opaque black", got)
	}
}
