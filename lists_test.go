package main

import (
	"errors"
	"testing"

	domain "frameup/internal/model"
)

func TestParseFrameSpec(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		w, h    int
		wantErr bool
	}{
		{"Story 1080x1920", "Story", 1080, 1920, false},
		{"X Header 1500×500", "X Header", 1500, 500, false},
		{"Banner 1200 X 300", "", 0, 0, true},
		{"1080x1080", "", 0, 0, true},
		{"Square axb", "", 0, 0, true},
	}
	for _, tt := range tests {
		name, w, h, err := parseFrameSpec(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalid) {
				t.Errorf("parseFrameSpec(%q) error = %v, want ErrInvalid", tt.in, err)
			}
			continue
		}
		if err != nil || name != tt.name || w != tt.w || h != tt.h {
			t.Errorf("parseFrameSpec(%q) = %q %d %d %v", tt.in, name, w, h, err)
		}
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize(" 1200X630 ")
	if err != nil || w != 1200 || h != 630 {
		t.Errorf("got %d %d %v", w, h, err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Story":          "story",
		"X Header (new)": "x-header-new",
		"  ---  ":        "frame",
		"Pinterest Pin!": "pinterest-pin",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNextFamily(t *testing.T) {
	families := []string{"Go", "Go Mono", "Inter"}
	tests := []struct {
		current, want string
	}{
		{"Go", "Go Mono"},
		{"Inter", "Go"},
		{"Missing", "Go"},
	}
	for _, tt := range tests {
		if got := nextFamily(families, tt.current); got != tt.want {
			t.Errorf("nextFamily(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if got := nextFamily(nil, "Go"); got != "Go" {
		t.Errorf("no families: got %q", got)
	}
}
