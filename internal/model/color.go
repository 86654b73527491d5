package model

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Transparent is the colour keyword that disables a fill.
const Transparent = "transparent"

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa and the keyword "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Transparent) {
		return color.NRGBA{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, ErrInvalid)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, ErrInvalid)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustColor parses s and falls back to fallback when s is malformed.
func MustColor(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// IsTransparent reports whether s resolves to a fully transparent colour.
// Unparseable values count as transparent so that nothing is drawn for them.
func IsTransparent(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	c, err := ParseColor(s)
	return err != nil || c.A == 0
}

// HexColor formats c as #rrggbb, dropping alpha.
func HexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Clamped().Hex()
}
