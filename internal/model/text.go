package model

import (
	"fmt"
	"strings"
)

// VerticalAlign places a text block against the top or bottom edge of a
// frame, or centres it.
type VerticalAlign string

const (
	AlignTop    VerticalAlign = "top"
	AlignMiddle VerticalAlign = "middle"
	AlignBottom VerticalAlign = "bottom"
)

// Valid reports whether a is one of the known alignments.
func (a VerticalAlign) Valid() bool {
	switch a {
	case AlignTop, AlignMiddle, AlignBottom:
		return true
	}
	return false
}

// Next cycles top → middle → bottom → top.
func (a VerticalAlign) Next() VerticalAlign {
	switch a {
	case AlignTop:
		return AlignMiddle
	case AlignMiddle:
		return AlignBottom
	default:
		return AlignTop
	}
}

const (
	MinFontSize     = 12
	MaxFontSize     = 200
	MinShadowValue  = -50
	MaxShadowValue  = 50
	DefaultFont     = "Go"
	DefaultFontSize = 48
)

// Shadow is a drop shadow applied to glyphs.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

func DefaultShadow() Shadow {
	return Shadow{Enabled: false, Color: "#000000", Blur: 4, OffsetX: 2, OffsetY: 2}
}

// TextLayer is one styled, horizontally centred text overlay. It is drawn
// into every frame at the same relative placement.
type TextLayer struct {
	ID               int           `json:"id"`
	Text             string        `json:"text"`
	FontFamily       string        `json:"fontFamily"`
	FontSize         float64       `json:"fontSize"`
	LineHeight       float64       `json:"lineHeight"`
	Color            string        `json:"color"`
	BackgroundColor  string        `json:"backgroundColor"`
	ShowBackground   bool          `json:"showBackground"`
	Padding          float64       `json:"padding"`
	BorderRadius     float64       `json:"borderRadius"`
	Bold             bool          `json:"isBold"`
	Italic           bool          `json:"isItalic"`
	VerticalAlign    VerticalAlign `json:"verticalAlign"`
	DistanceFromEdge float64       `json:"distanceFromEdge"`
	Shadow           Shadow        `json:"shadow"`
}

// DefaultTextLayer returns a layer carrying the default style and no text.
func DefaultTextLayer() TextLayer {
	return TextLayer{
		FontFamily:       DefaultFont,
		FontSize:         DefaultFontSize,
		LineHeight:       1.2,
		Color:            "#ffffff",
		BackgroundColor:  "#000000",
		ShowBackground:   true,
		Padding:          10,
		BorderRadius:     8,
		VerticalAlign:    AlignMiddle,
		DistanceFromEdge: 20,
		Shadow:           DefaultShadow(),
	}
}

// Lines splits the layer text into display lines. CRLF is treated as LF.
func (l TextLayer) Lines() []string {
	return strings.Split(strings.ReplaceAll(l.Text, "\r\n", "\n"), "\n")
}

// Blank reports whether the layer has nothing to draw.
func (l TextLayer) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// ValidateLayer checks font size, shadow bounds, alignment and colours.
// Text content is not checked; blank layers are simply not drawn.
func ValidateLayer(l TextLayer) error {
	if l.FontSize < MinFontSize || l.FontSize > MaxFontSize {
		return fmt.Errorf("layer %d: font size %g outside [%d, %d]: %w", l.ID, l.FontSize, MinFontSize, MaxFontSize, ErrInvalid)
	}
	if l.LineHeight <= 0 {
		return fmt.Errorf("layer %d: line height must be positive: %w", l.ID, ErrInvalid)
	}
	if l.Padding < 0 || l.BorderRadius < 0 || l.DistanceFromEdge < 0 {
		return fmt.Errorf("layer %d: padding, radius and distance must not be negative: %w", l.ID, ErrInvalid)
	}
	if !l.VerticalAlign.Valid() {
		return fmt.Errorf("layer %d: unknown vertical alignment %q: %w", l.ID, l.VerticalAlign, ErrInvalid)
	}
	if err := ValidateShadow(l.Shadow); err != nil {
		return fmt.Errorf("layer %d: %w", l.ID, err)
	}
	for _, c := range []string{l.Color, l.BackgroundColor} {
		if _, err := ParseColor(c); err != nil {
			return fmt.Errorf("layer %d: %w", l.ID, err)
		}
	}
	return nil
}

// ValidateShadow checks blur and offsets against [MinShadowValue, MaxShadowValue].
func ValidateShadow(s Shadow) error {
	for name, v := range map[string]float64{"blur": s.Blur, "offsetX": s.OffsetX, "offsetY": s.OffsetY} {
		if v < MinShadowValue || v > MaxShadowValue {
			return fmt.Errorf("shadow %s %g outside [%d, %d]: %w", name, v, MinShadowValue, MaxShadowValue, ErrInvalid)
		}
	}
	if _, err := ParseColor(s.Color); err != nil {
		return fmt.Errorf("shadow: %w", err)
	}
	return nil
}

// ClampLayer pulls numeric fields back inside their allowed ranges.
func ClampLayer(l TextLayer) TextLayer {
	l.FontSize = Clamp(l.FontSize, MinFontSize, MaxFontSize)
	l.Shadow.Blur = Clamp(l.Shadow.Blur, MinShadowValue, MaxShadowValue)
	l.Shadow.OffsetX = Clamp(l.Shadow.OffsetX, MinShadowValue, MaxShadowValue)
	l.Shadow.OffsetY = Clamp(l.Shadow.OffsetY, MinShadowValue, MaxShadowValue)
	if l.Padding < 0 {
		l.Padding = 0
	}
	if l.BorderRadius < 0 {
		l.BorderRadius = 0
	}
	if l.DistanceFromEdge < 0 {
		l.DistanceFromEdge = 0
	}
	if l.LineHeight <= 0 {
		l.LineHeight = 1.2
	}
	return l
}
