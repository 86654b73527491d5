package model

import (
	"fmt"
	"strings"
)

// TextStyle is a named, reusable set of the stylistic fields of a text
// layer. Text content, layer id and placement are not part of a style.
type TextStyle struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FontFamily      string  `json:"fontFamily"`
	FontSize        float64 `json:"fontSize"`
	LineHeight      float64 `json:"lineHeight"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor"`
	ShowBackground  bool    `json:"showBackground"`
	Padding         float64 `json:"padding"`
	BorderRadius    float64 `json:"borderRadius"`
	Bold            bool    `json:"isBold"`
	Italic          bool    `json:"isItalic"`
	Shadow          Shadow  `json:"shadow"`
}

// StyleFromLayer captures the stylistic fields of l under the given id and name.
func StyleFromLayer(id, name string, l TextLayer) TextStyle {
	return TextStyle{
		ID:              id,
		Name:            name,
		FontFamily:      l.FontFamily,
		FontSize:        l.FontSize,
		LineHeight:      l.LineHeight,
		Color:           l.Color,
		BackgroundColor: l.BackgroundColor,
		ShowBackground:  l.ShowBackground,
		Padding:         l.Padding,
		BorderRadius:    l.BorderRadius,
		Bold:            l.Bold,
		Italic:          l.Italic,
		Shadow:          l.Shadow,
	}
}

// ApplyTo copies the style onto l. Text, id, alignment and edge distance
// are left untouched.
func (s TextStyle) ApplyTo(l TextLayer) TextLayer {
	l.FontFamily = s.FontFamily
	l.FontSize = s.FontSize
	l.LineHeight = s.LineHeight
	l.Color = s.Color
	l.BackgroundColor = s.BackgroundColor
	l.ShowBackground = s.ShowBackground
	l.Padding = s.Padding
	l.BorderRadius = s.BorderRadius
	l.Bold = s.Bold
	l.Italic = s.Italic
	l.Shadow = s.Shadow
	return l
}

// ValidateStyle checks a style by validating it as a layer.
func ValidateStyle(s TextStyle) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("style name is empty: %w", ErrInvalid)
	}
	l := s.ApplyTo(DefaultTextLayer())
	if err := ValidateLayer(l); err != nil {
		return fmt.Errorf("style %q: %w", s.Name, err)
	}
	return nil
}
