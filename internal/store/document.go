// Package store persists the composer's reusable configuration: the frame
// list and the named text styles. The image and its transform are never
// stored.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"frameup/internal/model"
)

// CurrentVersion is the document version this build writes.
const CurrentVersion = 1

// Document is the persisted configuration.
type Document struct {
	Version int               `json:"version"`
	Frames  []model.Frame     `json:"platforms"`
	Styles  []model.TextStyle `json:"textStyles"`
}

// Default is the document used when nothing has been stored yet.
func Default() Document {
	return Document{
		Version: CurrentVersion,
		Frames:  model.DefaultFrames(),
		Styles:  []model.TextStyle{},
	}
}

// Encode serialises doc as indented JSON at the current version.
func Encode(doc Document) ([]byte, error) {
	doc.Version = CurrentVersion
	if doc.Frames == nil {
		doc.Frames = []model.Frame{}
	}
	if doc.Styles == nil {
		doc.Styles = []model.TextStyle{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

type rawDocument struct {
	Version *int `json:"version"`
	// Frames is the older name of the frame list.
	Frames    json.RawMessage `json:"frames"`
	Platforms json.RawMessage `json:"platforms"`
	Styles    json.RawMessage `json:"textStyles"`
}

// Decode reads a stored document. Missing fields take their defaults one by
// one, a malformed frame or style is dropped on its own, and data that is
// not a JSON object yields the default document. Every repair is reported
// as a warning.
func Decode(data []byte) (Document, []string) {
	doc := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc, []string{fmt.Sprintf("document is not valid JSON, using defaults: %v", err)}
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if raw.Version != nil && *raw.Version > CurrentVersion {
		warn("document version %d is newer than %d, unknown fields are ignored", *raw.Version, CurrentVersion)
	}

	frames := raw.Platforms
	if isAbsent(frames) {
		frames = raw.Frames
	}
	if !isAbsent(frames) {
		if fs, ok := decodeFrames(frames, warn); ok {
			doc.Frames = fs
		}
	}
	if !isAbsent(raw.Styles) {
		if ss, ok := decodeStyles(raw.Styles, warn); ok {
			doc.Styles = ss
		}
	}
	return doc, warnings
}

func isAbsent(m json.RawMessage) bool {
	return len(m) == 0 || string(m) == "null"
}

func decodeFrames(data json.RawMessage, warn func(string, ...any)) ([]model.Frame, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		warn("platforms is not a list, using default frames: %v", err)
		return nil, false
	}

	out := make([]model.Frame, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		f := model.Frame{
			Color:   model.FramePalette[i%len(model.FramePalette)],
			Visible: true,
		}
		if err := json.Unmarshal(item, &f); err != nil {
			warn("dropping platform %d: %v", i, err)
			continue
		}
		if f.Name == "" {
			f.Name = f.ID
		}
		if f.ShortName == "" {
			f.ShortName = shortName(f.Name)
		}
		if err := model.ValidateFrame(f); err != nil {
			warn("dropping platform %d: %v", i, err)
			continue
		}
		if seen[f.ID] {
			warn("dropping platform %d: duplicate id %q", i, f.ID)
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out, true
}

func decodeStyles(data json.RawMessage, warn func(string, ...any)) ([]model.TextStyle, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		warn("textStyles is not a list, ignoring stored styles: %v", err)
		return nil, false
	}

	out := make([]model.TextStyle, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		s := model.StyleFromLayer("", "", model.DefaultTextLayer())
		if err := json.Unmarshal(item, &s); err != nil {
			warn("dropping text style %d: %v", i, err)
			continue
		}
		if s.ID == "" || seen[s.ID] {
			s.ID = uuid.NewString()
		}
		if err := model.ValidateStyle(s); err != nil {
			warn("dropping text style %d: %v", i, err)
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out, true
}

// shortName derives a two letter badge from a frame name.
func shortName(name string) string {
	r := []rune(strings.ToUpper(strings.TrimSpace(name)))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}
