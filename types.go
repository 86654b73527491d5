package main

import (
	"context"
	"image"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"frameup/internal/compositor"
	"frameup/internal/editor"
	"frameup/internal/export"
	"frameup/internal/fonts"
	"frameup/internal/interact"
	"frameup/internal/store"
)

type model struct {
	width  int
	height int

	mode       Mode
	help       bool
	helpScroll int

	config   *Config
	logger   *slog.Logger
	session  *editor.Session
	fonts    *fonts.Registry
	comp     *compositor.Compositor
	pipeline *export.Pipeline
	store    *store.Store
	watcher  *store.Watcher

	savedConfigRev uint64

	// Caches are shared between copies of the model, so renders done in
	// View survive into the next Update.
	editorCache  *canvasCache
	previewCache *canvasCache
	// gesture is the cell mapping frozen when a pointer gesture starts.
	gesture *cellMapping
	hover   interact.Corner

	selectedLayer int
	previewFrame  string

	editText         textInput
	originalEditText string

	initialImage      string
	filename          string
	pickerFiles       []string
	fileList          []string
	selectedFileIndex int

	prompt        textInput
	promptPurpose PromptPurpose
	promptReturn  Mode

	selectedFrame int
	selectedStyle int

	confirmAction ConfirmAction
	confirmReturn Mode

	exporting     bool
	exportUpdates <-chan tea.Msg
	cancelExport  context.CancelFunc
	exportTotal   int
	exportDone    int
	lastExport    string

	errorMessage   string
	successMessage string
}

// canvasCache keeps the last half-block rendering of a surface.
type canvasCache struct {
	revision uint64
	cols     int
	rows     int
	frame    string
	lines    []string
	mapping  cellMapping
	valid    bool
}

// textInput is a rune buffer with a cursor.
type textInput struct {
	runes  []rune
	cursor int
}

func newTextInput(s string) textInput {
	r := []rune(s)
	return textInput{runes: r, cursor: len(r)}
}

func (t textInput) String() string { return string(t.runes) }

func (t *textInput) insert(s string) {
	r := []rune(s)
	t.runes = append(t.runes[:t.cursor], append(r, t.runes[t.cursor:]...)...)
	t.cursor += len(r)
}

func (t *textInput) backspace() {
	if t.cursor == 0 {
		return
	}
	t.runes = append(t.runes[:t.cursor-1], t.runes[t.cursor:]...)
	t.cursor--
}

func (t *textInput) deleteForward() {
	if t.cursor >= len(t.runes) {
		return
	}
	t.runes = append(t.runes[:t.cursor], t.runes[t.cursor+1:]...)
}

func (t *textInput) left() {
	if t.cursor > 0 {
		t.cursor--
	}
}

func (t *textInput) right() {
	if t.cursor < len(t.runes) {
		t.cursor++
	}
}

// display renders the input on one line with a block cursor over the
// character at the cursor position.
func (t textInput) display() string {
	r := make([]rune, 0, len(t.runes)+1)
	for _, c := range t.runes {
		if c == '\n' {
			c = '↵'
		}
		r = append(r, c)
	}
	if t.cursor >= len(r) {
		return string(r) + "█"
	}
	r[t.cursor] = '█'
	return string(r)
}

// Messages delivered to Update.
type (
	exportProgressMsg struct {
		result export.Result
	}
	exportDoneMsg struct {
		results []export.Result
		err     error
	}
	storeChangedMsg  struct{}
	storeReloadedMsg struct {
		doc     store.Document
		changed bool
		err     error
	}
	savedMsg struct {
		err error
	}
	imageDecodedMsg struct {
		img  image.Image
		info editor.ImageInfo
		err  error
	}
)
