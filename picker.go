package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	tea "github.com/charmbracelet/bubbletea"

	"frameup/internal/editor"
	domain "frameup/internal/model"
)

const maxPickerFiles = 500

var errPickerFull = errors.New("picker full")

// scanImages lists image files under root, relative to it and sorted. At
// most limit files are returned.
func scanImages(root string, limit int) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range imagePatterns {
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if d.IsDir() || seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, path)
			if len(files) >= limit {
				return errPickerFull
			}
			return nil
		})
		if errors.Is(err, errPickerFull) {
			break
		}
		if err != nil {
			return files, fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// filterFiles keeps the files whose path contains query, ignoring case.
func filterFiles(files []string, query string) []string {
	if query == "" {
		return files
	}
	q := strings.ToLower(query)
	var out []string
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), q) {
			out = append(out, f)
		}
	}
	return out
}

// isImagePath reports whether path has an extension the decoder accepts.
func isImagePath(path string) bool {
	ok, err := doublestar.Match("*.{png,jpg,jpeg,gif,webp}", strings.ToLower(filepath.Base(path)))
	return err == nil && ok
}

func (m *model) openPicker() {
	root, err := os.Getwd()
	if err != nil {
		m.report(err)
		return
	}
	files, err := scanImages(root, maxPickerFiles)
	if err != nil {
		m.logger.Warn("image scan incomplete", "root", root, "error", err)
	}
	m.pickerFiles = files
	m.filename = ""
	m.refilter()
	m.mode = ModeFileInput
}

func (m *model) refilter() {
	m.fileList = filterFiles(m.pickerFiles, m.filename)
	if len(m.fileList) == 0 {
		m.selectedFileIndex = -1
	} else {
		m.selectedFileIndex = 0
	}
}

func (m *model) handleFileKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = m.homeMode()
		m.errorMessage = ""
		return nil
	case "enter":
		return m.openPath(m.pickedPath())
	case "up", "ctrl+p":
		if m.selectedFileIndex > 0 {
			m.selectedFileIndex--
		}
		return nil
	case "down", "ctrl+n":
		if m.selectedFileIndex < len(m.fileList)-1 {
			m.selectedFileIndex++
		}
		return nil
	case "backspace":
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	case "ctrl+v":
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = "clipboard: " + err.Error()
			return nil
		}
		m.filename += cleanPastedPath(text)
	default:
		switch msg.Type {
		case tea.KeyRunes:
			if msg.Paste {
				m.filename = cleanPastedPath(string(msg.Runes))
			} else {
				m.filename += string(msg.Runes)
			}
		case tea.KeySpace:
			m.filename += " "
		default:
			return nil
		}
	}
	m.errorMessage = ""
	m.refilter()
	return nil
}

// pickedPath is the typed name when it names an existing file, otherwise the
// highlighted match.
func (m *model) pickedPath() string {
	if m.filename != "" {
		if p, err := absPath(m.filename); err == nil {
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	if m.selectedFileIndex >= 0 && m.selectedFileIndex < len(m.fileList) {
		return m.fileList[m.selectedFileIndex]
	}
	return m.filename
}

// openPath starts decoding the image at path in the background.
func (m *model) openPath(path string) tea.Cmd {
	if path == "" {
		m.errorMessage = "no file given"
		return nil
	}
	abs, err := absPath(path)
	if err != nil {
		m.report(err)
		return nil
	}
	if !isImagePath(abs) {
		m.report(fmt.Errorf("%s is not a PNG, JPEG, GIF or WebP file: %w", filepath.Base(abs), domain.ErrInvalid))
		return nil
	}
	m.errorMessage = ""
	m.successMessage = fmt.Sprintf("Loading %s…", filepath.Base(abs))
	return decodeImageCmd(abs)
}

func (m *model) pasteImagePath() tea.Cmd {
	text, err := readClipboardText()
	if err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return nil
	}
	return m.openPath(cleanPastedPath(text))
}

func decodeImageCmd(path string) tea.Cmd {
	return func() tea.Msg {
		info := editor.ImageInfo{Path: path, Name: filepath.Base(path)}
		img, size, err := editor.DecodeFile(path)
		info.Bytes = size
		return imageDecodedMsg{img: img, info: info, err: err}
	}
}
