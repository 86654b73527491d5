package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"frameup/internal/interact"
	domain "frameup/internal/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	frameFallback = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
)

func (m model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.help && m.mode != ModeStartup {
		return m.helpView()
	}

	rows := max(1, m.height-headerRows-statusRows)
	var body string
	switch m.listMode() {
	case ModeStartup:
		body = m.startupView(rows)
	case ModeFileInput:
		body = m.fileView(rows)
	case ModeFrames:
		body = m.framesView(rows)
	case ModeStyles:
		body = m.stylesView(rows)
	default:
		body = m.editorView(rows)
	}

	line := lipgloss.NewStyle().MaxWidth(m.width)
	return line.Render(headerStyle.Render(m.headerLine())) + "\n" +
		block(body, m.width, rows) + "\n" +
		line.Render(m.statusLine())
}

// listMode is the screen shown under a prompt or confirmation: the one the
// user came from.
func (m model) listMode() Mode {
	switch m.mode {
	case ModePrompt:
		return m.promptReturn
	case ModeConfirm:
		return m.confirmReturn
	}
	return m.mode
}

// block pads or cuts s to exactly w×h cells.
func block(s string, w, h int) string {
	return lipgloss.NewStyle().Width(w).MaxWidth(w).Height(h).MaxHeight(h).Render(s)
}

func (m model) headerLine() string {
	parts := []string{"frameup"}
	if m.session.HasImage() {
		info := m.session.Image()
		t := m.session.Transform()
		parts = append(parts,
			fmt.Sprintf("%s %d×%d %s", info.Name, info.Width, info.Height, humanize.Bytes(uint64(info.Bytes))),
			fmt.Sprintf("zoom %.0f%%", t.Zoom),
			fmt.Sprintf("x %.0f y %.0f", t.X, t.Y),
		)
	}
	if m.exporting {
		parts = append(parts, fmt.Sprintf("exporting %d/%d", m.exportDone, m.exportTotal))
	}
	return " " + strings.Join(parts, " │ ") + " "
}

func (m model) startupView(rows int) string {
	text := strings.Join([]string{
		titleStyle.Render("frameup"),
		"",
		"Place one image and its text in every post format at once.",
		"",
		"  o   pick an image from this directory",
		"  v   open the image path on the clipboard",
		"      or drop an image file onto the terminal",
		"  F   manage frames",
		"  q   quit",
	}, "\n")
	return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, text)
}

func (m model) editorView(rows int) string {
	side := m.config.PreviewWidth
	showSide := m.width-side-sideGap >= minEditCols
	cols := m.width
	if showSide {
		cols = m.width - side - sideGap
	}

	var left string
	lines, _, err := m.editorLines(cols, rows, headerRows)
	if err != nil {
		m.editorCache.valid = false
		msg := "Nothing to show: " + err.Error()
		if len(m.session.Layout().Frames) == 0 {
			msg = "No visible frames. Press F to manage frames."
		}
		left = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, dimStyle.Render(msg))
	} else {
		left = block(strings.Join(lines, "\n"), cols, rows)
	}
	if !showSide {
		return left
	}
	right := lipgloss.NewStyle().PaddingLeft(sideGap).Render(block(m.sidePanel(side, rows), side, rows))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m model) sidePanel(width, rows int) string {
	var out []string

	if id := m.previewFrameID(); id != "" {
		if fl, ok := m.session.Layout().Find(id); ok {
			label := fmt.Sprintf("%s → %d×%d", fl.Frame.Name, fl.Export.Width, fl.Export.Height)
			out = append(out, frameStyle(fl.Frame).Render(label))
		}
		previewRows := max(4, rows/2)
		if lines, err := m.previewLines(id, width, previewRows); err == nil {
			out = append(out, lines...)
		} else {
			out = append(out, dimStyle.Render(err.Error()))
		}
		out = append(out, "")
	}

	out = append(out, titleStyle.Render("Frames"))
	for _, f := range m.session.Frames() {
		mark := "○"
		if f.Visible {
			mark = "●"
		}
		out = append(out, truncate(fmt.Sprintf("%s %s %d×%d", frameStyle(f).Render(mark), f.Name, f.Width, f.Height), width))
	}

	out = append(out, "", titleStyle.Render("Layers"))
	layers := m.session.Layers()
	if len(layers) == 0 {
		out = append(out, dimStyle.Render("t to add text"))
	}
	for _, l := range layers {
		line := truncate(fmt.Sprintf("%d %s · %s %.0fpx", l.ID, firstLine(l.Text), l.VerticalAlign, l.FontSize), width)
		if l.ID == m.selectedLayer {
			line = selectedStyle.Render(line)
		}
		out = append(out, line)
	}
	if p, ok := m.session.Pending(); ok {
		out = append(out, dimStyle.Render(truncate("+ "+firstLine(p.Text), width)))
	}
	return strings.Join(out, "\n")
}

func frameStyle(f domain.Frame) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(domain.HexColor(domain.MustColor(f.Color, frameFallback))))
}

func firstLine(s string) string {
	line, _, more := strings.Cut(s, "\n")
	if more {
		line += " …"
	}
	return fmt.Sprintf("%q", line)
}

// truncate cuts s to width runes, ending in "…" when it was cut.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(max(1, width-1)).Render(s) + "…"
}

func (m model) fileView(rows int) string {
	var out []string
	out = append(out, "Select an image:", strings.Repeat("─", m.width))

	if len(m.fileList) == 0 {
		out = append(out, "(No images found in current directory)")
	} else {
		maxFiles := max(1, rows-4)
		start := 0
		if m.selectedFileIndex >= maxFiles {
			start = m.selectedFileIndex - maxFiles + 1
		}
		end := min(start+maxFiles, len(m.fileList))
		for i := start; i < end; i++ {
			if i == m.selectedFileIndex {
				out = append(out, "> "+m.fileList[i]+" <")
			} else {
				out = append(out, "  "+m.fileList[i])
			}
		}
	}

	out = append(out, strings.Repeat("─", m.width), "Filename: "+m.filename+"█")
	return strings.Join(out, "\n")
}

func (m model) framesView(rows int) string {
	out := []string{"Frames (top to bottom is export order):", strings.Repeat("─", m.width)}
	for i, f := range m.session.Frames() {
		mark := "hidden "
		if f.Visible {
			mark = "visible"
		}
		line := fmt.Sprintf("%s %-3s %-20s %5d×%-5d %s", frameStyle(f).Render("■"), f.ShortName, f.Name, f.Width, f.Height, mark)
		if f.ID == m.previewFrameID() {
			line += "  (preview)"
		}
		if i == m.selectedFrame {
			line = "> " + line
		} else {
			line = "  " + line
		}
		out = append(out, line)
	}
	return strings.Join(out[:min(len(out), rows)], "\n")
}

func (m model) stylesView(rows int) string {
	out := []string{"Saved text styles:", strings.Repeat("─", m.width)}
	styles := m.session.Styles()
	if len(styles) == 0 {
		out = append(out, "(No styles yet. Select a layer and press s to save its style.)")
	}
	for i, st := range styles {
		var flags []string
		if st.Bold {
			flags = append(flags, "bold")
		}
		if st.Italic {
			flags = append(flags, "italic")
		}
		if st.ShowBackground {
			flags = append(flags, "background")
		}
		if st.Shadow.Enabled {
			flags = append(flags, "shadow")
		}
		line := fmt.Sprintf("%-20s %s %.0fpx %s %s", st.Name, st.FontFamily, st.FontSize, st.Color, strings.Join(flags, " "))
		if i == m.selectedStyle {
			line = "> " + line
		} else {
			line = "  " + line
		}
		out = append(out, line)
	}
	return strings.Join(out[:min(len(out), rows)], "\n")
}

func (m model) modeString() string {
	switch m.mode {
	case ModeStartup:
		return "STARTUP"
	case ModeNormal:
		return "NORMAL"
	case ModeTextInput:
		return "TEXT"
	case ModeEditing:
		return "EDIT"
	case ModeFileInput:
		return "FILE"
	case ModePrompt:
		return "PROMPT"
	case ModeFrames:
		return "FRAMES"
	case ModeStyles:
		return "STYLES"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeStartup:
		status = "Press 'o' to pick an image, 'v' to paste a path, or 'q' to quit"
	case ModeTextInput:
		status = fmt.Sprintf("Mode: TEXT | Text: %s | ←/→=move cursor, Enter=newline, Ctrl+S=save, Esc=cancel", m.editText.display())
	case ModeEditing:
		status = fmt.Sprintf("Mode: EDIT | Layer %d | Text: %s | ←/→=move cursor, Enter=newline, Ctrl+S=save, Esc=cancel", m.selectedLayer, m.editText.display())
	case ModeFileInput:
		status = "Mode: FILE | ↑/↓=navigate list, Type=filter or enter a path, Enter=open, Esc=cancel"
	case ModePrompt:
		status = fmt.Sprintf("Mode: PROMPT | %s: %s | Enter=confirm, Esc=cancel", m.promptLabel(), m.prompt.display())
	case ModeFrames:
		status = "Mode: FRAMES | j/k=select, Space=show/hide, J/K=reorder, n=new, s=size, d=delete, Enter=preview, Esc=back"
	case ModeStyles:
		status = "Mode: STYLES | j/k=select, Enter=apply to selected layer, d=delete, Esc=back"
	case ModeConfirm:
		status = fmt.Sprintf("Mode: CONFIRM | %s (y/n)", m.confirmMessage())
		return status
	default:
		status = "Mode: " + m.modeString()
		if m.selectedLayer != 0 {
			status += fmt.Sprintf(" | Layer %d", m.selectedLayer)
		}
		if s := m.session.PointerState(); s != interact.Idle {
			status += " | " + s.String()
		} else if m.hover != interact.NoCorner {
			status += fmt.Sprintf(" | %s handle (%s)", m.hover, m.hover.Cursor())
		}
	}

	if m.successMessage != "" {
		status += " | " + m.successMessage
	}
	if m.errorMessage != "" {
		status += " | ERROR: " + m.errorMessage
	} else if m.successMessage == "" && (m.mode == ModeNormal || m.mode == ModeStartup) {
		status += " | ? for help | q to quit"
	}
	return status
}

func (m model) promptLabel() string {
	switch m.promptPurpose {
	case PromptStyleName:
		return "Style name"
	case PromptNewFrame:
		return "New frame (Name WxH)"
	case PromptFrameSize:
		return "Frame size (WxH)"
	default:
		return "Input"
	}
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmQuit:
		if m.exporting {
			return "An export is running. Quit anyway?"
		}
		return "Quit frameup?"
	case ConfirmNewImage:
		return "Start over with a new image? Text layers will be removed."
	case ConfirmDeleteLayer:
		return fmt.Sprintf("Delete text layer %d?", m.selectedLayer)
	case ConfirmDeleteFrame:
		if f, ok := m.currentFrame(); ok {
			return fmt.Sprintf("Delete frame %s?", f.Name)
		}
		return "Delete this frame?"
	case ConfirmDeleteStyle:
		if styles := m.session.Styles(); m.selectedStyle < len(styles) {
			return fmt.Sprintf("Delete style %q?", styles[m.selectedStyle].Name)
		}
		return "Delete this style?"
	case ConfirmCancelExport:
		return "Cancel the running export?"
	default:
		return "Are you sure?"
	}
}

var helpLines = []string{
	"frameup Help",
	"============",
	"",
	"One image, many post formats. The editor shows every visible frame",
	"centred over the image; the preview shows one frame as it will export.",
	"",
	"Image:",
	"------",
	"  mouse drag       Move the image",
	"  drag a corner    Resize about the opposite corner",
	"  Shift+drag       Resize about the image centre",
	"  wheel            Zoom in/out by 5%",
	"  h/←/j/↓/k/↑/l/→  Move the image 10px",
	"  Shift+h/j/k/l    Move the image 50px",
	"  +/-              Zoom in/out by 5%",
	"  c                Cover every visible frame",
	"  x / y            Centre horizontally / vertically",
	"  r                Reset position and zoom",
	"  Esc              Cancel a drag or resize in progress",
	"",
	"Files:",
	"------",
	"  o                Pick an image from the current directory",
	"  v                Open the image path on the clipboard",
	"                   Dropping a file onto the terminal works too",
	"  n                Start over with a new image",
	"",
	"Text:",
	"-----",
	"  t                Add a text layer (Ctrl+S to place it, Esc to discard)",
	"  e                Edit the selected layer's text",
	"  Tab/Shift+Tab    Select the next/previous layer",
	"  d                Delete the selected layer",
	"  a                Cycle alignment: top, middle, bottom",
	"  [ / ]            Smaller/larger font",
	"  b / i            Toggle bold / italic",
	"  g                Toggle the text background",
	"  w                Toggle the text shadow",
	"  f                Cycle the font family",
	"",
	"Styles:",
	"-------",
	"  s                Save the selected layer's style under a name",
	"  S                List styles; Enter applies one to the selected layer",
	"",
	"Frames:",
	"-------",
	"  F                Manage frames: show/hide, reorder, add, resize, delete",
	"  p                Preview the next visible frame",
	"",
	"Export:",
	"-------",
	"  E                Export every visible frame as PNG (again to cancel)",
	"  Ctrl+E           Export the previewed frame",
	"  Y                Copy the last exported file's path",
	"",
	"General:",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit frameup",
}

func (m model) helpView() string {
	visibleHeight := max(1, m.height-statusRows)

	startLine := min(m.helpScroll, max(0, len(helpLines)-visibleHeight))
	endLine := min(startLine+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[startLine:endLine], "\n")
	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result + "\n" + statusLine
}
