package main

import (
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
		if output, err := exec.Command("pbpaste").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// cleanClipboardText strips RTF markup and control characters from pasted
// text and normalises line endings to LF.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	text = stripRTF(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r == '\n' || r >= 32 {
			return r
		}
		return -1
	}, text)
}

func stripRTF(text string) string {
	if !strings.HasPrefix(text, "{\\rtf") {
		return text
	}
	var result strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '{', '}':
		case '\\':
			if i+1 >= len(runes) {
				continue
			}
			next := runes[i+1]
			if next == '\\' || next == '{' || next == '}' {
				result.WriteRune(next)
				i++
				continue
			}
			// Skip the control word and its optional numeric argument.
			j := i + 1
			for j < len(runes) && (isASCIILetter(runes[j]) || runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
				j++
			}
			word := string(runes[i+1 : j])
			if word == "par" || word == "line" {
				result.WriteByte('\n')
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			i = j - 1
		default:
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// cleanPastedPath turns a pasted or dropped file reference into a plain
// path: surrounding quotes, file:// URLs and shell-escaped spaces are
// undone. Only the first line is used.
func cleanPastedPath(text string) string {
	s := strings.TrimSpace(text)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			return u.Path
		}
	}
	return strings.ReplaceAll(s, `\ `, " ")
}
