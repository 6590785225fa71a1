package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// visibleWidth is the cell width of s ignoring escape sequences.
func visibleWidth(s string) int {
	return ansi.StringWidth(s)
}

// truncateLine cuts a styled line to width cells.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// truncatePlain cuts unstyled text to width cells.
func truncatePlain(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx]) + " …"
	}
	return s
}

// bufferStats reports lines and user-perceived characters in code.
func bufferStats(code string) string {
	lines := 0
	if code != "" {
		lines = strings.Count(code, "\n") + 1
		if strings.HasSuffix(code, "\n") {
			lines--
		}
	}
	return fmt.Sprintf("%dL %dC", lines, uniseg.GraphemeClusterCount(code))
}
