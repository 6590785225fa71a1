package ui

import (
	"fmt"
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"
)

// changeSummary describes what a format pass changed in the buffer.
func changeSummary(before, after string) string {
	if before == after {
		return "Already formatted"
	}
	diff := udiff.Unified("before", "after", before, after)
	added, removed := 0, 0
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return fmt.Sprintf("Formatted: +%d -%d lines", added, removed)
}
