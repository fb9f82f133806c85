package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayCenter composites fg on top of bg, centered. Both strings are
// multi-line renders; bg is assumed to fill the full width and height.
func overlayCenter(bg, fg string, width, height int) string {
	fgLines := strings.Split(fg, "\n")
	fgWidth := 0
	for _, line := range fgLines {
		if w := ansi.StringWidth(line); w > fgWidth {
			fgWidth = w
		}
	}

	x := (width - fgWidth) / 2
	y := (height - len(fgLines)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return overlayAt(bg, fgLines, fgWidth, x, y)
}

// overlayAt blits fgLines into bg at column x, row y, preserving the
// background's styling on either side of the overlay.
func overlayAt(bg string, fgLines []string, fgWidth, x, y int) string {
	bgLines := strings.Split(bg, "\n")

	for i, fgLine := range fgLines {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bgLine := bgLines[row]

		left := ansi.Truncate(bgLine, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}

		line := fgLine
		if pad := fgWidth - ansi.StringWidth(fgLine); pad > 0 {
			line += strings.Repeat(" ", pad)
		}

		right := ansi.TruncateLeft(bgLine, x+fgWidth, "")
		bgLines[row] = left + line + right
	}

	return strings.Join(bgLines, "\n")
}
