package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// CaptureText flattens a rendered frame to plain text for the
// clipboard: escape sequences stripped, trailing spaces trimmed.
func CaptureText(frame string) string {
	lines := strings.Split(ansi.Strip(frame), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
