package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// box wraps content in a rounded border with a title in the top edge
// and an optional hint line in the bottom edge. Width and height are
// the outer dimensions; interior lines are truncated or padded to fit.
func box(title, bottom, content string, width, height int, focused bool) string {
	if width < 2 || height < 2 {
		return ""
	}

	border := styleBorder
	if focused {
		border = styleBorderFocus
	}

	innerW := width - 2
	innerH := height - 2

	var b strings.Builder
	b.WriteString(border.Render("╭"))
	b.WriteString(edge(title, styleTitle.Render, border.Render, innerW))
	b.WriteString(border.Render("╮"))
	b.WriteByte('\n')

	lines := strings.Split(content, "\n")
	for i := 0; i < innerH; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		line = ansi.Truncate(line, innerW, "")
		if pad := innerW - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString(border.Render("│"))
		b.WriteString(line)
		b.WriteString(border.Render("│"))
		b.WriteByte('\n')
	}

	b.WriteString(border.Render("╰"))
	b.WriteString(edge(bottom, styleDim.Render, border.Render, innerW))
	b.WriteString(border.Render("╯"))
	return b.String()
}

// edge builds one horizontal border edge with label embedded near the
// left corner.
func edge(label string, labelStyle, borderStyle func(...string) string, width int) string {
	if label != "" {
		label = ansi.Truncate(label, width-2, "")
	}
	labelW := ansi.StringWidth(label)

	var b strings.Builder
	b.WriteString(borderStyle("─"))
	if label != "" {
		b.WriteString(labelStyle(label))
	}
	fill := width - 1 - labelW
	if fill > 0 {
		b.WriteString(borderStyle(strings.Repeat("─", fill)))
	}
	return b.String()
}
