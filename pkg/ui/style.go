package ui

import "github.com/charmbracelet/lipgloss"

// interface palette
const (
	colorBorder = "#6B7280"
	colorFocus  = "#7C3AED"
	colorAccent = "#A78BFA"
	colorDim    = "#9CA3AF"
	colorError  = "#EF4444"
	colorOK     = "#34D399"
	colorWarn   = "#FBBF24"
)

var (
	styleBorder      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBorder))
	styleBorderFocus = lipgloss.NewStyle().Foreground(lipgloss.Color(colorFocus))
	styleTitle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	styleDim         = lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim))
	styleError       = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))
	styleAccent      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))
	styleOK          = lipgloss.NewStyle().Foreground(lipgloss.Color(colorOK))
	styleWarn        = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarn))
	styleSelected    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorFocus))
	styleName        = lipgloss.NewStyle().Bold(true)

	styleNotifyInfo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)
	styleNotifyError = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#111827")).
				Background(lipgloss.Color(colorError)).
				Padding(0, 1)
)
