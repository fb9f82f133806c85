package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
)

const (
	logCap  = 200
	logDrop = 150
)

// logLine is one entry in the internal logs overlay.
type logLine struct {
	At      time.Time
	Message string
}

// internalLogs keeps a bounded trail of human-readable event
// descriptions. When the trail outgrows its cap, the oldest chunk is
// dropped in one go rather than line by line.
type internalLogs struct {
	lines []logLine
}

func newInternalLogs() *internalLogs {
	return &internalLogs{}
}

func (l *internalLogs) apply(msg tea.Msg) {
	text := event.Describe(msg)
	if text == "" {
		return
	}
	l.lines = append(l.lines, logLine{At: time.Now(), Message: text})

	if len(l.lines) > logCap {
		l.lines = append([]logLine(nil), l.lines[logDrop:]...)
	}
}

func (l *internalLogs) all() []logLine {
	return l.lines
}
