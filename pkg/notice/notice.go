// Package notice queues user-visible notifications. Errors always
// drain before informational messages, so an info notice is never shown
// while an error waits.
package notice

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
)

// Level classifies a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is one user-visible message.
type Notice struct {
	Level   Level
	Message string
}

// Service collects notices from events and hands them out one at a
// time.
type Service struct {
	info       []Notice
	errors     []Notice
	mostRecent *Notice
}

// NewService returns an empty notice queue.
func NewService() *Service {
	return &Service{}
}

// Apply inspects an event and queues a notice when it warrants one.
func (s *Service) Apply(msg tea.Msg) {
	switch m := msg.(type) {
	case event.AppError:
		s.Push(LevelError, m.Err.Error())
	case event.JobLogDownloaded:
		s.Push(LevelInfo, "Job log downloaded")
	case event.ScreenCaptureDone:
		s.Push(LevelInfo, "Screen captured")
	}
}

// Push queues a notice at the given level.
func (s *Service) Push(level Level, message string) {
	n := Notice{Level: level, Message: message}
	if level == LevelError {
		s.errors = append(s.errors, n)
		return
	}
	s.info = append(s.info, n)
}

// Pop returns the next notice to display, errors first, and records it
// as the most recent. Nil when both queues are empty.
func (s *Service) Pop() *Notice {
	var n Notice
	switch {
	case len(s.errors) > 0:
		n, s.errors = s.errors[0], s.errors[1:]
	case len(s.info) > 0:
		n, s.info = s.info[0], s.info[1:]
	default:
		return nil
	}
	s.mostRecent = &n
	return &n
}

// HasError reports whether any error notice is still queued.
func (s *Service) HasError() bool {
	return len(s.errors) > 0
}

// MostRecent returns the last notice handed out by Pop, for replay via
// the notification-recall key. Nil before the first Pop.
func (s *Service) MostRecent() *Notice {
	return s.mostRecent
}
