// Package input routes keystrokes through a stack of modal processors.
// The bottom of the stack is the normal-mode processor; opening a popup
// pushes the matching processor and closing it pops. Only the top of
// the stack sees keys.
package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
)

// Widgets is the slice of widget state the processors steer directly:
// list cursors and the config popup's text fields. Everything else
// happens through returned events.
type Widgets interface {
	// FilterInputActive reports whether the filter input owns the
	// keyboard in normal mode.
	FilterInputActive() bool
	// MovePipelineSelection moves the details popup's pipeline cursor.
	MovePipelineSelection(delta int)
	// MovePipelineActionSelection moves the actions popup's cursor.
	MovePipelineActionSelection(delta int)
	// SelectedPipelineAction resolves the actions popup's cursor to the
	// event it stands for.
	SelectedPipelineAction() (tea.Msg, bool)
	// ConfigFieldNext and ConfigFieldPrev cycle the config popup's
	// input fields.
	ConfigFieldNext()
	ConfigFieldPrev()
	// ConfigHandleKey forwards a key to the focused config text field.
	ConfigHandleKey(msg tea.KeyMsg)
}

// Processor handles events while it is on top of the stack.
type Processor interface {
	Apply(msg tea.Msg, w Widgets) []tea.Msg
}

// Multiplexer dispatches events to the processor stack.
type Multiplexer struct {
	stack []Processor
}

// NewMultiplexer returns a stack holding only the normal processor.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{stack: []Processor{NewNormalProcessor()}}
}

// Apply adjusts the stack for popup open/close events and hands the
// event to the top processor.
func (m *Multiplexer) Apply(msg tea.Msg, w Widgets) []tea.Msg {
	switch e := msg.(type) {
	case event.ProjectDetailsOpen:
		m.push(NewProjectDetailsProcessor(e.Project))
	case event.ProjectDetailsClose:
		m.pop()
	case event.PipelineActionsOpen:
		m.push(NewPipelineActionsProcessor())
	case event.PipelineActionsClose:
		m.pop()
	case event.ConfigOpen:
		m.push(NewConfigProcessor())
	case event.ConfigClose:
		m.pop()
	}

	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1].Apply(msg, w)
}

// Depth returns the number of processors on the stack.
func (m *Multiplexer) Depth() int { return len(m.stack) }

func (m *Multiplexer) push(p Processor) {
	m.stack = append(m.stack, p)
}

// pop never removes the normal processor at the bottom.
func (m *Multiplexer) pop() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}
