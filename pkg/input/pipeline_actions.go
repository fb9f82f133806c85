package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
)

// PipelineActionsProcessor handles keys while the pipeline-actions
// popup is open. Enter resolves the cursor to its action, dispatches
// it, and closes the popup.
type PipelineActionsProcessor struct{}

func NewPipelineActionsProcessor() *PipelineActionsProcessor {
	return &PipelineActionsProcessor{}
}

func (p *PipelineActionsProcessor) Apply(msg tea.Msg, w Widgets) []tea.Msg {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "esc", "q":
		return []tea.Msg{event.PipelineActionsClose{}}
	case "up", "k":
		w.MovePipelineActionSelection(-1)
	case "down", "j":
		w.MovePipelineActionSelection(1)
	case "enter", "o":
		out := []tea.Msg{}
		if action, ok := w.SelectedPipelineAction(); ok {
			out = append(out, action)
		}
		return append(out, event.PipelineActionsClose{})
	}
	return nil
}
