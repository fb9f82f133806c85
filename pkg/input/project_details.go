package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// ProjectDetailsProcessor handles keys while the project-details popup
// is open. It tracks the pipeline the cursor rests on.
type ProjectDetailsProcessor struct {
	project     id.ProjectID
	selected    id.PipelineID
	hasSelected bool
}

func NewProjectDetailsProcessor(project id.ProjectID) *ProjectDetailsProcessor {
	return &ProjectDetailsProcessor{project: project}
}

func (p *ProjectDetailsProcessor) Apply(msg tea.Msg, w Widgets) []tea.Msg {
	switch m := msg.(type) {
	case event.PipelineSelected:
		p.selected = m.Pipeline
		p.hasSelected = true
	case tea.KeyMsg:
		return p.key(m, w)
	}
	return nil
}

func (p *ProjectDetailsProcessor) key(msg tea.KeyMsg, w Widgets) []tea.Msg {
	switch msg.String() {
	case "esc", "q":
		return []tea.Msg{event.ProjectDetailsClose{}}
	case "up", "k":
		w.MovePipelineSelection(-1)
	case "down", "j":
		w.MovePipelineSelection(1)
	case "enter", "o":
		if p.hasSelected {
			return []tea.Msg{event.PipelineActionsOpen{
				Project:  p.project,
				Pipeline: p.selected,
			}}
		}
	}
	return nil
}
