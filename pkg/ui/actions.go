package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// PipelineActionsState backs the pipeline actions popup. Each action
// is the message dispatched when the row is chosen; the label is what
// the popup shows for it.
type PipelineActionsState struct {
	Project  id.ProjectID
	Pipeline id.PipelineID

	actions []tea.Msg
	labels  []string
	cursor  int
}

// NewPipelineActionsState derives the action list from the pipeline:
// a failed job adds a browse-to-job row and a log download row.
func NewPipelineActionsState(project *domain.Project, pipelineID id.PipelineID) *PipelineActionsState {
	s := &PipelineActionsState{Project: project.ID, Pipeline: pipelineID}

	if pipeline := project.Pipeline(pipelineID); pipeline != nil {
		if job := pipeline.FailedJob(); job != nil {
			s.add("browse to failed job", event.JobOpenURL{
				Project:  project.ID,
				Pipeline: pipelineID,
				Job:      job.ID,
			})
		}
	}

	s.add("browse to pipeline", event.PipelineOpenURL{Project: project.ID, Pipeline: pipelineID})
	s.add("browse to project", event.ProjectOpenURL{Project: project.ID})

	if pipeline := project.Pipeline(pipelineID); pipeline != nil && pipeline.FailedJob() != nil {
		s.add("download failed job log to clipboard", event.JobLogErrorDownload{
			Project:  project.ID,
			Pipeline: pipelineID,
		})
	}

	return s
}

func (s *PipelineActionsState) add(label string, msg tea.Msg) {
	s.labels = append(s.labels, label)
	s.actions = append(s.actions, msg)
}

// Labels returns the rows in display order.
func (s *PipelineActionsState) Labels() []string { return s.labels }

// Cursor returns the selected row index.
func (s *PipelineActionsState) Cursor() int { return s.cursor }

func (s *PipelineActionsState) move(delta int) {
	if len(s.actions) == 0 {
		return
	}
	s.cursor = modulo(s.cursor+delta, len(s.actions))
}

func (s *PipelineActionsState) selected() (tea.Msg, bool) {
	if len(s.actions) == 0 {
		return nil, false
	}
	return s.actions[s.cursor], true
}
