package ui

import (
	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// ProjectDetailsState backs the project details popup. It holds an
// immutable snapshot of the project, replaced whenever the store
// publishes a fresh one.
type ProjectDetailsState struct {
	Project domain.Project
	cursor  int
}

func NewProjectDetailsState(project domain.Project) *ProjectDetailsState {
	return &ProjectDetailsState{Project: project}
}

// withProject carries the cursor over to a fresh snapshot.
func (s *ProjectDetailsState) withProject(project domain.Project) *ProjectDetailsState {
	next := &ProjectDetailsState{Project: project, cursor: s.cursor}
	next.clamp()
	return next
}

// Cursor returns the selected row in the recent pipelines list.
func (s *ProjectDetailsState) Cursor() int { return s.cursor }

// SelectedPipeline returns the pipeline under the cursor, or nil when
// the project has none.
func (s *ProjectDetailsState) SelectedPipeline() *domain.Pipeline {
	recent := s.Project.RecentPipelines()
	if len(recent) == 0 {
		return nil
	}
	return recent[s.cursor]
}

// move shifts the cursor by delta, wrapping around, and reports the
// newly selected pipeline id.
func (s *ProjectDetailsState) move(delta int) (id.PipelineID, bool) {
	recent := s.Project.RecentPipelines()
	if len(recent) == 0 {
		return 0, false
	}
	s.cursor = modulo(s.cursor+delta, len(recent))
	return recent[s.cursor].ID, true
}

func (s *ProjectDetailsState) clamp() {
	if n := len(s.Project.RecentPipelines()); s.cursor >= n {
		s.cursor = 0
	}
}

// modulo is the arithmetic modulo, non-negative for negative a.
func modulo(a, n int) int {
	return ((a % n) + n) % n
}
