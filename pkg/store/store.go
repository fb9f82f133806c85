// Package store owns the collection of projects. All domain mutation
// happens here, driven by events; derived fetch requests and snapshots
// are returned to the caller for dispatch rather than sent directly,
// which keeps the store free of I/O.
package store

import (
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// recentActivityWindow bounds how old a project's last activity may be
// before its pipelines stop loading eagerly on first sight.
const recentActivityWindow = 7 * 24 * time.Hour

// ProjectStore holds every known project plus a cached ordering by
// descending last activity.
type ProjectStore struct {
	projects []domain.Project
	index    map[id.ProjectID]int
	sorted   []domain.Project

	// now is swappable for tests.
	now func() time.Time
}

// NewProjectStore returns an empty store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		index: make(map[id.ProjectID]int),
		now:   time.Now,
	}
}

// Apply reconciles one event into the store and returns the events it
// derives: fetch requests, selections, and project snapshots.
func (s *ProjectStore) Apply(msg tea.Msg) []tea.Msg {
	switch m := msg.(type) {
	case event.ProjectsLoaded:
		return s.applyProjects(m.Projects)
	case event.PipelinesLoaded:
		return s.applyPipelines(m.Pipelines)
	case event.JobsLoaded:
		return s.applyJobs(m)
	case event.ProjectSelected:
		return s.applySelection(m.Project)
	case event.ProjectDetailsOpen:
		return s.applyDetailsOpen(m.Project)
	case event.JobsActiveFetch:
		return s.applyActiveFetch()
	}
	return nil
}

// applyProjects merges a batch of freshly listed projects. New projects
// with recent activity begin loading pipelines immediately; existing
// projects refresh their scalar fields and re-request pipelines. The
// first batch ever also selects the top project.
func (s *ProjectStore) applyProjects(projects []domain.Project) []tea.Msg {
	firstBatch := len(s.sorted) == 0

	var out []tea.Msg
	for _, p := range projects {
		out = append(out, s.syncProject(p)...)
		out = append(out, event.ProjectUpdated{Project: p})
	}

	s.rebuildSorted()
	if firstBatch && len(s.sorted) > 0 {
		out = append(out, event.ProjectSelected{Project: s.sorted[0].ID})
	}
	return out
}

func (s *ProjectStore) syncProject(p domain.Project) []tea.Msg {
	if idx, ok := s.index[p.ID]; ok {
		s.projects[idx].UpdateScalars(p)
		return []tea.Msg{event.PipelinesFetch{Project: p.ID}}
	}

	var out []tea.Msg
	if s.now().Sub(p.LastActivityAt) <= recentActivityWindow {
		p.Pipelines = []domain.Pipeline{}
		out = append(out, event.PipelinesFetch{Project: p.ID})
	}
	s.index[p.ID] = len(s.projects)
	s.projects = append(s.projects, p)
	return out
}

// applyPipelines merges a batch of pipelines, all belonging to the same
// project. Existing jobs and commits survive the refresh; every active
// pipeline fans out a jobs fetch.
func (s *ProjectStore) applyPipelines(pipelines []domain.Pipeline) []tea.Msg {
	if len(pipelines) == 0 {
		return nil
	}

	projectID := pipelines[0].ProjectID
	idx, ok := s.index[projectID]
	if !ok {
		return nil
	}
	project := &s.projects[idx]

	var out []tea.Msg
	for i := range pipelines {
		p := &pipelines[i]
		if p.Status.IsActive() || p.HasActiveJobs() {
			out = append(out, event.JobsFetch{Project: projectID, Pipeline: p.ID})
		}
	}

	project.UpdatePipelines(pipelines)
	out = append(out, event.ProjectUpdated{Project: *project})

	s.rebuildSorted()
	return out
}

func (s *ProjectStore) applyJobs(m event.JobsLoaded) []tea.Msg {
	idx, ok := s.index[m.Project]
	if !ok {
		return nil
	}
	project := &s.projects[idx]
	project.UpdateJobs(m.Pipeline, m.Jobs, m.Commit)

	s.rebuildSorted()
	return []tea.Msg{event.ProjectUpdated{Project: *project}}
}

// applySelection lazily loads pipelines the first time a project is
// selected.
func (s *ProjectStore) applySelection(projectID id.ProjectID) []tea.Msg {
	idx, ok := s.index[projectID]
	if !ok {
		return nil
	}
	project := &s.projects[idx]
	if project.Pipelines != nil {
		return nil
	}
	project.Pipelines = []domain.Pipeline{}
	return []tea.Msg{event.PipelinesFetch{Project: projectID}}
}

// applyDetailsOpen requests jobs for every recent pipeline that has
// not loaded them yet.
func (s *ProjectStore) applyDetailsOpen(projectID id.ProjectID) []tea.Msg {
	project := s.Find(projectID)
	if project == nil {
		return nil
	}

	var out []tea.Msg
	for _, p := range project.RecentPipelines() {
		if p.Jobs == nil {
			out = append(out, event.JobsFetch{Project: projectID, Pipeline: p.ID})
		}
	}
	return out
}

// applyActiveFetch fans a periodic refresh out to every pipeline that
// may still change.
func (s *ProjectStore) applyActiveFetch() []tea.Msg {
	var out []tea.Msg
	for i := range s.projects {
		project := &s.projects[i]
		for j := range project.Pipelines {
			p := &project.Pipelines[j]
			if p.Status.IsActive() || p.HasActiveJobs() {
				out = append(out, event.JobsFetch{Project: project.ID, Pipeline: p.ID})
			}
		}
	}
	return out
}

// Find returns the project with the given id, or nil.
func (s *ProjectStore) Find(projectID id.ProjectID) *domain.Project {
	idx, ok := s.index[projectID]
	if !ok {
		return nil
	}
	return &s.projects[idx]
}

// Projects returns all projects ordered by descending last activity.
func (s *ProjectStore) Projects() []domain.Project {
	return s.sorted
}

// Filtered returns the projects matching filter plus each match's index
// in the canonical ordering, so a selection in the filtered view maps
// back to the full list. A blank filter matches everything. Matching is
// a case-insensitive substring test against path or description.
func (s *ProjectStore) Filtered(filter string) ([]domain.Project, []int) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		indices := make([]int, len(s.sorted))
		for i := range indices {
			indices[i] = i
		}
		return s.sorted, indices
	}

	needle := strings.ToLower(filter)
	var projects []domain.Project
	var indices []int
	for i, p := range s.sorted {
		if strings.Contains(strings.ToLower(p.Path), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			projects = append(projects, p)
			indices = append(indices, i)
		}
	}
	return projects, indices
}

func (s *ProjectStore) rebuildSorted() {
	s.sorted = make([]domain.Project, len(s.projects))
	copy(s.sorted, s.projects)
	sort.SliceStable(s.sorted, func(i, j int) bool {
		return s.sorted[i].LastActivityAt.After(s.sorted[j].LastActivityAt)
	})
}
