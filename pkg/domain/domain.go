// Package domain holds the local model of GitLab projects, pipelines, and
// jobs, together with the merge rules that reconcile partial API responses
// into a consistent whole.
//
// Collection fields use nil/non-nil to carry loading state: a nil
// Pipelines slice means pipelines were never requested for that project,
// while an empty non-nil slice means a request is in flight or returned
// nothing. The same contract applies to Jobs on a pipeline.
package domain

import (
	"sort"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// recentPipelineLimit caps the per-branch summary shown on the project row
// and the pipeline list in the details popup.
const recentPipelineLimit = 8

// Commit is the commit a pipeline ran for. It becomes known once jobs are
// fetched; the first job carries it.
type Commit struct {
	Title      string
	AuthorName string
}

// Job is a single unit of work within a pipeline. Bridges (trigger jobs)
// are represented identically.
type Job struct {
	ID         id.JobID
	Name       string
	Stage      string
	Status     PipelineStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	WebURL     string
}

// Duration is the job's run time so far, or its total run time once
// finished. Zero if the job never started.
func (j *Job) Duration() time.Duration {
	switch {
	case j.StartedAt != nil && j.FinishedAt != nil:
		return j.FinishedAt.Sub(*j.StartedAt)
	case j.StartedAt != nil:
		return time.Since(*j.StartedAt)
	default:
		return 0
	}
}

// Pipeline is one CI/CD run on a branch.
type Pipeline struct {
	ID        id.PipelineID
	ProjectID id.ProjectID
	Status    PipelineStatus
	Source    PipelineSource
	Branch    string
	WebURL    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Jobs      []Job
	Commit    *Commit
}

// HasActiveJobs reports whether any fetched job may still change.
func (p *Pipeline) HasActiveJobs() bool {
	for i := range p.Jobs {
		if p.Jobs[i].Status.IsActive() {
			return true
		}
	}
	return false
}

// ActiveJob returns the first job that is still active, or nil.
func (p *Pipeline) ActiveJob() *Job {
	for i := range p.Jobs {
		if p.Jobs[i].Status.IsActive() {
			return &p.Jobs[i]
		}
	}
	return nil
}

// FailedJob returns the first failed job, or nil.
func (p *Pipeline) FailedJob() *Job {
	for i := range p.Jobs {
		if p.Jobs[i].Status == StatusFailed {
			return &p.Jobs[i]
		}
	}
	return nil
}

// Job returns the job with the given id, or nil.
func (p *Pipeline) Job(jobID id.JobID) *Job {
	for i := range p.Jobs {
		if p.Jobs[i].ID == jobID {
			return &p.Jobs[i]
		}
	}
	return nil
}

// Duration measures from pipeline creation to the last job's finish time,
// or to now while the pipeline is still active.
func (p *Pipeline) Duration() time.Duration {
	if end := p.finishedAt(); end != nil {
		return end.Sub(p.CreatedAt)
	}
	return time.Since(p.CreatedAt)
}

func (p *Pipeline) finishedAt() *time.Time {
	if p.Status.IsActive() {
		return nil
	}
	var latest *time.Time
	for i := range p.Jobs {
		if fin := p.Jobs[i].FinishedAt; fin != nil {
			if latest == nil || fin.After(*latest) {
				latest = fin
			}
		}
	}
	return latest
}

// Icon returns one glyph per fetched job, falling back to the pipeline's
// own status glyph when jobs are not yet loaded.
func (p *Pipeline) Icon() string {
	if p.Jobs == nil {
		return p.Status.Icon()
	}
	var b strings.Builder
	for i := range p.Jobs {
		b.WriteString(p.Jobs[i].Status.Icon())
	}
	return b.String()
}

// Project is a GitLab project with its lazily loaded pipelines.
type Project struct {
	ID              id.ProjectID
	Path            string // namespace/name
	Description     string
	DefaultBranch   string
	SSHGitURL       string
	WebURL          string
	LastActivityAt  time.Time
	CommitCount     int
	RepoSizeKB      int64
	ArtifactsSizeKB int64
	Pipelines       []Pipeline
}

// Name is the last path segment.
func (p *Project) Name() string {
	if i := strings.LastIndexByte(p.Path, '/'); i >= 0 {
		return p.Path[i+1:]
	}
	return p.Path
}

// Namespace is everything up to and including the last slash, or "".
func (p *Project) Namespace() string {
	if i := strings.LastIndexByte(p.Path, '/'); i >= 0 {
		return p.Path[:i+1]
	}
	return ""
}

// Pipeline returns the pipeline with the given id, or nil.
func (p *Project) Pipeline(pipelineID id.PipelineID) *Pipeline {
	for i := range p.Pipelines {
		if p.Pipelines[i].ID == pipelineID {
			return &p.Pipelines[i]
		}
	}
	return nil
}

// RecentPipelines returns up to eight pipelines with an interesting
// source, in stored order. Empty when pipelines were never fetched.
func (p *Project) RecentPipelines() []*Pipeline {
	var out []*Pipeline
	for i := range p.Pipelines {
		if !p.Pipelines[i].Source.IsInteresting() {
			continue
		}
		out = append(out, &p.Pipelines[i])
		if len(out) == recentPipelineLimit {
			break
		}
	}
	return out
}

// FirstPipelinePerBranch returns up to count pipelines, keeping only the
// first pipeline seen per branch among those with an interesting source or
// matching the extra predicate.
func (p *Project) FirstPipelinePerBranch(count int, extra func(*Pipeline) bool) []*Pipeline {
	seen := make(map[string]bool)
	var out []*Pipeline
	for i := range p.Pipelines {
		pl := &p.Pipelines[i]
		if !pl.Source.IsInteresting() && (extra == nil || !extra(pl)) {
			continue
		}
		if seen[pl.Branch] {
			continue
		}
		seen[pl.Branch] = true
		out = append(out, pl)
		if len(out) == count {
			break
		}
	}
	return out
}

// HasActivePipelines reports whether any pipeline, or any of its jobs, may
// still change.
func (p *Project) HasActivePipelines() bool {
	for i := range p.Pipelines {
		if p.Pipelines[i].Status.IsActive() || p.Pipelines[i].HasActiveJobs() {
			return true
		}
	}
	return false
}

// UpdateScalars overwrites the scalar fields from a fresh API record,
// leaving the pipelines collection untouched.
func (p *Project) UpdateScalars(fresh Project) {
	p.Path = fresh.Path
	p.Description = fresh.Description
	p.DefaultBranch = fresh.DefaultBranch
	p.SSHGitURL = fresh.SSHGitURL
	p.WebURL = fresh.WebURL
	p.LastActivityAt = fresh.LastActivityAt
	p.CommitCount = fresh.CommitCount
	p.RepoSizeKB = fresh.RepoSizeKB
	p.ArtifactsSizeKB = fresh.ArtifactsSizeKB
}

// UpdatePipelines replaces the pipeline collection with the incoming
// batch. Jobs and commit already attached to a pipeline survive the
// replacement. The result is sorted by descending update time.
func (p *Project) UpdatePipelines(incoming []Pipeline) {
	merged := make([]Pipeline, len(incoming))
	for i, in := range incoming {
		if existing := p.Pipeline(in.ID); existing != nil {
			in.Jobs = existing.Jobs
			in.Commit = existing.Commit
		}
		merged[i] = in
	}
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].UpdatedAt.After(merged[b].UpdatedAt)
	})
	p.Pipelines = merged
}

// UpdateJobs replaces the jobs of one pipeline. A non-empty list also
// attaches the commit carried by the first job.
func (p *Project) UpdateJobs(pipelineID id.PipelineID, jobs []Job, commit *Commit) {
	pl := p.Pipeline(pipelineID)
	if pl == nil {
		return
	}
	pl.Jobs = jobs
	if len(jobs) > 0 && commit != nil {
		pl.Commit = commit
	}
}
