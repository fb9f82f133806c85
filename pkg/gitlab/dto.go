package gitlab

import (
	"time"

	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// Wire representations of the GitLab API resources. Only the fields we
// read are declared; everything else in the payload is ignored.

type projectDTO struct {
	ID                id.ProjectID  `json:"id"`
	PathWithNamespace string        `json:"path_with_namespace"`
	Description       string        `json:"description"`
	DefaultBranch     string        `json:"default_branch"`
	SSHURLToRepo      string        `json:"ssh_url_to_repo"`
	WebURL            string        `json:"web_url"`
	LastActivityAt    time.Time     `json:"last_activity_at"`
	Statistics        statisticsDTO `json:"statistics"`
}

type statisticsDTO struct {
	CommitCount      int   `json:"commit_count"`
	JobArtifactsSize int64 `json:"job_artifacts_size"`
	RepositorySize   int64 `json:"repository_size"`
}

type pipelineDTO struct {
	ID        id.PipelineID         `json:"id"`
	ProjectID id.ProjectID          `json:"project_id"`
	Status    domain.PipelineStatus `json:"status"`
	Source    domain.PipelineSource `json:"source"`
	Ref       string                `json:"ref"`
	WebURL    string                `json:"web_url"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type commitDTO struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

type jobDTO struct {
	ID         id.JobID              `json:"id"`
	Name       string                `json:"name"`
	Stage      string                `json:"stage"`
	Commit     commitDTO             `json:"commit"`
	Status     domain.PipelineStatus `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
	StartedAt  *time.Time            `json:"started_at"`
	FinishedAt *time.Time            `json:"finished_at"`
	WebURL     string                `json:"web_url"`
}

func (d projectDTO) toDomain() domain.Project {
	return domain.Project{
		ID:              d.ID,
		Path:            d.PathWithNamespace,
		Description:     d.Description,
		DefaultBranch:   d.DefaultBranch,
		SSHGitURL:       d.SSHURLToRepo,
		WebURL:          d.WebURL,
		LastActivityAt:  d.LastActivityAt,
		CommitCount:     d.Statistics.CommitCount,
		RepoSizeKB:      d.Statistics.RepositorySize / 1024,
		ArtifactsSizeKB: d.Statistics.JobArtifactsSize / 1024,
	}
}

func (d pipelineDTO) toDomain() domain.Pipeline {
	return domain.Pipeline{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Status:    d.Status,
		Source:    d.Source,
		Branch:    d.Ref,
		WebURL:    d.WebURL,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d jobDTO) toDomain() domain.Job {
	return domain.Job{
		ID:         d.ID,
		Name:       d.Name,
		Stage:      d.Stage,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
		WebURL:     d.WebURL,
	}
}

func (d commitDTO) toDomain() domain.Commit {
	return domain.Commit{Title: d.Title, AuthorName: d.AuthorName}
}

func projectsToDomain(dtos []projectDTO) []domain.Project {
	out := make([]domain.Project, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out
}

func pipelinesToDomain(dtos []pipelineDTO) []domain.Pipeline {
	out := make([]domain.Pipeline, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out
}

func jobsToDomain(dtos []jobDTO) []domain.Job {
	out := make([]domain.Job, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out
}
