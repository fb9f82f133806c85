package gitlab

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// Service runs the high-level fetch operations and reports their
// outcomes on the event bus. None of the operations return data to the
// caller; success emits the corresponding Loaded event and failure
// emits AppError.
//
// The client is held behind an atomic pointer: configuration updates
// build a fresh client and swap it in, and each request snapshots the
// pointer once.
type Service struct {
	client atomic.Pointer[Client]
	sender event.Sender
	logger *slog.Logger
}

// NewService builds a service around a validated client configuration.
func NewService(cfg ClientConfig, sender event.Sender, logger *slog.Logger) (*Service, error) {
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	s := &Service{sender: sender, logger: logger}
	s.client.Store(client)
	return s, nil
}

// UpdateConfig swaps in a client built from cfg. In-flight requests
// keep using the client they started with.
func (s *Service) UpdateConfig(cfg ClientConfig) error {
	client, err := NewClient(cfg, s.logger)
	if err != nil {
		return err
	}
	s.client.Store(client)
	return nil
}

// Config returns the active client configuration.
func (s *Service) Config() ClientConfig {
	return s.client.Load().Config()
}

// FetchProjects lists projects, optionally limited to those active
// after the cutoff, and emits ProjectsLoaded.
func (s *Service) FetchProjects(ctx context.Context, updatedAfter *time.Time) {
	client := s.client.Load()
	query := client.Config().DefaultProjectQuery()
	query.UpdatedAfter = updatedAfter

	projects, err := client.Projects(ctx, query)
	if err != nil {
		s.logger.Error("failed to fetch projects", "error", err)
		s.sender.Send(event.AppError{Err: err})
		return
	}
	s.logger.Debug("fetched projects", "count", len(projects))
	s.sender.Send(event.ProjectsLoaded{Projects: projects})
}

// FetchPipelines lists a project's pipelines and emits PipelinesLoaded.
func (s *Service) FetchPipelines(ctx context.Context, project id.ProjectID, updatedAfter *time.Time) {
	client := s.client.Load()
	query := client.Config().DefaultPipelineQuery()
	query.UpdatedAfter = updatedAfter

	pipelines, err := client.Pipelines(ctx, project, query)
	if err != nil {
		s.logger.Error("failed to fetch pipelines", "project_id", project, "error", err)
		s.sender.Send(event.AppError{Err: err})
		return
	}
	s.logger.Debug("fetched pipelines", "project_id", project, "count", len(pipelines))
	s.sender.Send(event.PipelinesLoaded{Pipelines: pipelines})
}

// FetchAllJobs fetches a pipeline's jobs and trigger jobs and emits
// JobsLoaded.
func (s *Service) FetchAllJobs(ctx context.Context, project id.ProjectID, pipeline id.PipelineID) {
	jobs, commit, err := s.client.Load().Jobs(ctx, project, pipeline)
	if err != nil {
		s.logger.Error("failed to fetch jobs",
			"project_id", project, "pipeline_id", pipeline, "error", err)
		s.sender.Send(event.AppError{Err: err})
		return
	}
	s.logger.Debug("fetched jobs",
		"project_id", project, "pipeline_id", pipeline, "count", len(jobs))
	s.sender.Send(event.JobsLoaded{
		Project:  project,
		Pipeline: pipeline,
		Jobs:     jobs,
		Commit:   commit,
	})
}

// DownloadJobLog fetches a job's trace and emits JobLogDownloaded.
func (s *Service) DownloadJobLog(ctx context.Context, project id.ProjectID, job id.JobID) {
	trace, err := s.client.Load().JobTrace(ctx, project, job)
	if err != nil {
		s.logger.Error("failed to download job log",
			"project_id", project, "job_id", job, "error", err)
		s.sender.Send(event.AppError{Err: err})
		return
	}
	s.logger.Info("job log downloaded",
		"project_id", project, "job_id", job, "bytes", len(trace))
	s.sender.Send(event.JobLogDownloaded{Project: project, Job: job, Trace: trace})
}

// ValidateConnection checks credentials against the live instance. It
// returns the error instead of emitting it so the bootstrap popup can
// render it inline.
func (s *Service) ValidateConnection(ctx context.Context) error {
	return s.client.Load().ValidateConnection(ctx)
}
