// Package poller drives the periodic background fetches: a slow loop
// that relists all projects and a fast loop that refreshes jobs of
// active pipelines.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/gitlab"
)

// Poller owns the two timer loops. Stop cancels both; each loop exits
// within one tick.
type Poller struct {
	service *gitlab.Service
	sender  event.Sender
	logger  *slog.Logger

	projectsInterval time.Duration
	jobsInterval     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a poller around the service. Intervals come from the
// service's client configuration.
func New(service *gitlab.Service, sender event.Sender, logger *slog.Logger) *Poller {
	cfg := service.Config()
	return &Poller{
		service:          service,
		sender:           sender,
		logger:           logger,
		projectsInterval: cfg.ProjectsInterval,
		jobsInterval:     cfg.JobsInterval,
	}
}

// Start launches both loops. Calling Start twice is a programming
// error.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(2)
	go p.projectsLoop(ctx)
	go p.jobsLoop(ctx)

	p.logger.Info("poller started",
		"projects_interval", p.projectsInterval,
		"jobs_interval", p.jobsInterval)
}

// Stop signals both loops and waits for them to exit.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.logger.Info("poller stopped")
}

// projectsLoop requests a project refresh on every tick. The request
// goes through the event bus so the kernel can attach the
// updated_after cutoff it derives from the store.
func (p *Poller) projectsLoop(ctx context.Context) {
	defer p.wg.Done()

	t := time.NewTicker(p.projectsInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.sender.Send(event.ProjectsFetch{})
		}
	}
}

// jobsLoop asks the store to refresh every active pipeline. The store
// translates one JobsActiveFetch into per-pipeline job fetches.
func (p *Poller) jobsLoop(ctx context.Context) {
	defer p.wg.Done()

	t := time.NewTicker(p.jobsInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.sender.Send(event.JobsActiveFetch{})
		}
	}
}
