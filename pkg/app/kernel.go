// Package app ties the components together: the kernel carries out the
// side effects the other layers only describe, and the bubbletea model
// routes every message through the layers in a fixed order.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/gitlab"
	"gitlab.com/tinyland/lab/glim/pkg/id"
	"gitlab.com/tinyland/lab/glim/pkg/store"
	"gitlab.com/tinyland/lab/glim/pkg/ui"
)

// validateTimeout bounds the synchronous connection check when a new
// configuration is applied from the popup.
const validateTimeout = 10 * time.Second

// Kernel carries out side effects: outbound fetches, the browser, the
// clipboard, and config persistence. Everything else only mutates
// state and returns derived messages.
type Kernel struct {
	store      *store.ProjectStore
	service    *gitlab.Service
	widgets    *ui.StatefulWidgets
	logger     *slog.Logger
	configPath string
	config     config.Config

	ctx context.Context

	// replaceable in tests
	openURL   func(url string) error
	copyText  func(text string) error
	checkLive func(ctx context.Context, cfg config.Config) error
}

func NewKernel(
	ctx context.Context,
	s *store.ProjectStore,
	service *gitlab.Service,
	widgets *ui.StatefulWidgets,
	cfg config.Config,
	configPath string,
	logger *slog.Logger,
) *Kernel {
	return &Kernel{
		store:      s,
		service:    service,
		widgets:    widgets,
		logger:     logger,
		configPath: configPath,
		config:     cfg,
		ctx:        ctx,
		openURL:    openBrowser,
		copyText:   clipboard.WriteAll,
		checkLive:  checkConnection,
	}
}

// Apply runs last in the routing order and handles the message kinds
// that reach outside the process.
func (k *Kernel) Apply(msg tea.Msg) []tea.Msg {
	switch m := msg.(type) {
	case event.ProjectsFetch:
		go k.service.FetchProjects(k.ctx, k.fetchCutoff())

	case event.PipelinesFetch:
		go k.service.FetchPipelines(k.ctx, m.Project, nil)

	case event.JobsFetch:
		go k.service.FetchAllJobs(k.ctx, m.Project, m.Pipeline)

	case event.JobLogFetch:
		go k.service.DownloadJobLog(k.ctx, m.Project, m.Job)

	case event.JobLogErrorDownload:
		return k.resolveErrorLog(m)

	case event.JobLogDownloaded:
		if err := k.copyText(m.Trace); err != nil {
			return []tea.Msg{event.AppError{Err: fmt.Errorf("copy job log: %w", err)}}
		}

	case event.ScreenCapture:
		return []tea.Msg{event.ScreenCaptureDone{Text: ui.CaptureText(k.widgets.View())}}

	case event.ScreenCaptureDone:
		if err := k.copyText(m.Text); err != nil {
			return []tea.Msg{event.AppError{Err: fmt.Errorf("copy screen capture: %w", err)}}
		}

	case event.ProjectOpenURL:
		if p := k.store.Find(m.Project); p != nil {
			k.browse(p.WebURL)
		}

	case event.PipelineOpenURL:
		if pl := k.findPipeline(m.Project, m.Pipeline); pl != nil {
			k.browse(pl.WebURL)
		}

	case event.JobOpenURL:
		if pl := k.findPipeline(m.Project, m.Pipeline); pl != nil {
			if job := pl.Job(m.Job); job != nil {
				k.browse(job.WebURL)
			}
		}

	case event.ConfigApply:
		return k.applyConfig()

	case event.ConfigUpdate:
		k.config = m.Config
		if err := k.service.UpdateConfig(gitlab.FromConfig(&m.Config)); err != nil {
			return []tea.Msg{event.AppError{Err: err}}
		}

	case event.FilterApply:
		return k.applyFilter(m.Filter)
	}
	return nil
}

// fetchCutoff picks the updated_after bound for a projects refresh:
// the oldest activity among projects that still have active pipelines,
// or the newest activity overall when nothing is active. Nil on a cold
// store, which fetches everything.
func (k *Kernel) fetchCutoff() *time.Time {
	projects := k.store.Projects()
	if len(projects) == 0 {
		return nil
	}

	var minActive, maxAny *time.Time
	for i := range projects {
		t := projects[i].LastActivityAt
		if maxAny == nil || t.After(*maxAny) {
			maxAny = &t
		}
		if projects[i].HasActivePipelines() && (minActive == nil || t.Before(*minActive)) {
			minActive = &t
		}
	}
	if minActive != nil {
		return minActive
	}
	return maxAny
}

// resolveErrorLog turns a pipeline-level log request into a fetch of
// its failed job's trace.
func (k *Kernel) resolveErrorLog(m event.JobLogErrorDownload) []tea.Msg {
	pl := k.findPipeline(m.Project, m.Pipeline)
	if pl == nil {
		return nil
	}
	job := pl.FailedJob()
	if job == nil {
		k.logger.Warn("no failed job in pipeline", "pipeline_id", m.Pipeline)
		return nil
	}
	return []tea.Msg{event.JobLogFetch{Project: m.Project, Job: job.ID}}
}

// applyConfig validates the popup's contents against the live instance
// and persists them on success. Runs on the UI thread so the config
// file has a single writer.
func (k *Kernel) applyConfig() []tea.Msg {
	popup := k.widgets.ConfigPopup()
	if popup == nil {
		return nil
	}
	cfg := popup.Config()

	if err := cfg.Validate(); err != nil {
		return []tea.Msg{event.AppError{Err: err}}
	}

	ctx, cancel := context.WithTimeout(k.ctx, validateTimeout)
	defer cancel()
	if err := k.checkLive(ctx, cfg); err != nil {
		return []tea.Msg{event.AppError{Err: err}}
	}

	if err := cfg.Save(k.configPath); err != nil {
		return []tea.Msg{event.AppError{Err: fmt.Errorf("save config: %w", err)}}
	}
	k.logger.Info("configuration saved", "path", k.configPath)
	return []tea.Msg{event.ConfigUpdate{Config: cfg}, event.ConfigClose{}}
}

// applyFilter persists the search filter and refreshes the project
// list under the new scope.
func (k *Kernel) applyFilter(filter string) []tea.Msg {
	cfg := k.config
	cfg.SetFilter(filter)

	if err := cfg.Save(k.configPath); err != nil {
		return []tea.Msg{event.AppError{Err: fmt.Errorf("save config: %w", err)}}
	}
	return []tea.Msg{event.ConfigUpdate{Config: cfg}, event.ProjectsFetch{}}
}

func (k *Kernel) findPipeline(projectID id.ProjectID, pipelineID id.PipelineID) *domain.Pipeline {
	p := k.store.Find(projectID)
	if p == nil {
		return nil
	}
	return p.Pipeline(pipelineID)
}

func (k *Kernel) browse(url string) {
	if url == "" {
		return
	}
	if err := k.openURL(url); err != nil {
		k.logger.Warn("failed to open browser", "url", url, "error", err)
	}
}

// checkConnection builds a throwaway client for the candidate config
// and probes the projects endpoint with it.
func checkConnection(ctx context.Context, cfg config.Config) error {
	client, err := gitlab.NewClient(gitlab.FromConfig(&cfg), slog.Default())
	if err != nil {
		return err
	}
	return client.ValidateConnection(ctx)
}

// openBrowser hands a URL to $BROWSER when set, falling back to the
// platform opener.
func openBrowser(url string) error {
	if browser := strings.TrimSpace(os.Getenv("BROWSER")); browser != "" {
		parts := strings.Fields(browser)
		return exec.Command(parts[0], append(parts[1:], url)...).Start()
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
