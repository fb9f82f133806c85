// Package event defines the typed messages that every glim component
// communicates with. The bubbletea runtime is the bus: external producers
// push through a Sender, in-loop producers return derived messages that
// the kernel re-dispatches as commands. Exactly one consumer — the main
// update loop — drains messages in FIFO order.
package event

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// Sender delivers messages to the update loop from outside it. It is
// satisfied by *tea.Program.
type Sender interface {
	Send(tea.Msg)
}

// Lifecycle.

// Tick drives the UI refresh cycle at roughly 30 Hz.
type Tick struct{ Time time.Time }

// Shutdown asks the application to exit after the current frame.
type Shutdown struct{}

// Fetch requests. The store and the input processors emit these; the
// kernel hands them to the GitLab service.

type ProjectsFetch struct{}
type PipelinesFetch struct{ Project id.ProjectID }
type JobsFetch struct {
	Project  id.ProjectID
	Pipeline id.PipelineID
}
type JobLogFetch struct {
	Project id.ProjectID
	Job     id.JobID
}

// JobsActiveFetch asks for a jobs refresh of every pipeline that may
// still change. Emitted by the background poller.
type JobsActiveFetch struct{}

// Fetch results, pushed by the GitLab service.

type ProjectsLoaded struct{ Projects []domain.Project }

// PipelinesLoaded carries one project's pipeline batch; all elements
// share the same ProjectID.
type PipelinesLoaded struct{ Pipelines []domain.Pipeline }

type JobsLoaded struct {
	Project  id.ProjectID
	Pipeline id.PipelineID
	Jobs     []domain.Job
	Commit   *domain.Commit // carried by the first job, nil when empty
}

type JobLogDownloaded struct {
	Project id.ProjectID
	Job     id.JobID
	Trace   string
}

// Selection.

type ProjectSelected struct{ Project id.ProjectID }
type PipelineSelected struct{ Pipeline id.PipelineID }
type ProjectNext struct{}
type ProjectPrevious struct{}

// Popups.

type ProjectDetailsOpen struct{ Project id.ProjectID }
type ProjectDetailsClose struct{}
type PipelineActionsOpen struct {
	Project  id.ProjectID
	Pipeline id.PipelineID
}
type PipelineActionsClose struct{}
type ConfigOpen struct{}
type ConfigClose struct{}

// ConfigApply asks the kernel to validate and persist the config popup's
// current contents.
type ConfigApply struct{}

// ConfigUpdate broadcasts a newly persisted configuration.
type ConfigUpdate struct{ Config config.Config }

// Filter.

type FilterMenuShow struct{}
type FilterMenuClose struct{}
type FilterInputChar struct{ Ch rune }
type FilterInputBackspace struct{}
type FilterClear struct{}

// FilterTemporary previews a filter while the user types. A nil Filter
// reverts to the persisted one.
type FilterTemporary struct{ Filter *string }

// FilterApply persists the filter into the configuration.
type FilterApply struct{ Filter string }

// Notifications.

type NotificationLast struct{}
type NotificationDismiss struct{}

// Side effects.

type ProjectOpenURL struct{ Project id.ProjectID }
type PipelineOpenURL struct {
	Project  id.ProjectID
	Pipeline id.PipelineID
}
type JobOpenURL struct {
	Project  id.ProjectID
	Pipeline id.PipelineID
	Job      id.JobID
}

// JobLogErrorDownload resolves the failed job of a pipeline and fetches
// its trace for the clipboard.
type JobLogErrorDownload struct {
	Project  id.ProjectID
	Pipeline id.PipelineID
}

// ScreenCapture asks the kernel to snapshot the rendered frame as text.
type ScreenCapture struct{}

// ScreenCaptureDone carries the captured text to the clipboard handler.
type ScreenCaptureDone struct{ Text string }

// Derived.

// ProjectUpdated publishes an immutable snapshot of a project after the
// store changed it.
type ProjectUpdated struct{ Project domain.Project }

// AppError wraps any failure surfaced to the user as a notice. The
// concrete error is usually a *gitlab.Error.
type AppError struct{ Err error }

// LogEntry appends a line to the internal logs overlay.
type LogEntry struct{ Message string }

// LogsToggle shows or hides the internal logs overlay.
type LogsToggle struct{}

// ColorDepthToggle switches between truecolor and 256-color rendering.
type ColorDepthToggle struct{}

// GlitchState is the override state of the ambient glitch effect.
type GlitchState int

const (
	GlitchInactive GlitchState = iota
	GlitchActive
)

// GlitchOverride forces the ambient glitch effect on or off.
type GlitchOverride struct{ State GlitchState }
