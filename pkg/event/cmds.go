package event

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickCmd re-arms the frame tick after the given duration.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return Tick{Time: t}
	})
}

// Emit converts derived messages into a command batch so they re-enter
// the update loop. Nil for an empty set, keeping Update returns tidy.
func Emit(msgs ...tea.Msg) tea.Cmd {
	if len(msgs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(msgs))
	for i, m := range msgs {
		m := m
		cmds[i] = func() tea.Msg { return m }
	}
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Sequence(cmds...)
}

// Describe renders a message as a human-readable line for the internal
// logs overlay. Messages with no interesting description return "".
func Describe(msg tea.Msg) string {
	switch m := msg.(type) {
	case Shutdown:
		return "shutting down..."
	case ProjectsFetch:
		return "request all projects since last update"
	case JobsActiveFetch:
		return "request active pipelines for all projects"
	case PipelinesFetch:
		return "request pipelines for project_id=" + m.Project.String()
	case JobsFetch:
		return "request jobs for project_id=" + m.Project.String() +
			" pipeline_id=" + m.Pipeline.String()
	case ProjectsLoaded:
		return "received " + strconv.Itoa(len(m.Projects)) + " projects"
	case PipelinesLoaded:
		return "received " + strconv.Itoa(len(m.Pipelines)) + " pipelines"
	case JobsLoaded:
		return "received " + strconv.Itoa(len(m.Jobs)) + " jobs for project_id=" + m.Project.String()
	case JobLogDownloaded:
		return "downloaded log for job_id=" + m.Job.String()
	case ProjectDetailsOpen:
		return "showing project_id=" + m.Project.String() + " details"
	case ProjectDetailsClose:
		return "closing project details popup"
	case PipelineActionsOpen:
		return "showing pipeline " + m.Pipeline.String() + "'s actions for project_id=" + m.Project.String()
	case ProjectSelected:
		return "selected project_id=" + m.Project.String()
	case PipelineSelected:
		return "selected pipeline_id=" + m.Pipeline.String()
	case ProjectOpenURL:
		return "open project_id=" + m.Project.String() + " in browser"
	case PipelineOpenURL:
		return "open pipeline_id=" + m.Pipeline.String() + " in browser"
	case JobOpenURL:
		return "open job_id=" + m.Job.String() + " in browser"
	case JobLogErrorDownload:
		return "download job log for failed pipeline_id=" + m.Pipeline.String()
	case FilterMenuShow:
		return "showing filter menu"
	case FilterMenuClose:
		return "closing filter input"
	case FilterApply:
		return "applying filter: '" + m.Filter + "'"
	case FilterClear:
		return "clearing filter"
	case ConfigOpen:
		return "display config"
	case ConfigApply:
		return "applying new configuration"
	case ConfigUpdate:
		return "updating configuration"
	case ColorDepthToggle:
		return "toggling color depth"
	case AppError:
		return m.Err.Error()
	case LogEntry:
		return m.Message
	default:
		return ""
	}
}

