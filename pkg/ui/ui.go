// Package ui holds the stateful widget layer: the projects table
// cursor, the three popups, the filter input, the notification slot,
// and the internal logs overlay. All state transitions happen in Apply,
// driven by the same messages every other component sees. Rendering
// reads this state and never mutates it.
package ui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/notice"
	"gitlab.com/tinyland/lab/glim/pkg/store"
)

// StatefulWidgets owns every piece of mutable UI state. Popups are
// nullable records: open means non-nil.
type StatefulWidgets struct {
	store   *store.ProjectStore
	notices *notice.Service
	logger  *slog.Logger

	width  int
	height int

	cursor int // projects table row, within the filtered list

	filterActive bool
	filterText   string
	tempFilter   *string
	config       config.Config

	details *ProjectDetailsState
	actions *PipelineActionsState
	popup   *ConfigPopupState

	notification *notificationState
	logs         *internalLogs
	logsVisible  bool

	glitch  event.GlitchState
	use256  bool
	pending []tea.Msg

	now func() time.Time
}

// NewStatefulWidgets wires the widget layer to its read-only
// collaborators. The store is only read for rendering and cursor
// bookkeeping; mutation stays with the store itself.
func NewStatefulWidgets(s *store.ProjectStore, n *notice.Service, cfg config.Config, logger *slog.Logger) *StatefulWidgets {
	return &StatefulWidgets{
		store:   s,
		notices: n,
		logger:  logger,
		config:  cfg,
		logs:    newInternalLogs(),
		now:     time.Now,
	}
}

// Apply advances the widget state for one message and returns any
// derived messages. It runs after the input multiplexer, the store,
// and the notice service have seen the same message.
func (w *StatefulWidgets) Apply(msg tea.Msg) []tea.Msg {
	var out []tea.Msg

	w.logs.apply(msg)

	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		w.width, w.height = m.Width, m.Height

	case event.Tick:
		w.expireNotification(m.Time)

	case event.ProjectNext:
		out = append(out, w.moveProjectSelection(1)...)
	case event.ProjectPrevious:
		out = append(out, w.moveProjectSelection(-1)...)

	case event.ProjectsLoaded:
		w.clampCursor()

	case event.ProjectDetailsOpen:
		out = append(out, w.openProjectDetails(m)...)
	case event.ProjectDetailsClose:
		w.details = nil
	case event.ProjectUpdated:
		if w.details != nil && w.details.Project.ID == m.Project.ID {
			w.details = w.details.withProject(m.Project)
		}

	case event.PipelineActionsOpen:
		w.openPipelineActions(m)
	case event.PipelineActionsClose:
		w.actions = nil

	case event.ConfigOpen:
		w.popup = NewConfigPopupState(w.config)
	case event.ConfigClose:
		w.popup = nil
	case event.ConfigUpdate:
		w.config = m.Config
	case event.AppError:
		if w.popup != nil {
			w.popup.ErrorMessage = m.Err.Error()
		}

	case event.FilterMenuShow:
		w.showFilterInput()
	case event.FilterMenuClose:
		out = append(out, w.closeFilterInput()...)
	case event.FilterInputChar:
		w.filterInputChar(m.Ch)
	case event.FilterInputBackspace:
		w.filterInputBackspace()
	case event.FilterTemporary:
		w.applyTemporaryFilter(m.Filter)
	case event.FilterClear:
		w.clearFilter()

	case event.NotificationLast:
		if n := w.notices.MostRecent(); n != nil {
			w.showNotification(*n)
		}
	case event.NotificationDismiss:
		w.notification = nil

	case event.LogsToggle:
		w.logsVisible = !w.logsVisible

	case event.GlitchOverride:
		w.glitch = m.State

	case event.ColorDepthToggle:
		w.toggleColorDepth()
	}

	w.syncNotification()

	if len(w.pending) > 0 {
		out = append(out, w.pending...)
		w.pending = nil
	}
	return out
}

// moveProjectSelection moves the table cursor within the filtered
// list, clamped at both ends, and reports the newly selected project.
func (w *StatefulWidgets) moveProjectSelection(delta int) []tea.Msg {
	projects, _ := w.store.Filtered(w.EffectiveFilter())
	if len(projects) == 0 {
		return nil
	}

	next := w.cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(projects)-1 {
		next = len(projects) - 1
	}
	w.cursor = next
	return []tea.Msg{event.ProjectSelected{Project: projects[next].ID}}
}

func (w *StatefulWidgets) clampCursor() {
	projects, _ := w.store.Filtered(w.EffectiveFilter())
	if w.cursor > len(projects)-1 {
		w.cursor = 0
	}
}

func (w *StatefulWidgets) openProjectDetails(m event.ProjectDetailsOpen) []tea.Msg {
	project := w.store.Find(m.Project)
	if project == nil {
		return nil
	}
	w.details = NewProjectDetailsState(*project)

	recent := project.RecentPipelines()
	if len(recent) == 0 {
		return nil
	}
	return []tea.Msg{event.PipelineSelected{Pipeline: recent[0].ID}}
}

func (w *StatefulWidgets) openPipelineActions(m event.PipelineActionsOpen) {
	project := w.store.Find(m.Project)
	if project == nil {
		return
	}
	w.actions = NewPipelineActionsState(project, m.Pipeline)
}

// Cursor returns the projects table cursor within the filtered list.
func (w *StatefulWidgets) Cursor() int { return w.cursor }

// Details returns the project details popup state, nil when closed.
func (w *StatefulWidgets) Details() *ProjectDetailsState { return w.details }

// Actions returns the pipeline actions popup state, nil when closed.
func (w *StatefulWidgets) Actions() *PipelineActionsState { return w.actions }

// ConfigPopup returns the config popup state, nil when closed.
func (w *StatefulWidgets) ConfigPopup() *ConfigPopupState { return w.popup }

// LogsVisible reports whether the internal logs overlay is shown.
func (w *StatefulWidgets) LogsVisible() bool { return w.logsVisible }

// Glitch returns the ambient glitch override state.
func (w *StatefulWidgets) Glitch() event.GlitchState { return w.glitch }

// Drain hands out messages produced by direct widget calls from the
// input processors, such as pipeline cursor moves.
func (w *StatefulWidgets) Drain() []tea.Msg {
	out := w.pending
	w.pending = nil
	return out
}

func (w *StatefulWidgets) toggleColorDepth() {
	w.use256 = !w.use256
	if w.use256 {
		lipgloss.SetColorProfile(termenv.ANSI256)
	} else {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// FilterInputActive reports whether the filter input owns the keyboard.
func (w *StatefulWidgets) FilterInputActive() bool { return w.filterActive }

// FilterText returns the text currently in the filter input.
func (w *StatefulWidgets) FilterText() string { return w.filterText }

// EffectiveFilter is the filter applied to the projects table: the
// temporary filter while one is previewed, otherwise the persisted one.
func (w *StatefulWidgets) EffectiveFilter() string {
	if w.tempFilter != nil {
		return *w.tempFilter
	}
	return w.config.Filter()
}

func (w *StatefulWidgets) showFilterInput() {
	w.filterActive = true
	if w.tempFilter != nil {
		w.filterText = *w.tempFilter
	} else {
		w.filterText = ""
	}
}

// closeFilterInput leaves input mode. A previewed filter is persisted;
// a cancelled one was already reverted by the time close arrives.
func (w *StatefulWidgets) closeFilterInput() []tea.Msg {
	if !w.filterActive {
		return nil
	}
	w.filterActive = false
	if w.tempFilter == nil {
		return nil
	}
	return []tea.Msg{event.FilterApply{Filter: *w.tempFilter}}
}

func (w *StatefulWidgets) filterInputChar(ch rune) {
	if !w.filterActive {
		return
	}
	w.filterText += string(ch)
	w.previewFilter()
}

func (w *StatefulWidgets) filterInputBackspace() {
	if !w.filterActive {
		return
	}
	if runes := []rune(w.filterText); len(runes) > 0 {
		w.filterText = string(runes[:len(runes)-1])
	}
	w.previewFilter()
}

func (w *StatefulWidgets) previewFilter() {
	if w.filterText == "" {
		w.tempFilter = nil
	} else {
		text := w.filterText
		w.tempFilter = &text
	}
	w.cursor = 0
}

func (w *StatefulWidgets) applyTemporaryFilter(filter *string) {
	w.tempFilter = filter
	if filter == nil && w.filterActive {
		w.filterText = ""
	}
	w.cursor = 0
}

func (w *StatefulWidgets) clearFilter() {
	w.filterText = ""
	w.filterActive = false
	w.tempFilter = nil
	w.cursor = 0
}

// MovePipelineSelection moves the details popup's pipeline cursor,
// wrapping at both ends.
func (w *StatefulWidgets) MovePipelineSelection(delta int) {
	if w.details == nil {
		return
	}
	if id, moved := w.details.move(delta); moved {
		w.pending = append(w.pending, event.PipelineSelected{Pipeline: id})
	}
}

// MovePipelineActionSelection moves the actions popup's cursor,
// wrapping at both ends.
func (w *StatefulWidgets) MovePipelineActionSelection(delta int) {
	if w.actions == nil {
		return
	}
	w.actions.move(delta)
}

// SelectedPipelineAction resolves the actions popup's cursor to the
// message it stands for.
func (w *StatefulWidgets) SelectedPipelineAction() (tea.Msg, bool) {
	if w.actions == nil {
		return nil, false
	}
	return w.actions.selected()
}

// ConfigFieldNext focuses the next config popup field.
func (w *StatefulWidgets) ConfigFieldNext() {
	if w.popup != nil {
		w.popup.FieldNext()
	}
}

// ConfigFieldPrev focuses the previous config popup field.
func (w *StatefulWidgets) ConfigFieldPrev() {
	if w.popup != nil {
		w.popup.FieldPrev()
	}
}

// ConfigHandleKey forwards a key to the focused config text field.
func (w *StatefulWidgets) ConfigHandleKey(msg tea.KeyMsg) {
	if w.popup != nil {
		w.popup.HandleKey(msg)
	}
}
