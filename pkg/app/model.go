package app

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/input"
	"gitlab.com/tinyland/lab/glim/pkg/notice"
	"gitlab.com/tinyland/lab/glim/pkg/store"
	"gitlab.com/tinyland/lab/glim/pkg/ui"
)

// tickInterval is the UI refresh cadence.
const tickInterval = 30 * time.Millisecond

// Model is the bubbletea program: it routes every message through the
// layers in a fixed order and renders the widget state.
type Model struct {
	mux     *input.Multiplexer
	store   *store.ProjectStore
	notices *notice.Service
	widgets *ui.StatefulWidgets
	kernel  *Kernel
	logger  *slog.Logger

	quitting bool
}

func NewModel(
	mux *input.Multiplexer,
	s *store.ProjectStore,
	n *notice.Service,
	widgets *ui.StatefulWidgets,
	kernel *Kernel,
	logger *slog.Logger,
) *Model {
	return &Model{
		mux:     mux,
		store:   s,
		notices: n,
		widgets: widgets,
		kernel:  kernel,
		logger:  logger,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		event.TickCmd(tickInterval),
		event.Emit(event.ProjectsFetch{}),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		msg = event.Shutdown{}
	}

	if _, ok := msg.(event.Shutdown); ok {
		m.route(msg)
		m.quitting = true
		return m, tea.Quit
	}

	derived := m.route(msg)
	if _, ok := msg.(event.Tick); ok {
		return m, tea.Batch(event.TickCmd(tickInterval), event.Emit(derived...))
	}
	return m, event.Emit(derived...)
}

// route passes one message through every layer in order and collects
// the derived messages for re-dispatch.
func (m *Model) route(msg tea.Msg) []tea.Msg {
	var derived []tea.Msg

	derived = append(derived, m.mux.Apply(msg, m.widgets)...)
	derived = append(derived, m.store.Apply(msg)...)
	m.notices.Apply(msg)
	derived = append(derived, m.widgets.Apply(msg)...)
	derived = append(derived, m.widgets.Drain()...)
	derived = append(derived, m.kernel.Apply(msg)...)

	return derived
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.widgets.View()
}
