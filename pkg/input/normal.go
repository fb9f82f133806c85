package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// NormalProcessor is the bottom of the stack: project navigation and
// the global shortcuts. It remembers the most recently selected project
// so selection-dependent keys know their target.
type NormalProcessor struct {
	selected    id.ProjectID
	hasSelected bool
}

func NewNormalProcessor() *NormalProcessor {
	return &NormalProcessor{}
}

func (p *NormalProcessor) Apply(msg tea.Msg, w Widgets) []tea.Msg {
	switch m := msg.(type) {
	case event.ProjectSelected:
		p.selected = m.Project
		p.hasSelected = true
	case tea.KeyMsg:
		if w.FilterInputActive() {
			return p.filterKey(m)
		}
		return p.key(m)
	}
	return nil
}

func (p *NormalProcessor) key(msg tea.KeyMsg) []tea.Msg {
	switch msg.String() {
	case "up", "k":
		return []tea.Msg{event.ProjectPrevious{}}
	case "down", "j":
		return []tea.Msg{event.ProjectNext{}}
	case "enter", "o":
		if p.hasSelected {
			return []tea.Msg{event.ProjectDetailsOpen{Project: p.selected}}
		}
	case "p":
		if p.hasSelected {
			return []tea.Msg{event.PipelinesFetch{Project: p.selected}}
		}
	case "w":
		if p.hasSelected {
			return []tea.Msg{event.ProjectOpenURL{Project: p.selected}}
		}
	case "r":
		return []tea.Msg{event.ProjectsFetch{}}
	case "c":
		return []tea.Msg{event.ConfigOpen{}}
	case "a":
		return []tea.Msg{event.NotificationLast{}}
	case "f", "/":
		return []tea.Msg{event.FilterMenuShow{}}
	case "l":
		return []tea.Msg{event.LogsToggle{}}
	case "q":
		return []tea.Msg{event.Shutdown{}}
	case "esc":
		return []tea.Msg{event.FilterClear{}}
	case "f12":
		return []tea.Msg{event.ColorDepthToggle{}}
	}
	return nil
}

// filterKey handles keys while the filter input is open: text edits
// preview live, Enter keeps the filter, Esc abandons it.
func (p *NormalProcessor) filterKey(msg tea.KeyMsg) []tea.Msg {
	switch msg.Type {
	case tea.KeyEnter:
		return []tea.Msg{event.FilterMenuClose{}}
	case tea.KeyEsc:
		return []tea.Msg{event.FilterTemporary{Filter: nil}, event.FilterMenuClose{}}
	case tea.KeyBackspace:
		return []tea.Msg{event.FilterInputBackspace{}}
	case tea.KeyRunes:
		out := make([]tea.Msg, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, event.FilterInputChar{Ch: r})
		}
		return out
	}
	return nil
}
