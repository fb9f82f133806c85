package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/event"
)

// ConfigProcessor handles keys while the config popup is open. Up and
// Down cycle the input fields; every other key edits the focused field.
type ConfigProcessor struct{}

func NewConfigProcessor() *ConfigProcessor {
	return &ConfigProcessor{}
}

func (p *ConfigProcessor) Apply(msg tea.Msg, w Widgets) []tea.Msg {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.Type {
	case tea.KeyEnter:
		return []tea.Msg{event.ConfigApply{}}
	case tea.KeyEsc:
		return []tea.Msg{event.ConfigClose{}}
	case tea.KeyDown:
		w.ConfigFieldNext()
	case tea.KeyUp:
		w.ConfigFieldPrev()
	default:
		w.ConfigHandleKey(key)
	}
	return nil
}
