package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/config"
)

// field indices of the config popup, top to bottom.
const (
	fieldGitlabURL = iota
	fieldGitlabToken
	fieldSearchFilter
	fieldLogLevel
	configFieldCount
)

var configFieldLabels = [configFieldCount]string{
	"gitlab url",
	"gitlab token",
	"search filter",
	"log level",
}

var configFieldHints = [configFieldCount]string{
	"api base url, e.g. https://gitlab.example.com/api/v4",
	"personal access token with read_api scope",
	"project filter applied server-side, empty for all projects",
	"off, error, warn, info, debug or trace",
}

// ConfigPopupState backs the configuration popup. The same state type
// serves the in-app popup and the first-run bootstrap screen.
type ConfigPopupState struct {
	fields [configFieldCount]textinput.Model
	active int

	// ErrorMessage is shown inline below the fields until the next
	// apply attempt succeeds.
	ErrorMessage string
}

func NewConfigPopupState(cfg config.Config) *ConfigPopupState {
	s := &ConfigPopupState{}

	for i := range s.fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 200
		ti.Width = 56
		s.fields[i] = ti
	}
	s.fields[fieldGitlabToken].EchoMode = textinput.EchoPassword
	s.fields[fieldGitlabToken].EchoCharacter = '*'

	s.fields[fieldGitlabURL].SetValue(cfg.GitlabURL)
	s.fields[fieldGitlabToken].SetValue(cfg.GitlabToken)
	s.fields[fieldSearchFilter].SetValue(cfg.Filter())
	s.fields[fieldLogLevel].SetValue(cfg.LogLevel)

	s.fields[s.active].Focus()
	return s
}

// Config assembles a configuration from the current field contents,
// trimming surrounding whitespace.
func (s *ConfigPopupState) Config() config.Config {
	cfg := config.Config{
		GitlabURL:   strings.TrimSpace(s.fields[fieldGitlabURL].Value()),
		GitlabToken: strings.TrimSpace(s.fields[fieldGitlabToken].Value()),
		LogLevel:    strings.TrimSpace(s.fields[fieldLogLevel].Value()),
	}
	cfg.SetFilter(strings.TrimSpace(s.fields[fieldSearchFilter].Value()))
	return cfg
}

// ActiveField returns the index of the focused field.
func (s *ConfigPopupState) ActiveField() int { return s.active }

// FieldNext focuses the next field, wrapping around.
func (s *ConfigPopupState) FieldNext() { s.focus(modulo(s.active+1, configFieldCount)) }

// FieldPrev focuses the previous field, wrapping around.
func (s *ConfigPopupState) FieldPrev() { s.focus(modulo(s.active-1, configFieldCount)) }

func (s *ConfigPopupState) focus(idx int) {
	s.fields[s.active].Blur()
	s.active = idx
	s.fields[s.active].Focus()
}

// HandleKey forwards a key to the focused text field.
func (s *ConfigPopupState) HandleKey(msg tea.KeyMsg) {
	s.fields[s.active], _ = s.fields[s.active].Update(msg)
}
