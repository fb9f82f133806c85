package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/gitlab"
	"gitlab.com/tinyland/lab/glim/pkg/input"
	"gitlab.com/tinyland/lab/glim/pkg/ui"
)

// bootstrapRetries bounds the live connection probes per apply attempt.
const bootstrapRetries = 3

// Bootstrap is the first-run screen: just the config popup, shown
// until a configuration passes a live connection check or the user
// gives up. Run it with tea.NewProgram before the main model.
type Bootstrap struct {
	popup      *ui.ConfigPopupState
	processor  *input.ConfigProcessor
	configPath string
	logger     *slog.Logger

	width  int
	height int

	checkLive func(ctx context.Context, cfg config.Config) error

	// Result holds the accepted configuration after the program exits;
	// nil when the user aborted.
	Result *config.Config
}

func NewBootstrap(cfg config.Config, configPath string, logger *slog.Logger) *Bootstrap {
	return &Bootstrap{
		popup:      ui.NewConfigPopupState(cfg),
		processor:  input.NewConfigProcessor(),
		configPath: configPath,
		logger:     logger,
		checkLive:  checkConnectionRetrying,
	}
}

func (b *Bootstrap) Init() tea.Cmd { return nil }

func (b *Bootstrap) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = v.Width, v.Height
		return b, nil
	case tea.KeyMsg:
		if v.String() == "ctrl+c" {
			return b, tea.Quit
		}
	}

	for _, derived := range b.processor.Apply(msg, b) {
		switch derived.(type) {
		case event.ConfigApply:
			if b.apply() {
				return b, tea.Quit
			}
		case event.ConfigClose:
			return b, tea.Quit
		}
	}
	return b, nil
}

// apply validates the popup's contents, probing the live instance, and
// persists them on success. A failure lands in the popup's error line
// and keeps the loop going.
func (b *Bootstrap) apply() bool {
	cfg := b.popup.Config()

	if err := cfg.Validate(); err != nil {
		b.popup.ErrorMessage = err.Error()
		return false
	}
	if err := b.checkLive(context.Background(), cfg); err != nil {
		b.popup.ErrorMessage = err.Error()
		return false
	}
	if err := cfg.Save(b.configPath); err != nil {
		b.popup.ErrorMessage = err.Error()
		return false
	}

	b.logger.Info("configuration created", "path", b.configPath)
	b.Result = &cfg
	return true
}

func (b *Bootstrap) View() string {
	popup := ui.RenderConfigPopup(b.popup)
	if b.width == 0 || b.height == 0 {
		return popup
	}
	return lipgloss.Place(b.width, b.height, lipgloss.Center, lipgloss.Center, popup)
}

// input.Widgets, restricted to the config popup.

func (b *Bootstrap) FilterInputActive() bool                 { return false }
func (b *Bootstrap) MovePipelineSelection(int)               {}
func (b *Bootstrap) MovePipelineActionSelection(int)         {}
func (b *Bootstrap) SelectedPipelineAction() (tea.Msg, bool) { return nil, false }
func (b *Bootstrap) ConfigFieldNext()                        { b.popup.FieldNext() }
func (b *Bootstrap) ConfigFieldPrev()                        { b.popup.FieldPrev() }
func (b *Bootstrap) ConfigHandleKey(msg tea.KeyMsg)          { b.popup.HandleKey(msg) }

// checkConnectionRetrying probes the instance, retrying transient
// failures with exponential backoff. Auth and config errors surface
// immediately.
func checkConnectionRetrying(ctx context.Context, cfg config.Config) error {
	return backoff.Retry(func() error {
		err := checkConnection(ctx, cfg)
		if err == nil {
			return nil
		}
		var apiErr *gitlab.Error
		if errors.As(err, &apiErr) && apiErr.Retryable() {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), bootstrapRetries), ctx))
}
