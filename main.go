// glim is a terminal dashboard for GitLab CI/CD pipelines.
//
// It polls the GitLab REST API for the projects matching the configured
// search filter, keeps their recent pipelines and jobs in memory, and
// renders them as an interactive Bubbletea TUI. On first run, or when
// no configuration file exists yet, a setup screen collects the GitLab
// URL and access token before the dashboard starts.
//
// Usage:
//
//	glim [flags]
//
// Flags:
//
//	-config string     Path to configuration file (default: ~/.config/glim/glim.toml)
//	-print-config-path Print the configuration file path and exit
//	-version           Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"gitlab.com/tinyland/lab/glim/pkg/app"
	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/gitlab"
	"gitlab.com/tinyland/lab/glim/pkg/input"
	"gitlab.com/tinyland/lab/glim/pkg/logging"
	"gitlab.com/tinyland/lab/glim/pkg/notice"
	"gitlab.com/tinyland/lab/glim/pkg/poller"
	"gitlab.com/tinyland/lab/glim/pkg/store"
	"gitlab.com/tinyland/lab/glim/pkg/ui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "Path to configuration file")
	printConfigPath := flag.Bool("print-config-path", false, "Print the configuration file path and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine config path: %v\n", err)
			return 1
		}
	}

	if *printConfigPath {
		fmt.Println(configPath)
		return 0
	}
	if *showVersion {
		fmt.Printf("glim %s (%s)\n", version, commit)
		return 0
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "glim needs an interactive terminal")
		return 1
	}

	cfg, found, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", configPath, err)
		return 1
	}

	logger, closeLogs, err := logging.Setup(logging.FromEnv(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		return 1
	}
	defer closeLogs()

	if !found || cfg.Validate() != nil {
		cfg, err = bootstrap(*cfg, configPath, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if cfg == nil {
			return 0
		}
	}

	logger.Info("starting", "version", version, "config", configPath)

	if err := runDashboard(*cfg, configPath, logger); err != nil {
		logger.Error("fatal", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// bootstrap runs the first-time setup screen. It returns the accepted
// configuration, or nil without error when the user aborted.
func bootstrap(cfg config.Config, configPath string, logger *slog.Logger) (*config.Config, error) {
	logger.Info("no usable config, running setup", "path", configPath)

	b := app.NewBootstrap(cfg, configPath, logger)
	if _, err := tea.NewProgram(b, tea.WithAltScreen()).Run(); err != nil {
		return nil, fmt.Errorf("setup screen failed: %w", err)
	}
	if b.Result == nil {
		logger.Info("setup aborted")
	}
	return b.Result, nil
}

func runDashboard(cfg config.Config, configPath string, logger *slog.Logger) error {
	clientCfg := gitlab.FromConfig(&cfg)
	if os.Getenv("GLIM_DEBUG") == "1" {
		clientCfg.DumpResponses = true
		clientCfg.DumpDir = logging.FromEnv(cfg.LogLevel).Dir
	}

	sender := &programSender{}
	service, err := gitlab.NewService(clientCfg, sender, logger)
	if err != nil {
		return fmt.Errorf("gitlab client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	projects := store.NewProjectStore()
	notices := notice.NewService()
	widgets := ui.NewStatefulWidgets(projects, notices, cfg, logger)
	kernel := app.NewKernel(ctx, projects, service, widgets, cfg, configPath, logger)
	model := app.NewModel(input.NewMultiplexer(), projects, notices, widgets, kernel, logger)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	sender.set(p)

	bg := poller.New(service, sender, logger)
	bg.Start(ctx)
	defer bg.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// programSender forwards background events to the running program. The
// program is constructed after the service that needs a sender, so the
// target is attached late; messages sent before that are dropped.
type programSender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *programSender) set(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *programSender) Send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
