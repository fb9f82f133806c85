package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/gitlab"
	"gitlab.com/tinyland/lab/glim/pkg/id"
	"gitlab.com/tinyland/lab/glim/pkg/notice"
	"gitlab.com/tinyland/lab/glim/pkg/store"
	"gitlab.com/tinyland/lab/glim/pkg/ui"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

type fixture struct {
	kernel  *Kernel
	store   *store.ProjectStore
	notices *notice.Service
	widgets *ui.StatefulWidgets

	opened []string
	copied []string
}

func newFixture(t *testing.T, projects ...domain.Project) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.NewProjectStore()
	if len(projects) > 0 {
		s.Apply(event.ProjectsLoaded{Projects: projects})
	}

	cfg := config.Config{
		GitlabURL:   "https://gitlab.example.com/api/v4",
		GitlabToken: "token",
	}
	service, err := gitlab.NewService(gitlab.FromConfig(&cfg), &recordingSender{}, logger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	n := notice.NewService()
	widgets := ui.NewStatefulWidgets(s, n, cfg, logger)
	widgets.Apply(tea.WindowSizeMsg{Width: 100, Height: 30})

	f := &fixture{store: s, notices: n, widgets: widgets}
	k := NewKernel(context.Background(), s, service, widgets, cfg,
		filepath.Join(t.TempDir(), "glim.toml"), logger)
	k.openURL = func(url string) error {
		f.opened = append(f.opened, url)
		return nil
	}
	k.copyText = func(text string) error {
		f.copied = append(f.copied, text)
		return nil
	}
	k.checkLive = func(context.Context, config.Config) error { return nil }
	f.kernel = k
	return f
}

func project(projectID id.ProjectID, path string, activity time.Time, pipelines ...domain.Pipeline) domain.Project {
	return domain.Project{
		ID:             projectID,
		Path:           path,
		WebURL:         "https://gitlab.example.com/" + path,
		LastActivityAt: activity,
		Pipelines:      pipelines,
	}
}

func TestFetchCutoffPrefersOldestActive(t *testing.T) {
	active := domain.Pipeline{ID: 10, ProjectID: 1, Status: domain.StatusRunning, Source: domain.SourcePush}

	f := newFixture(t,
		project(1, "group/old-active", testNow.Add(-48*time.Hour), active),
		project(2, "group/recent", testNow.Add(-time.Hour)),
	)

	got := f.kernel.fetchCutoff()
	if got == nil || !got.Equal(testNow.Add(-48*time.Hour)) {
		t.Fatalf("cutoff = %v, want oldest active activity", got)
	}
}

func TestFetchCutoffFallsBackToNewestActivity(t *testing.T) {
	f := newFixture(t,
		project(1, "group/alpha", testNow.Add(-48*time.Hour)),
		project(2, "group/beta", testNow.Add(-time.Hour)),
	)

	got := f.kernel.fetchCutoff()
	if got == nil || !got.Equal(testNow.Add(-time.Hour)) {
		t.Fatalf("cutoff = %v, want newest overall activity", got)
	}
}

func TestFetchCutoffNilOnColdStore(t *testing.T) {
	f := newFixture(t)
	if got := f.kernel.fetchCutoff(); got != nil {
		t.Fatalf("cutoff = %v, want nil", got)
	}
}

func TestErrorLogResolvesFailedJob(t *testing.T) {
	failed := domain.Pipeline{
		ID: 10, ProjectID: 1, Status: domain.StatusFailed, Source: domain.SourcePush,
		Jobs: []domain.Job{
			{ID: 100, Name: "build", Status: domain.StatusSuccess},
			{ID: 101, Name: "test", Status: domain.StatusFailed},
		},
	}
	f := newFixture(t, project(1, "group/alpha", testNow, failed))

	msgs := f.kernel.Apply(event.JobLogErrorDownload{Project: 1, Pipeline: 10})
	if len(msgs) != 1 {
		t.Fatalf("derived = %v", msgs)
	}
	fetch, ok := msgs[0].(event.JobLogFetch)
	if !ok || fetch.Job != 101 {
		t.Fatalf("derived = %#v, want JobLogFetch for job 101", msgs[0])
	}
}

func TestErrorLogWithoutFailedJob(t *testing.T) {
	ok := domain.Pipeline{ID: 10, ProjectID: 1, Status: domain.StatusSuccess, Source: domain.SourcePush}
	f := newFixture(t, project(1, "group/alpha", testNow, ok))

	if msgs := f.kernel.Apply(event.JobLogErrorDownload{Project: 1, Pipeline: 10}); msgs != nil {
		t.Fatalf("derived = %v, want none", msgs)
	}
}

func TestJobLogGoesToClipboard(t *testing.T) {
	f := newFixture(t, project(1, "group/alpha", testNow))

	f.kernel.Apply(event.JobLogDownloaded{Project: 1, Job: 100, Trace: "trace text"})
	if len(f.copied) != 1 || f.copied[0] != "trace text" {
		t.Fatalf("copied = %v", f.copied)
	}
}

func TestScreenCapture(t *testing.T) {
	f := newFixture(t, project(1, "group/alpha", testNow))

	msgs := f.kernel.Apply(event.ScreenCapture{})
	if len(msgs) != 1 {
		t.Fatalf("derived = %v", msgs)
	}
	done, ok := msgs[0].(event.ScreenCaptureDone)
	if !ok || !strings.Contains(done.Text, "alpha") {
		t.Fatalf("capture missing table content: %#v", msgs[0])
	}

	f.kernel.Apply(done)
	if len(f.copied) != 1 {
		t.Fatalf("capture not copied: %v", f.copied)
	}
}

func TestBrowserOpensResolvedURLs(t *testing.T) {
	pipeline := domain.Pipeline{
		ID: 10, ProjectID: 1, Status: domain.StatusFailed, Source: domain.SourcePush,
		WebURL: "https://gitlab.example.com/group/alpha/-/pipelines/10",
		Jobs: []domain.Job{
			{ID: 101, Status: domain.StatusFailed, WebURL: "https://gitlab.example.com/group/alpha/-/jobs/101"},
		},
	}
	f := newFixture(t, project(1, "group/alpha", testNow, pipeline))

	f.kernel.Apply(event.ProjectOpenURL{Project: 1})
	f.kernel.Apply(event.PipelineOpenURL{Project: 1, Pipeline: 10})
	f.kernel.Apply(event.JobOpenURL{Project: 1, Pipeline: 10, Job: 101})

	want := []string{
		"https://gitlab.example.com/group/alpha",
		"https://gitlab.example.com/group/alpha/-/pipelines/10",
		"https://gitlab.example.com/group/alpha/-/jobs/101",
	}
	if len(f.opened) != len(want) {
		t.Fatalf("opened = %v", f.opened)
	}
	for i := range want {
		if f.opened[i] != want[i] {
			t.Fatalf("opened[%d] = %q, want %q", i, f.opened[i], want[i])
		}
	}
}

func TestApplyConfigPersistsAndBroadcasts(t *testing.T) {
	f := newFixture(t, project(1, "group/alpha", testNow))

	valid := config.Config{
		GitlabURL:   "https://gitlab.example.com/api/v4",
		GitlabToken: "token",
	}
	f.widgets.Apply(event.ConfigUpdate{Config: valid})
	f.widgets.Apply(event.ConfigOpen{})

	msgs := f.kernel.Apply(event.ConfigApply{})
	if len(msgs) != 2 {
		t.Fatalf("derived = %v", msgs)
	}
	if _, ok := msgs[0].(event.ConfigUpdate); !ok {
		t.Fatalf("first derived = %#v, want ConfigUpdate", msgs[0])
	}
	if _, ok := msgs[1].(event.ConfigClose); !ok {
		t.Fatalf("second derived = %#v, want ConfigClose", msgs[1])
	}

	loaded, found, err := config.Load(f.kernel.configPath)
	if err != nil || !found {
		t.Fatalf("config not written: found=%v err=%v", found, err)
	}
	if loaded.GitlabURL != valid.GitlabURL {
		t.Fatalf("persisted url = %q", loaded.GitlabURL)
	}
}

func TestApplyConfigRejectsInvalid(t *testing.T) {
	f := newFixture(t, project(1, "group/alpha", testNow))
	f.widgets.Apply(event.ConfigOpen{}) // empty fields

	msgs := f.kernel.Apply(event.ConfigApply{})
	if len(msgs) != 1 {
		t.Fatalf("derived = %v", msgs)
	}
	if _, ok := msgs[0].(event.AppError); !ok {
		t.Fatalf("derived = %#v, want AppError", msgs[0])
	}

	if _, found, _ := config.Load(f.kernel.configPath); found {
		t.Fatal("invalid config was persisted")
	}
}

func TestApplyConfigSurfacesLiveCheckFailure(t *testing.T) {
	f := newFixture(t, project(1, "group/alpha", testNow))

	valid := config.Config{
		GitlabURL:   "https://gitlab.example.com/api/v4",
		GitlabToken: "token",
	}
	f.widgets.Apply(event.ConfigUpdate{Config: valid})
	f.widgets.Apply(event.ConfigOpen{})
	f.kernel.checkLive = func(context.Context, config.Config) error {
		return errors.New("connection refused")
	}

	msgs := f.kernel.Apply(event.ConfigApply{})
	if len(msgs) != 1 {
		t.Fatalf("derived = %v", msgs)
	}
	if _, ok := msgs[0].(event.AppError); !ok {
		t.Fatalf("derived = %#v, want AppError", msgs[0])
	}
}

func TestApplyFilterPersistsAndRefetches(t *testing.T) {
	f := newFixture(t, project(1, "group/alpha", testNow))

	msgs := f.kernel.Apply(event.FilterApply{Filter: "frontend"})
	if len(msgs) != 2 {
		t.Fatalf("derived = %v", msgs)
	}
	update, ok := msgs[0].(event.ConfigUpdate)
	if !ok || update.Config.Filter() != "frontend" {
		t.Fatalf("first derived = %#v", msgs[0])
	}
	if _, ok := msgs[1].(event.ProjectsFetch); !ok {
		t.Fatalf("second derived = %#v, want ProjectsFetch", msgs[1])
	}

	loaded, found, err := config.Load(f.kernel.configPath)
	if err != nil || !found {
		t.Fatalf("config not written: found=%v err=%v", found, err)
	}
	if loaded.Filter() != "frontend" {
		t.Fatalf("persisted filter = %q", loaded.Filter())
	}
}
