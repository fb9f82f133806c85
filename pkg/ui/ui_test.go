package ui

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/glim/pkg/config"
	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
	"gitlab.com/tinyland/lab/glim/pkg/notice"
	"gitlab.com/tinyland/lab/glim/pkg/store"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func testWidgets(t *testing.T, projects ...domain.Project) (*StatefulWidgets, *store.ProjectStore) {
	t.Helper()

	s := store.NewProjectStore()
	if len(projects) > 0 {
		s.Apply(event.ProjectsLoaded{Projects: projects})
	}

	n := notice.NewService()
	w := NewStatefulWidgets(s, n, config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.now = func() time.Time { return testNow }
	w.Apply(tea.WindowSizeMsg{Width: 120, Height: 40})
	return w, s
}

// dispatch routes a message the way the kernel does: the notice
// service sees it before the widget layer.
func dispatch(w *StatefulWidgets, msg tea.Msg) []tea.Msg {
	w.notices.Apply(msg)
	return w.Apply(msg)
}

func project(projectID id.ProjectID, path string, pipelines ...domain.Pipeline) domain.Project {
	return domain.Project{
		ID:             projectID,
		Path:           path,
		LastActivityAt: testNow.Add(-time.Hour),
		Pipelines:      pipelines,
	}
}

func pipeline(pipelineID id.PipelineID, projectID id.ProjectID, status domain.PipelineStatus) domain.Pipeline {
	return domain.Pipeline{
		ID:        pipelineID,
		ProjectID: projectID,
		Status:    status,
		Source:    domain.SourcePush,
		Branch:    "main",
		CreatedAt: testNow.Add(-30 * time.Minute),
		UpdatedAt: testNow.Add(-10 * time.Minute),
	}
}

func selections(msgs []tea.Msg) []id.ProjectID {
	var out []id.ProjectID
	for _, m := range msgs {
		if sel, ok := m.(event.ProjectSelected); ok {
			out = append(out, sel.Project)
		}
	}
	return out
}

func TestProjectSelectionClampsAtEnds(t *testing.T) {
	w, _ := testWidgets(t,
		project(1, "group/alpha"),
		project(2, "group/beta"),
	)

	msgs := w.Apply(event.ProjectNext{})
	if got := selections(msgs); len(got) != 1 {
		t.Fatalf("expected one selection, got %v", msgs)
	}
	if w.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", w.Cursor())
	}

	// already at the bottom
	w.Apply(event.ProjectNext{})
	if w.Cursor() != 1 {
		t.Fatalf("cursor moved past end: %d", w.Cursor())
	}

	w.Apply(event.ProjectPrevious{})
	w.Apply(event.ProjectPrevious{})
	if w.Cursor() != 0 {
		t.Fatalf("cursor moved past start: %d", w.Cursor())
	}
}

func TestOpenProjectDetailsSelectsFirstPipeline(t *testing.T) {
	w, _ := testWidgets(t,
		project(1, "group/alpha", pipeline(10, 1, domain.StatusSuccess)),
	)

	msgs := w.Apply(event.ProjectDetailsOpen{Project: 1})

	if w.Details() == nil {
		t.Fatal("details popup not open")
	}
	found := false
	for _, m := range msgs {
		if sel, ok := m.(event.PipelineSelected); ok && sel.Pipeline == 10 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PipelineSelected(10), got %v", msgs)
	}

	w.Apply(event.ProjectDetailsClose{})
	if w.Details() != nil {
		t.Fatal("details popup still open after close")
	}
}

func TestProjectUpdatedRefreshesOpenDetails(t *testing.T) {
	w, _ := testWidgets(t,
		project(1, "group/alpha", pipeline(10, 1, domain.StatusSuccess)),
	)
	w.Apply(event.ProjectDetailsOpen{Project: 1})

	fresh := project(1, "group/alpha-renamed", pipeline(10, 1, domain.StatusSuccess))
	w.Apply(event.ProjectUpdated{Project: fresh})

	if got := w.Details().Project.Path; got != "group/alpha-renamed" {
		t.Fatalf("details snapshot not replaced, path = %q", got)
	}

	// updates for other projects leave the snapshot alone
	w.Apply(event.ProjectUpdated{Project: project(2, "group/beta")})
	if got := w.Details().Project.ID; got != 1 {
		t.Fatalf("details switched project: %v", got)
	}
}

func TestPipelineActionsForFailedPipeline(t *testing.T) {
	failed := pipeline(10, 1, domain.StatusFailed)
	failed.Jobs = []domain.Job{
		{ID: 100, Name: "build", Status: domain.StatusSuccess},
		{ID: 101, Name: "test", Status: domain.StatusFailed},
	}

	w, _ := testWidgets(t, project(1, "group/alpha", failed))
	w.Apply(event.PipelineActionsOpen{Project: 1, Pipeline: 10})

	want := []string{
		"browse to failed job",
		"browse to pipeline",
		"browse to project",
		"download failed job log to clipboard",
	}
	got := w.Actions().Labels()
	if len(got) != len(want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	msg, ok := w.SelectedPipelineAction()
	if !ok {
		t.Fatal("no selected action")
	}
	open, ok := msg.(event.JobOpenURL)
	if !ok || open.Job != 101 {
		t.Fatalf("first action = %#v, want JobOpenURL for job 101", msg)
	}
}

func TestPipelineActionsWithoutFailedJob(t *testing.T) {
	w, _ := testWidgets(t,
		project(1, "group/alpha", pipeline(10, 1, domain.StatusSuccess)),
	)
	w.Apply(event.PipelineActionsOpen{Project: 1, Pipeline: 10})

	got := w.Actions().Labels()
	if len(got) != 2 || got[0] != "browse to pipeline" || got[1] != "browse to project" {
		t.Fatalf("labels = %v", got)
	}

	// cursor wraps in both directions
	w.MovePipelineActionSelection(-1)
	if w.Actions().Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", w.Actions().Cursor())
	}
	w.MovePipelineActionSelection(1)
	if w.Actions().Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", w.Actions().Cursor())
	}
}

func TestPipelineSelectionWrapsAndReports(t *testing.T) {
	w, _ := testWidgets(t,
		project(1, "group/alpha",
			pipeline(10, 1, domain.StatusSuccess),
			func() domain.Pipeline {
				p := pipeline(11, 1, domain.StatusFailed)
				p.Branch = "develop"
				return p
			}(),
		),
	)
	w.Apply(event.ProjectDetailsOpen{Project: 1})

	w.MovePipelineSelection(1)
	msgs := w.Drain()
	if len(msgs) != 1 {
		t.Fatalf("expected one pending message, got %v", msgs)
	}
	if sel, ok := msgs[0].(event.PipelineSelected); !ok || sel.Pipeline == 10 {
		t.Fatalf("unexpected selection %#v", msgs[0])
	}

	w.MovePipelineSelection(1)
	w.Drain()
	if w.Details().Cursor() != 0 {
		t.Fatalf("cursor did not wrap: %d", w.Details().Cursor())
	}
}

func TestFilterInputPreviewThenApply(t *testing.T) {
	w, _ := testWidgets(t,
		project(1, "group/alpha"),
		project(2, "group/beta"),
	)
	w.Apply(event.ProjectNext{})

	w.Apply(event.FilterMenuShow{})
	if !w.FilterInputActive() {
		t.Fatal("filter input not active")
	}

	w.Apply(event.FilterInputChar{Ch: 'b'})
	w.Apply(event.FilterInputChar{Ch: 'e'})
	if w.EffectiveFilter() != "be" {
		t.Fatalf("effective filter = %q, want %q", w.EffectiveFilter(), "be")
	}
	if w.Cursor() != 0 {
		t.Fatalf("cursor not reset on preview: %d", w.Cursor())
	}

	msgs := w.Apply(event.FilterMenuClose{})
	applied := false
	for _, m := range msgs {
		if a, ok := m.(event.FilterApply); ok && a.Filter == "be" {
			applied = true
		}
	}
	if !applied {
		t.Fatalf("expected FilterApply on close, got %v", msgs)
	}
	if w.FilterInputActive() {
		t.Fatal("filter input still active after close")
	}
}

func TestFilterInputCancelDoesNotApply(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	w.Apply(event.FilterMenuShow{})
	w.Apply(event.FilterInputChar{Ch: 'x'})

	// esc reverts the preview before closing
	w.Apply(event.FilterTemporary{Filter: nil})
	msgs := w.Apply(event.FilterMenuClose{})
	for _, m := range msgs {
		if _, ok := m.(event.FilterApply); ok {
			t.Fatalf("cancelled filter was applied: %v", msgs)
		}
	}
	if w.EffectiveFilter() != "" {
		t.Fatalf("filter not reverted: %q", w.EffectiveFilter())
	}
}

func TestFilterBackspace(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	w.Apply(event.FilterMenuShow{})
	w.Apply(event.FilterInputChar{Ch: 'a'})
	w.Apply(event.FilterInputChar{Ch: 'b'})
	w.Apply(event.FilterInputBackspace{})
	if w.FilterText() != "a" {
		t.Fatalf("filter text = %q, want %q", w.FilterText(), "a")
	}

	w.Apply(event.FilterInputBackspace{})
	if w.EffectiveFilter() != "" {
		t.Fatalf("empty input should clear the preview, got %q", w.EffectiveFilter())
	}
}

func TestConfigPopupFieldsAndRoundTrip(t *testing.T) {
	filter := "frontend"
	cfg := config.Config{
		GitlabURL:    "https://gitlab.example.com/api/v4",
		GitlabToken:  "secret",
		SearchFilter: &filter,
		LogLevel:     "Debug",
	}

	w, _ := testWidgets(t, project(1, "group/alpha"))
	w.Apply(event.ConfigUpdate{Config: cfg})
	w.Apply(event.ConfigOpen{})

	popup := w.ConfigPopup()
	if popup == nil {
		t.Fatal("config popup not open")
	}

	got := popup.Config()
	if got.GitlabURL != cfg.GitlabURL || got.GitlabToken != cfg.GitlabToken {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.Filter() != "frontend" || got.LogLevel != "Debug" {
		t.Fatalf("round trip lost filter or level: %+v", got)
	}

	// field cycling wraps both ways
	for i := 0; i < configFieldCount; i++ {
		w.ConfigFieldNext()
	}
	if popup.ActiveField() != 0 {
		t.Fatalf("active field = %d after full cycle", popup.ActiveField())
	}
	w.ConfigFieldPrev()
	if popup.ActiveField() != configFieldCount-1 {
		t.Fatalf("active field = %d, want last", popup.ActiveField())
	}
}

func TestConfigPopupEditsFocusedField(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))
	w.Apply(event.ConfigOpen{})

	w.ConfigHandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("https://x")})
	if got := w.ConfigPopup().Config().GitlabURL; got != "https://x" {
		t.Fatalf("url field = %q", got)
	}
}

func TestConfigPopupShowsErrors(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))
	w.Apply(event.ConfigOpen{})

	w.Apply(event.AppError{Err: errors.New("validation failed")})
	if got := w.ConfigPopup().ErrorMessage; got != "validation failed" {
		t.Fatalf("error message = %q", got)
	}
}

func TestNotificationErrorEvictsInfo(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	dispatch(w, event.JobLogDownloaded{Project: 1, Job: 100})
	n := w.Notification()
	if n == nil || n.Level != notice.LevelInfo {
		t.Fatalf("expected info notice, got %#v", n)
	}

	dispatch(w, event.AppError{Err: errors.New("boom")})
	n = w.Notification()
	if n == nil || n.Level != notice.LevelError {
		t.Fatalf("error did not replace info notice: %#v", n)
	}
}

func TestNotificationAutoDismiss(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	dispatch(w, event.ScreenCaptureDone{Text: "frame"})
	if w.Notification() == nil {
		t.Fatal("notice not shown")
	}

	w.Apply(event.Tick{Time: testNow.Add(noticeDisplayTime + time.Second)})
	if w.Notification() != nil {
		t.Fatal("notice not dismissed after its display time")
	}
}

func TestNotificationRecall(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	dispatch(w, event.ScreenCaptureDone{Text: "frame"})
	w.Apply(event.NotificationDismiss{})
	if w.Notification() != nil {
		t.Fatal("dismiss left the notice visible")
	}

	w.Apply(event.NotificationLast{})
	n := w.Notification()
	if n == nil || n.Message != "Screen captured" {
		t.Fatalf("recall showed %#v", n)
	}
}

func TestInternalLogsDropOldest(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	for i := 0; i < logCap+1; i++ {
		w.Apply(event.LogEntry{Message: "entry"})
	}

	// one over the cap drops the oldest chunk in a single batch
	if got := len(w.logs.all()); got != logCap+1-logDrop {
		t.Fatalf("log count = %d, want %d", got, logCap+1-logDrop)
	}
}

func TestLogsToggle(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	w.Apply(event.LogsToggle{})
	if !w.LogsVisible() {
		t.Fatal("logs overlay not visible after toggle")
	}
	w.Apply(event.LogsToggle{})
	if w.LogsVisible() {
		t.Fatal("logs overlay still visible after second toggle")
	}
}

func TestGlitchOverride(t *testing.T) {
	w, _ := testWidgets(t, project(1, "group/alpha"))

	w.Apply(event.GlitchOverride{State: event.GlitchActive})
	if w.Glitch() != event.GlitchActive {
		t.Fatal("glitch override not recorded")
	}
}
