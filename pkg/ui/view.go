package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/notice"
)

const timeLayout = "Jan 02 15:04"

// View renders the whole frame: the projects table as the base layer,
// then any open overlays composited on top.
func (w *StatefulWidgets) View() string {
	if w.width < 4 || w.height < 4 {
		return ""
	}

	frame := w.renderProjects()

	if w.logsVisible {
		frame = overlayCenter(frame, w.renderLogs(), w.width, w.height)
	}
	if w.details != nil {
		frame = overlayCenter(frame, w.renderDetails(), w.width, w.height)
	}
	if w.actions != nil {
		frame = overlayCenter(frame, w.renderActions(), w.width, w.height)
	}
	if w.popup != nil {
		frame = overlayCenter(frame, w.renderConfig(), w.width, w.height)
	}
	if w.notification != nil {
		frame = w.overlayNotification(frame)
	}

	return frame
}

func (w *StatefulWidgets) renderProjects() string {
	projects, _ := w.store.Filtered(w.EffectiveFilter())

	var rows []string
	for i := range projects {
		rows = append(rows, w.renderProjectRow(&projects[i], i == w.cursor))
	}
	if len(projects) == 0 {
		rows = append(rows, styleDim.Render("no matching projects"))
	}

	content := strings.Join(rows, "\n")

	bottom := shortcuts(
		"q", "quit",
		"w", "open web",
		"c", "config",
		"a", "last notification",
		"l", "logs",
		"r", "refresh",
		"p", "pipeline refresh",
		"↑ ↓", "selection",
		"↵", "details",
	)
	if w.filterActive {
		bottom = styleAccent.Render("filter: ") + w.filterText + styleAccent.Render("█")
	} else if f := w.EffectiveFilter(); f != "" {
		bottom = styleDim.Render("filter: " + f)
	}

	return box(" gitlab pipelines ", bottom, content, w.width, w.height, w.filterActive)
}

func (w *StatefulWidgets) renderProjectRow(p *domain.Project, selected bool) string {
	marker := "  "
	nameStyle := styleName
	if selected {
		marker = styleSelected.Render("▎ ")
		nameStyle = styleSelected
	}

	activity := styleDim.Render(p.LastActivityAt.Local().Format(timeLayout))
	name := styleDim.Render(p.Namespace()+"/") + nameStyle.Render(p.Name())

	var pipes []string
	for _, pl := range p.FirstPipelinePerBranch(3, nil) {
		pipes = append(pipes, styleDim.Render(pl.Branch)+" "+pl.Icon())
	}

	cells := []string{marker + activity, pad(name, 42)}
	cells = append(cells, strings.Join(pipes, "  "))
	return strings.Join(cells, " ")
}

func (w *StatefulWidgets) renderDetails() string {
	p := &w.details.Project

	var b strings.Builder
	b.WriteString(" " + styleName.Render(p.Name()) + "\n")
	b.WriteString(" " + styleDim.Render(p.Namespace()) + "\n")
	if p.Description != "" {
		b.WriteString(" " + styleDim.Render(p.Description) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(" " + styleAccent.Render(strconv.Itoa(p.CommitCount)) + styleDim.Render(" commits") + "\n")
	b.WriteString(" " + styleAccent.Render(formatSizeKB(p.RepoSizeKB)) + styleDim.Render(" in repository") + "\n")
	b.WriteString(" " + styleAccent.Render(formatSizeKB(p.ArtifactsSizeKB)) + styleDim.Render(" in artifacts") + "\n")
	b.WriteString("\n")

	recent := p.RecentPipelines()
	for i, pl := range recent {
		b.WriteString(renderPipelineRow(pl, i == w.details.cursor))
		b.WriteString("\n")
	}
	if len(recent) == 0 {
		b.WriteString(" " + styleDim.Render("no recent pipelines") + "\n")
	}

	width := min(w.width-4, 100)
	height := min(w.height-2, 11+2*len(recent))
	bottom := shortcuts("ESC", "close", "↑ ↓", "selection", "↵", "actions")
	return box(" project details ", bottom, b.String(), width, height, true)
}

func renderPipelineRow(pl *domain.Pipeline, selected bool) string {
	marker := " "
	if selected {
		marker = styleSelected.Render("▎")
	}

	branch := styleAccent.Render(pad(pl.Branch, 20))
	status := pl.Icon()

	job := ""
	switch {
	case pl.FailedJob() != nil:
		job = styleError.Render(pl.FailedJob().Name)
	case pl.ActiveJob() != nil:
		job = styleWarn.Render(pl.ActiveJob().Name)
	}

	duration := styleDim.Render(formatDuration(pl.Duration()))

	commit := ""
	if pl.Commit != nil {
		commit = styleDim.Render(pl.Commit.Title)
	}

	cells := []string{marker + styleDim.Render(pl.CreatedAt.Local().Format(timeLayout)), branch, status}
	if job != "" {
		cells = append(cells, job)
	}
	cells = append(cells, duration)
	if commit != "" {
		cells = append(cells, commit)
	}
	return strings.Join(cells, " ")
}

func (w *StatefulWidgets) renderActions() string {
	var b strings.Builder
	for i, label := range w.actions.labels {
		if i == w.actions.cursor {
			b.WriteString(styleSelected.Render("▎ " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	bottom := shortcuts("ESC", "close", "↑ ↓", "selection", "↵", "apply")
	return box(" pipeline actions ", bottom, b.String(), 44, 2+len(w.actions.labels), true)
}

func (w *StatefulWidgets) renderConfig() string {
	return RenderConfigPopup(w.popup)
}

// RenderConfigPopup draws the configuration popup. It also serves the
// first-run bootstrap screen, which has no widget layer around it.
func RenderConfigPopup(popup *ConfigPopupState) string {
	var b strings.Builder
	for i := range popup.fields {
		label := configFieldLabels[i]
		if i == popup.active {
			b.WriteString(" " + styleAccent.Render(label) + "\n")
		} else {
			b.WriteString(" " + styleDim.Render(label) + "\n")
		}
		b.WriteString(" " + styleDim.Render(configFieldHints[i]) + "\n")
		b.WriteString(" " + popup.fields[i].View() + "\n")
	}
	if popup.ErrorMessage != "" {
		b.WriteString("\n " + styleError.Render(popup.ErrorMessage) + "\n")
	}

	height := 2 + 3*configFieldCount
	if popup.ErrorMessage != "" {
		height += 2
	}
	bottom := shortcuts("ESC", "close", "↑ ↓", "selection", "↵", "apply")
	return box(" configuration ", bottom, b.String(), 72, height, true)
}

func (w *StatefulWidgets) renderLogs() string {
	width := min(w.width-4, 110)
	height := min(w.height-2, 40)
	visible := height - 2

	lines := w.logs.all()
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(styleDim.Render(line.At.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(line.Message)
		b.WriteString("\n")
	}

	return box(" internal logs ", "", b.String(), width, height, false)
}

// overlayNotification puts the active notice on the top border row,
// centered, so it never hides table content.
func (w *StatefulWidgets) overlayNotification(frame string) string {
	n := w.notification.Notice

	style := styleNotifyInfo
	if n.Level == notice.LevelError {
		style = styleNotifyError
	}
	text := style.Render(ansi.Truncate(n.Message, w.width-4, "…"))

	textW := ansi.StringWidth(text)
	x := (w.width - textW) / 2
	if x < 0 {
		x = 0
	}
	return overlayAt(frame, []string{text}, textW, x, 0)
}

// shortcuts renders alternating key/description pairs for a border
// hint line.
func shortcuts(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(styleAccent.Render(pairs[i]))
		b.WriteString(" ")
		b.WriteString(styleDim.Render(pairs[i+1]))
	}
	return " " + b.String() + " "
}

// pad pads s with spaces to the given display width, truncating when
// it is too long.
func pad(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if n := width - ansi.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
