package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/stats"
	"github.com/sadopc/studylog/internal/study"
)

type todayPane int

const (
	paneGoals todayPane = iota
	paneSessions
)

type todayModel struct {
	state  *study.State
	timer  timerModel
	width  int
	height int

	target int // daily study target, minutes

	pane          todayPane
	goalCursor    int
	sessionCursor int

	formActive bool
	form       *huh.Form
	formKind   formKind

	// Form values as pointers (survive value copies)
	goalTitle *string
	session   sessionFields
	confirmed *bool

	editingID string // session being edited or deleted
}

func newTodayModel(state *study.State, target int) todayModel {
	title := ""
	confirmed := false
	return todayModel{
		state:     state,
		timer:     newTimerModel(state.Now),
		target:    target,
		goalTitle: &title,
		session:   newSessionFields(),
		confirmed: &confirmed,
	}
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d todayModel) isRunning() bool { return d.timer.running() }
func (d todayModel) isPaused() bool  { return d.timer.paused() }
func (d todayModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

// data derives everything the view shows from the current state.
func (d todayModel) data() stats.TodayView {
	return stats.Today(d.state.Sessions(), d.state.Goals(), d.state.Now(), d.target)
}

// goalItems lists open goals first, then completed ones.
func (d todayModel) goalItems(v stats.TodayView) []study.Goal {
	items := make([]study.Goal, 0, v.TotalGoals)
	items = append(items, v.ActiveGoals...)
	return append(items, v.CompletedGoals...)
}

func (d *todayModel) clampCursors(v stats.TodayView) {
	d.goalCursor = min(d.goalCursor, max(0, v.TotalGoals-1))
	d.sessionCursor = min(d.sessionCursor, max(0, len(v.Sessions)-1))
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		if elapsed, stopped := d.timer.tick(); stopped {
			d, cmd := d.showSessionForm(elapsedMinutes(elapsed))
			return d, tea.Batch(cmd, statusCmd("Stopwatch stopped after inactivity", false))
		}
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()
		v := d.data()

		switch {
		case key.Matches(msg, keys.Left):
			d.pane = paneGoals
		case key.Matches(msg, keys.Right):
			d.pane = paneSessions
		case key.Matches(msg, keys.Up):
			if d.pane == paneGoals && d.goalCursor > 0 {
				d.goalCursor--
			}
			if d.pane == paneSessions && d.sessionCursor > 0 {
				d.sessionCursor--
			}
		case key.Matches(msg, keys.Down):
			if d.pane == paneGoals && d.goalCursor < v.TotalGoals-1 {
				d.goalCursor++
			}
			if d.pane == paneSessions && d.sessionCursor < len(v.Sessions)-1 {
				d.sessionCursor++
			}

		case key.Matches(msg, keys.New):
			if d.pane == paneGoals {
				return d.showGoalForm()
			}
			return d.showSessionForm(0)

		case key.Matches(msg, keys.Enter):
			if d.pane == paneGoals {
				return d.toggleGoal(v)
			}
			return d.showEditForm(v)

		case key.Matches(msg, keys.Delete):
			if d.pane == paneGoals {
				return d.deleteGoal(v)
			}
			return d.showDeleteConfirm(v)

		case key.Matches(msg, keys.Start):
			if !d.timer.running() {
				d.timer.start()
				return d, statusCmd("Stopwatch started", false)
			}
		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
		case key.Matches(msg, keys.Stop):
			if d.timer.running() {
				return d.showSessionForm(elapsedMinutes(d.timer.stop()))
			}
		}
	}
	return d, nil
}

func (d todayModel) toggleGoal(v stats.TodayView) (todayModel, tea.Cmd) {
	items := d.goalItems(v)
	if len(items) == 0 {
		return d, nil
	}
	g := items[d.goalCursor]
	if err := d.state.ToggleGoal(v.Date, g.ID); err != nil {
		return d, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return d, nil
}

func (d todayModel) deleteGoal(v stats.TodayView) (todayModel, tea.Cmd) {
	items := d.goalItems(v)
	if len(items) == 0 {
		return d, nil
	}
	g := items[d.goalCursor]
	if err := d.state.DeleteGoal(v.Date, g.ID); err != nil {
		return d, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	d.clampCursors(d.data())
	return d, statusCmd("Goal deleted", false)
}

func (d todayModel) showGoalForm() (todayModel, tea.Cmd) {
	*d.goalTitle = ""
	d.form = newGoalForm(d.goalTitle)
	d.formKind = formNewGoal
	d.formActive = true
	return d, d.form.Init()
}

// showSessionForm opens a blank session form; minutes > 0 prefills the
// duration.
func (d todayModel) showSessionForm(minutes int) (todayModel, tea.Cmd) {
	d.session.reset(minutes)
	d.form = newSessionForm(d.session)
	d.formKind = formNewSession
	d.formActive = true
	d.pane = paneSessions
	return d, d.form.Init()
}

func (d todayModel) showEditForm(v stats.TodayView) (todayModel, tea.Cmd) {
	if len(v.Sessions) == 0 {
		return d, nil
	}
	s := v.Sessions[d.sessionCursor]
	d.session.load(s)
	d.editingID = s.ID
	d.form = newSessionForm(d.session)
	d.formKind = formEditSession
	d.formActive = true
	return d, d.form.Init()
}

func (d todayModel) showDeleteConfirm(v stats.TodayView) (todayModel, tea.Cmd) {
	if len(v.Sessions) == 0 {
		return d, nil
	}
	s := v.Sessions[d.sessionCursor]
	d.editingID = s.ID
	title := fmt.Sprintf("Delete %s, %s?", s.Subject, formatMinutes(s.Duration))
	d.form = newConfirmForm(title, d.confirmed)
	d.formKind = formConfirmDelete
	d.formActive = true
	return d, d.form.Init()
}

func (d todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.closeForm()
			return d, nil
		}
	}
	if _, ok := msg.(tickMsg); ok {
		return d, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		kind := d.formKind
		d.closeForm()
		return d, d.submit(kind)
	case huh.StateAborted:
		d.closeForm()
		return d, nil
	}
	return d, cmd
}

func (d *todayModel) closeForm() {
	d.formActive = false
	d.form = nil
	d.formKind = formNone
}

// submit applies a completed form to the state.
func (d *todayModel) submit(kind formKind) tea.Cmd {
	var (
		err  error
		done string
	)
	switch kind {
	case formNewGoal:
		_, err = d.state.AddGoal(*d.goalTitle)
		done = "Goal added"
		d.pane = paneGoals
		d.goalCursor = 0
	case formNewSession:
		var in study.SessionInput
		if in, err = d.session.input(); err == nil {
			_, err = d.state.AddSession(in)
		}
		done = "Session logged"
		d.sessionCursor = 0
	case formEditSession:
		var in study.SessionInput
		if in, err = d.session.input(); err == nil {
			err = d.state.UpdateSession(d.editingID, in)
		}
		done = "Session updated"
	case formConfirmDelete:
		if !*d.confirmed {
			return nil
		}
		err = d.state.DeleteSession(d.editingID)
		done = "Session deleted"
	default:
		return nil
	}
	d.clampCursors(d.data())

	if err != nil {
		if errors.Is(err, study.ErrNotFound) {
			return statusCmd("That item no longer exists", true)
		}
		return statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return statusCmd(done, false)
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	contentWidth := d.width - 4

	if d.formActive && d.form != nil {
		return d.renderForm(contentWidth)
	}

	v := d.data()
	summary := d.renderSummaryPanel(v, contentWidth)

	half := contentWidth / 2
	goals := d.renderGoalsPanel(v, half)
	sessions := d.renderSessionsPanel(v, contentWidth-half)
	lists := lipgloss.JoinHorizontal(lipgloss.Top, goals, sessions)

	return lipgloss.JoinVertical(lipgloss.Left, summary, lists)
}

func (d todayModel) renderForm(w int) string {
	var title string
	switch d.formKind {
	case formNewGoal:
		title = "New Goal"
	case formNewSession:
		title = "Log Session"
	case formEditSession:
		title = "Edit Session"
	case formConfirmDelete:
		title = "Delete Session"
	}
	content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", d.form.View())
	return activePanelStyle.Width(w).Render(content)
}

func (d todayModel) renderSummaryPanel(v stats.TodayView, w int) string {
	header := fmt.Sprintf("%s  %s", titleStyle.Render(v.Label), highlightStyle.Render(formatMinutes(v.TotalMinutes)))

	barWidth := max(10, min(40, w-30))
	target := progress.New(progress.WithSolidFill(string(colorSuccess)), progress.WithWidth(barWidth))
	goals := progress.New(progress.WithSolidFill(string(colorSecondary)), progress.WithWidth(barWidth))

	targetLine := fmt.Sprintf("%-8s %s %s", "Target", target.ViewAs(v.TargetProgress),
		mutedStyle.Render(fmt.Sprintf("%s / %s", formatMinutes(v.TotalMinutes), formatMinutes(v.TargetMinutes))))
	goalLine := fmt.Sprintf("%-8s %s %s", "Goals", goals.ViewAs(v.GoalProgress),
		mutedStyle.Render(fmt.Sprintf("%d/%d done", v.DoneGoals, v.TotalGoals)))

	rows := []string{header, "", targetLine, goalLine, "", d.renderStopwatch()}
	style := panelStyle
	if d.timer.running() {
		style = activePanelStyle
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderStopwatch() string {
	if !d.timer.running() {
		return mutedStyle.Render("■  00:00:00  press s to start the stopwatch")
	}
	reading := formatDuration(d.timer.currentElapsed())
	if d.timer.paused() {
		label := "PAUSED"
		if d.timer.isIdle {
			label = "IDLE"
		}
		return timerPausedStyle.Render("⏸  "+reading) + "  " + warningStyle.Render(label) +
			mutedStyle.Render("  space: resume  x: stop & log")
	}
	return timerRunningStyle.Render("●  "+reading) + "  " + successStyle.Render("RUNNING") +
		mutedStyle.Render("  space: pause  x: stop & log")
}

func (d todayModel) renderGoalsPanel(v stats.TodayView, w int) string {
	title := titleStyle.Render(fmt.Sprintf("Goals  %d/%d", v.DoneGoals, v.TotalGoals))
	style := panelStyle
	if d.pane == paneGoals {
		style = activePanelStyle
	}

	items := d.goalItems(v)
	if len(items) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No goals for today. Press n to add one.")))
	}

	rows := []string{title, ""}
	for i, g := range items {
		cursor := "  "
		if d.pane == paneGoals && i == d.goalCursor {
			cursor = "> "
		}
		check := "[ ]"
		itemStyle := normalItemStyle
		if g.Done {
			check = "[✓]"
			itemStyle = doneItemStyle
		}
		if cursor == "> " {
			itemStyle = selectedItemStyle
		}
		line := cursor + check + " " + itemStyle.Render(truncate(g.Title, w-14))
		rows = append(rows, line)
	}
	rows = append(rows, "", mutedStyle.Render("  n: add  enter: toggle  d: delete"))
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderSessionsPanel(v stats.TodayView, w int) string {
	title := titleStyle.Render(fmt.Sprintf("Sessions  %d", len(v.Sessions)))
	style := panelStyle
	if d.pane == paneSessions {
		style = activePanelStyle
	}

	if len(v.Sessions) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Nothing logged today. Press n to log a session.")))
	}

	rows := []string{title, ""}
	for i, s := range v.Sessions {
		cursor := "  "
		nameStyle := normalItemStyle
		if d.pane == paneSessions && i == d.sessionCursor {
			cursor = "> "
			nameStyle = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(subjectColor(s.Subject)).Render("●")
		line := fmt.Sprintf("%s%s %s %7s  %s",
			cursor, dot, nameStyle.Render(fmt.Sprintf("%-10s", truncate(s.Subject, 10))),
			formatMinutes(s.Duration), mutedStyle.Render(focusDots(s.Focus)))
		rows = append(rows, line)
		detail := s.Type
		if s.Note != "" {
			detail += " · " + s.Note
		}
		rows = append(rows, mutedStyle.Render("    "+truncate(detail, w-10)))
	}
	rows = append(rows, "", mutedStyle.Render("  n: log  enter: edit  d: delete"))
	return style.Width(w).Render(strings.Join(rows, "\n"))
}
