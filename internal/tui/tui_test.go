package tui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/studylog/internal/export"
	"github.com/sadopc/studylog/internal/store"
	"github.com/sadopc/studylog/internal/study"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testClock is a settable clock shared by the state and the stopwatch.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestClock(y int, m time.Month, d int) *testClock {
	return &testClock{t: time.Date(y, m, d, 18, 0, 0, 0, time.Local)}
}

// newTestState returns a state on Thursday 2024-01-04 holding two earlier
// sessions that week: 30 minutes Monday and 90 minutes Wednesday.
func newTestState(t *testing.T) (*study.State, *testClock) {
	t.Helper()
	clock := newTestClock(2024, 1, 4)
	sessions := []study.Session{
		{ID: "wed", Date: "2024-01-03", Subject: "Math", Duration: 90, Type: "Reading", Focus: 4},
		{ID: "mon", Date: "2024-01-01", Subject: "English", Duration: 30, Type: "Reading", Focus: 3},
	}
	return study.NewState(sessions, nil, study.WithClock(clock)), clock
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	leftKey  = tea.KeyMsg{Type: tea.KeyLeft}
	rightKey = tea.KeyMsg{Type: tea.KeyRight}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

// ============================================================
// Stopwatch
// ============================================================

func TestTimerStartStop(t *testing.T) {
	clock := newTestClock(2024, 1, 4)
	tm := newTimerModel(clock.Now)
	if tm.running() {
		t.Fatal("timer should start stopped")
	}

	tm.start()
	if !tm.running() || tm.paused() {
		t.Fatal("timer should be running after start")
	}

	clock.advance(25 * time.Minute)
	if got := tm.stop(); got != 25*time.Minute {
		t.Fatalf("stop returned %v, want 25m", got)
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}
}

func TestTimerStopWhenStopped(t *testing.T) {
	tm := newTimerModel(nil)
	if got := tm.stop(); got != 0 {
		t.Fatalf("stop on idle timer returned %v", got)
	}
}

func TestTimerPauseExcludesGap(t *testing.T) {
	clock := newTestClock(2024, 1, 4)
	tm := newTimerModel(clock.Now)
	tm.start()

	clock.advance(10 * time.Minute)
	tm.toggle()
	if !tm.paused() {
		t.Fatal("toggle should pause a running timer")
	}
	clock.advance(30 * time.Minute)
	if got := tm.currentElapsed(); got != 10*time.Minute {
		t.Fatalf("elapsed while paused = %v, want 10m", got)
	}

	tm.toggle()
	clock.advance(5 * time.Minute)
	if got := tm.currentElapsed(); got != 15*time.Minute {
		t.Fatalf("elapsed after resume = %v, want 15m", got)
	}
}

func TestTimerPauseResumeWhenStopped(t *testing.T) {
	tm := newTimerModel(nil)
	tm.pause()
	tm.resume()
	tm.toggle()
	if tm.running() {
		t.Fatal("pause/resume must not start a stopped timer")
	}
}

func TestTimerIdlePause(t *testing.T) {
	clock := newTestClock(2024, 1, 4)
	tm := newTimerModel(clock.Now)
	tm.configure(time.Minute, idlePause)
	tm.start()

	clock.advance(2 * time.Minute)
	if _, stopped := tm.tick(); stopped {
		t.Fatal("pause action must not stop")
	}
	if !tm.paused() || !tm.isIdle {
		t.Fatal("timer should be idle-paused")
	}

	clock.advance(time.Minute)
	tm.recordActivity()
	if tm.paused() || tm.isIdle {
		t.Fatal("activity should resume an idle timer")
	}
}

func TestTimerIdleStop(t *testing.T) {
	clock := newTestClock(2024, 1, 4)
	tm := newTimerModel(clock.Now)
	tm.configure(time.Minute, idleStop)
	tm.start()

	clock.advance(90 * time.Second)
	d, stopped := tm.tick()
	if !stopped || d != 90*time.Second {
		t.Fatalf("tick = %v, %v; want 90s, true", d, stopped)
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}
}

func TestTimerConfigureIgnoresBadValues(t *testing.T) {
	tm := newTimerModel(nil)
	tm.configure(0, "explode")
	if tm.idleTimeout != 5*time.Minute || tm.idleAction != idlePause {
		t.Fatalf("configure accepted bad values: %v %q", tm.idleTimeout, tm.idleAction)
	}
}

func TestElapsedMinutes(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 1},
		{20 * time.Second, 1},
		{89 * time.Second, 1},
		{90 * time.Second, 2},
		{25 * time.Minute, 25},
	}
	for _, tt := range tests {
		if got := elapsedMinutes(tt.d); got != tt.want {
			t.Errorf("elapsedMinutes(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 00m"},
		{125, "2h 05m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.mins); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
}

func TestFocusDots(t *testing.T) {
	if got := focusDots(3); got != "●●●○○" {
		t.Fatalf("focusDots(3) = %q", got)
	}
	if got := focusDots(9); got != "●●●●●" {
		t.Fatalf("focusDots(9) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Geography", 5); got != "Geog…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("Math", 10); got != "Math" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 4 {
		t.Fatalf("expected 4 view names, got %d", len(viewNames))
	}
	if viewNames[viewBadges] != "Badges" {
		t.Fatalf("viewNames[viewBadges] = %q", viewNames[viewBadges])
	}
}

// ============================================================
// Forms
// ============================================================

func TestParseMinutes(t *testing.T) {
	if n, err := parseMinutes(" 45 "); err != nil || n != 45 {
		t.Fatalf("parseMinutes = %d, %v", n, err)
	}
	if _, err := parseMinutes("0"); !errors.Is(err, study.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := parseMinutes("-3"); !errors.Is(err, study.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if err := validateMinutes("abc"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestValidateGoalTitle(t *testing.T) {
	if err := validateGoalTitle(" \t "); !errors.Is(err, study.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if err := validateGoalTitle("read"); err != nil {
		t.Fatal(err)
	}
}

func TestOptionsKeepUnknownValue(t *testing.T) {
	if got := len(options(study.Subjects, "Math")); got != len(study.Subjects) {
		t.Fatalf("expected %d options, got %d", len(study.Subjects), got)
	}
	if got := len(options(study.Subjects, "Latin")); got != len(study.Subjects)+1 {
		t.Fatalf("expected the stored subject to be kept, got %d options", got)
	}
	if got := len(focusOptions()); got != study.MaxFocus {
		t.Fatalf("expected %d focus options, got %d", study.MaxFocus, got)
	}
}

func TestSessionFields(t *testing.T) {
	f := newSessionFields()
	f.reset(25)
	if *f.subject != study.Subjects[0] || *f.typ != study.DefaultType || *f.focus != study.DefaultFocus {
		t.Fatalf("reset defaults = %q %q %d", *f.subject, *f.typ, *f.focus)
	}
	if *f.duration != "25" {
		t.Fatalf("duration = %q, want 25", *f.duration)
	}

	f.load(study.Session{Subject: "Civics", Duration: 40, Type: "Other", Focus: 2, Note: "x"})
	*f.note = "  revised  "
	in, err := f.input()
	if err != nil {
		t.Fatal(err)
	}
	want := study.SessionInput{Subject: "Civics", Duration: 40, Type: "Other", Focus: 2, Note: "  revised  "}
	if in != want {
		t.Fatalf("input = %#v, want %#v", in, want)
	}
}

// ============================================================
// Today
// ============================================================

func TestTodayAddToggleDeleteGoal(t *testing.T) {
	state, _ := newTestState(t)
	d := newTodayModel(state, 120)

	d, _ = d.update(runeKey("n"))
	if !d.formActive || d.formKind != formNewGoal {
		t.Fatal("n on the goals pane should open the goal form")
	}
	*d.goalTitle = "  worksheet 3  "
	d.closeForm()
	d.submit(formNewGoal)

	goals := state.Goals()["2024-01-04"]
	if len(goals) != 1 || goals[0].Title != "worksheet 3" {
		t.Fatalf("goals = %#v", goals)
	}

	d, _ = d.update(enterKey)
	if !state.Goals()["2024-01-04"][0].Done {
		t.Fatal("enter should toggle the goal")
	}

	d, _ = d.update(runeKey("d"))
	if len(state.Goals()["2024-01-04"]) != 0 {
		t.Fatal("d should delete a goal without confirmation")
	}
}

func TestTodayWhitespaceGoalRejected(t *testing.T) {
	state, _ := newTestState(t)
	d := newTodayModel(state, 120)
	*d.goalTitle = "   "

	msg := d.submit(formNewGoal)()
	status, ok := msg.(statusMsg)
	if !ok || !status.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
	if len(state.Goals()["2024-01-04"]) != 0 {
		t.Fatal("whitespace goal must not be added")
	}
}

func TestTodaySessionDeleteNeedsConfirmation(t *testing.T) {
	state, _ := newTestState(t)
	if _, err := state.AddSession(study.SessionInput{Subject: "Math", Duration: 20, Type: "Reading", Focus: 4}); err != nil {
		t.Fatal(err)
	}
	d := newTodayModel(state, 120)

	d, _ = d.update(rightKey)
	d, _ = d.update(runeKey("d"))
	if !d.formActive || d.formKind != formConfirmDelete {
		t.Fatal("d on the sessions pane should ask for confirmation")
	}
	if len(state.Sessions()) != 3 {
		t.Fatal("nothing should be deleted before confirming")
	}

	// Declining keeps the session.
	*d.confirmed = false
	d.submit(formConfirmDelete)
	if len(state.Sessions()) != 3 {
		t.Fatal("declined delete removed a session")
	}

	*d.confirmed = true
	d.submit(formConfirmDelete)
	if len(state.Sessions()) != 2 {
		t.Fatalf("expected 2 sessions after delete, got %d", len(state.Sessions()))
	}
}

func TestTodayEditSession(t *testing.T) {
	state, _ := newTestState(t)
	s, _ := state.AddSession(study.SessionInput{Subject: "Math", Duration: 20, Type: "Reading", Focus: 4})
	d := newTodayModel(state, 120)

	d, _ = d.update(rightKey)
	d, _ = d.update(enterKey)
	if d.formKind != formEditSession || d.editingID != s.ID {
		t.Fatal("enter on a session should open the edit form")
	}
	if *d.session.duration != "20" {
		t.Fatalf("edit form duration = %q", *d.session.duration)
	}

	*d.session.duration = "35"
	d.closeForm()
	d.submit(formEditSession)
	got, _ := state.Session(s.ID)
	if got.Duration != 35 || got.Date != s.Date {
		t.Fatalf("session after edit = %#v", got)
	}
}

func TestTodayEscCancelsForm(t *testing.T) {
	state, _ := newTestState(t)
	d := newTodayModel(state, 120)

	d, _ = d.update(runeKey("n"))
	d, _ = d.update(escKey)
	if d.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestTodayStopwatchPrefillsSession(t *testing.T) {
	state, clock := newTestState(t)
	d := newTodayModel(state, 120)

	d, _ = d.update(runeKey("s"))
	if !d.isRunning() {
		t.Fatal("s should start the stopwatch")
	}
	clock.advance(25 * time.Minute)

	d, _ = d.update(runeKey("x"))
	if d.isRunning() {
		t.Fatal("x should stop the stopwatch")
	}
	if d.formKind != formNewSession || *d.session.duration != "25" {
		t.Fatalf("expected session form with 25 minutes, got kind %d duration %q", d.formKind, *d.session.duration)
	}
}

func TestTodayIdleStopOpensForm(t *testing.T) {
	state, clock := newTestState(t)
	d := newTodayModel(state, 120)
	d.timer.configure(time.Minute, idleStop)

	d, _ = d.update(runeKey("s"))
	clock.advance(2 * time.Minute)
	d, _ = d.update(tickMsg(clock.t))
	if !d.formActive || *d.session.duration != "2" {
		t.Fatalf("idle stop should open the session form, got active=%v duration=%q", d.formActive, *d.session.duration)
	}
}

func TestTodayView(t *testing.T) {
	state, _ := newTestState(t)
	state.AddSession(study.SessionInput{Subject: "Science", Duration: 60, Type: "Reading", Focus: 4})
	state.AddGoal("flashcards")
	d := newTodayModel(state, 120)
	d.setSize(120, 40)

	out := d.view()
	for _, want := range []string{"2024-01-04 (Thursday)", "1h 00m", "flashcards", "Science", "0/1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("today view missing %q", want)
		}
	}
}

// ============================================================
// Week and badges
// ============================================================

func TestWeekRefreshAndNavigate(t *testing.T) {
	state, _ := newTestState(t)
	w := newWeekModel(state)
	w.setSize(100, 30)

	if w.data.TotalMinutes != 120 || w.data.Bars[2] != 100 || w.data.Bars[0] != 33 {
		t.Fatalf("week data = %d %v", w.data.TotalMinutes, w.data.Bars)
	}

	w, _ = w.update(leftKey)
	if w.nav.offset != 1 || w.data.TotalMinutes != 0 {
		t.Fatalf("previous week: offset %d total %d", w.nav.offset, w.data.TotalMinutes)
	}
	if w.data.Week.Start != "2023-12-25" {
		t.Fatalf("previous week starts %s", w.data.Week.Start)
	}

	w, _ = w.update(rightKey)
	w, _ = w.update(rightKey)
	if w.nav.offset != 0 || w.data.TotalMinutes != 120 {
		t.Fatalf("offset must not go into the future: %d", w.nav.offset)
	}

	out := w.view()
	for _, want := range []string{"this week", "2h 00m", "Math", "English"} {
		if !strings.Contains(out, want) {
			t.Fatalf("week view missing %q", want)
		}
	}
}

func TestBadgesRecomputed(t *testing.T) {
	state, _ := newTestState(t)
	b := newBadgesModel(state)
	b.setSize(100, 30)
	b.refresh()

	if !strings.Contains(b.view(), "Unlocked 1 / 6") {
		t.Fatal("expected weekly_60 to be the only unlocked badge")
	}

	// Removing Wednesday's 90 minutes locks it again.
	if err := state.DeleteSession("wed"); err != nil {
		t.Fatal(err)
	}
	b.refresh()
	if !strings.Contains(b.view(), "Unlocked 0 / 6") {
		t.Fatal("badge should re-lock after the data shrinks")
	}
}

// ============================================================
// Settings
// ============================================================

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, val, want string
	}{
		{store.SettingIdleTimeout, "300", "5 min"},
		{store.SettingDailyTarget, "90", "1h 30m"},
		{store.SettingIdleAction, "pause", "pause"},
		{store.SettingIdleTimeout, "abc", "abc"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.val); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.val, got, tt.want)
		}
	}
}

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)
	*m.dailyTarget = "90"
	*m.idleTimeout = "10"
	*m.idleAction = idleStop

	if err := m.saveSettings(); err != nil {
		t.Fatal(err)
	}
	if s.DailyTarget() != 90 || s.IdleTimeout() != 10*time.Minute || s.IdleAction() != idleStop {
		t.Fatalf("saved %d %v %q", s.DailyTarget(), s.IdleTimeout(), s.IdleAction())
	}

	*m.dailyTarget = "0"
	if err := m.saveSettings(); err == nil {
		t.Fatal("expected error for zero target")
	}
	if err := validateTarget("1441"); err == nil {
		t.Fatal("expected error for a target longer than a day")
	}
	if err := validateTarget("1440"); err != nil {
		t.Fatal(err)
	}
}

func TestSettingsRefresh(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)
	m.setSize(100, 30)

	msg := m.refresh()()
	m, _ = m.update(msg)
	if m.target != store.DefaultDailyTarget || len(m.settings) == 0 {
		t.Fatalf("refresh: target %d, %d settings", m.target, len(m.settings))
	}
	if !strings.Contains(m.view(), "2h 00m") {
		t.Fatal("settings view should show the effective daily target")
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) (App, *study.State) {
	t.Helper()
	state, _ := newTestState(t)
	app := NewApp(state, newTestStore(t), Options{ExportDir: t.TempDir()})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), state
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewToday {
		t.Fatal("default view should be today")
	}
	if app.showHelp || app.exportPicking || app.isFormActive() {
		t.Fatal("help, export picker and forms should start hidden")
	}
	if app.today.target != store.DefaultDailyTarget {
		t.Fatalf("today target = %d", app.today.target)
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)

	for v := range viewNames {
		m, _ := app.Update(runeKey(string(rune('1' + v))))
		app = m.(App)
		if app.activeView != viewState(v) {
			t.Fatalf("key %d selected view %d", v+1, app.activeView)
		}
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewToday {
		t.Fatal("tab should wrap around to today")
	}
}

func TestAppSwitchRefreshesWeek(t *testing.T) {
	app, state := newTestApp(t)
	state.AddSession(study.SessionInput{Subject: "Math", Duration: 30, Type: "Reading", Focus: 4})

	m, _ := app.Update(runeKey("2"))
	if got := m.(App).week.data.TotalMinutes; got != 150 {
		t.Fatalf("week total after switch = %d, want 150", got)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	state, _ := newTestState(t)
	app := NewApp(state, newTestStore(t), Options{})
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(statusMsg{text: "test status", isError: true})
	app = m.(App)

	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
	if !app.statusErr {
		t.Fatal("status should be flagged as an error")
	}
}

func TestAppSettingsSavedUpdatesToday(t *testing.T) {
	state, _ := newTestState(t)
	s := newTestStore(t)
	app := NewApp(state, s, Options{})

	s.SetDailyTarget(45)
	m, _ := app.Update(settingsSavedMsg{})
	if got := m.(App).today.target; got != 45 {
		t.Fatalf("today target = %d, want 45", got)
	}
}

func TestAppExport(t *testing.T) {
	app, _ := newTestApp(t)

	m, _ := app.Update(runeKey("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	m, _ = app.Update(downKey)
	app = m.(App)
	m, cmd := app.Update(enterKey)
	app = m.(App)
	if app.exportPicking || cmd == nil {
		t.Fatal("enter should close the picker and start the export")
	}

	msg := cmd()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if !strings.HasSuffix(done.path, "studylog-export-2024-01-04.json") {
		t.Fatalf("export path = %q", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	m, _ = app.Update(done)
	if !strings.Contains(m.(App).status, "Exported to") {
		t.Fatal("status should report the export")
	}
}

func TestAppDoExportError(t *testing.T) {
	app, _ := newTestApp(t)
	app.opts.ExportDir = "/nonexistent/dir"

	msg := app.doExport(export.CSV)()
	if status, ok := msg.(statusMsg); !ok || !status.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestAppFormCapturesKeys(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(runeKey("n"))
	app = m.(App)
	if !app.isFormActive() {
		t.Fatal("n should open a form on the today view")
	}

	// "2" goes to the form, not the tab switcher.
	m, _ = app.Update(runeKey("2"))
	if m.(App).activeView != viewToday {
		t.Fatal("keys should be captured by the active form")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestHelpForEveryView(t *testing.T) {
	for v := range viewNames {
		h := helpFor(viewState(v))
		if len(h.ShortHelp()) == 0 {
			t.Fatalf("view %d has no short help", v)
		}
		for i, g := range h.FullHelp() {
			if len(g) == 0 {
				t.Fatalf("view %d full help group %d is empty", v, i)
			}
		}
	}
}
