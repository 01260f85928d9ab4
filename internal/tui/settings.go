package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/store"
)

// Preferences is the settings storage the TUI edits. *store.Store
// implements it.
type Preferences interface {
	GetAllSettings() ([]store.Setting, error)
	SetSetting(key, value string) error
	DailyTarget() int
	SetDailyTarget(minutes int) error
	IdleTimeout() time.Duration
	IdleAction() string
}

type settingsModel struct {
	prefs  Preferences
	width  int
	height int

	settings   []store.Setting
	target     int
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyTarget *string
	idleTimeout *string
	idleAction  *string
}

func newSettingsModel(p Preferences) settingsModel {
	dt, it, ia := "", "", ""
	return settingsModel{
		prefs:       p,
		dailyTarget: &dt,
		idleTimeout: &it,
		idleAction:  &ia,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	target   int
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.prefs.GetAllSettings()
		return settingsDataMsg{settings: settings, target: s.prefs.DailyTarget()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.target = msg.target
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.dailyTarget = strconv.Itoa(s.prefs.DailyTarget())
	*s.idleTimeout = strconv.Itoa(int(s.prefs.IdleTimeout() / time.Minute))
	*s.idleAction = s.prefs.IdleAction()

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily study target (min)").Value(s.dailyTarget).Validate(validateTarget),
		).Title("Goals"),
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min)").Value(s.idleTimeout).Validate(validateMinutes),
			huh.NewSelect[string]().Title("When idle").
				Options(
					huh.NewOption("Pause the stopwatch", idlePause),
					huh.NewOption("Stop and log the session", idleStop),
				).Value(s.idleAction),
		).Title("Stopwatch"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return settingsSavedMsg{} },
			statusCmd("Settings saved", false),
		)
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	target, err := parseMinutes(*s.dailyTarget)
	if err != nil {
		return err
	}
	if err := s.prefs.SetDailyTarget(target); err != nil {
		return err
	}
	idle, err := parseMinutes(*s.idleTimeout)
	if err != nil {
		return err
	}
	if err := s.prefs.SetSetting(store.SettingIdleTimeout, strconv.Itoa(idle*60)); err != nil {
		return err
	}
	return s.prefs.SetSetting(store.SettingIdleAction, *s.idleAction)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// The effective target, which may come from the default or legacy data.
	rows = append(rows, settingRow("daily target", formatMinutes(s.target)))
	for _, setting := range s.settings {
		if setting.Key == store.SettingDailyTarget {
			continue
		}
		rows = append(rows, settingRow(setting.Key, formatSettingValue(setting.Key, setting.Value)))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func validateTarget(v string) error {
	n, err := parseMinutes(v)
	if err != nil {
		return err
	}
	if n > store.MaxDailyTarget {
		return fmt.Errorf("at most %d minutes", store.MaxDailyTarget)
	}
	return nil
}

func settingRow(k, v string) string {
	label := lipgloss.NewStyle().Width(24).Render(k)
	return fmt.Sprintf("  %s %s", label, highlightStyle.Render(v))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingIdleTimeout:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case store.SettingDailyTarget:
		if mins, err := strconv.Atoi(v); err == nil {
			return formatMinutes(mins)
		}
	}
	return v
}
