package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sadopc/studylog/internal/study"
)

// formKind says what a completed form should do.
type formKind int

const (
	formNone formKind = iota
	formNewGoal
	formNewSession
	formEditSession
	formConfirmDelete
)

// sessionFields backs the session form. Pointers survive value copies of
// the owning model.
type sessionFields struct {
	subject  *string
	duration *string
	typ      *string
	focus    *int
	note     *string
}

func newSessionFields() sessionFields {
	subject, duration, typ, note := "", "", "", ""
	focus := study.DefaultFocus
	return sessionFields{
		subject:  &subject,
		duration: &duration,
		typ:      &typ,
		focus:    &focus,
		note:     &note,
	}
}

// reset fills the fields for a fresh session of the given length.
func (f sessionFields) reset(minutes int) {
	*f.subject = study.Subjects[0]
	*f.duration = ""
	if minutes > 0 {
		*f.duration = strconv.Itoa(minutes)
	}
	*f.typ = study.DefaultType
	*f.focus = study.DefaultFocus
	*f.note = ""
}

func (f sessionFields) load(s study.Session) {
	*f.subject = s.Subject
	*f.duration = strconv.Itoa(s.Duration)
	*f.typ = s.Type
	*f.focus = s.Focus
	*f.note = s.Note
}

// input converts the fields. The duration was validated by the form; the
// note is kept exactly as typed.
func (f sessionFields) input() (study.SessionInput, error) {
	mins, err := parseMinutes(*f.duration)
	if err != nil {
		return study.SessionInput{}, err
	}
	return study.SessionInput{
		Subject:  *f.subject,
		Duration: mins,
		Type:     *f.typ,
		Focus:    *f.focus,
		Note:     *f.note,
	}, nil
}

func parseMinutes(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("enter a whole number of minutes")
	}
	if n <= 0 {
		return 0, study.ErrInvalidDuration
	}
	return n, nil
}

func validateMinutes(s string) error {
	_, err := parseMinutes(s)
	return err
}

func validateGoalTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return study.ErrEmptyTitle
	}
	return nil
}

// options builds select options from a catalog, keeping a stored value that
// is no longer in it.
func options(catalog []string, current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(catalog)+1)
	found := false
	for _, c := range catalog {
		opts = append(opts, huh.NewOption(c, c))
		if c == current {
			found = true
		}
	}
	if current != "" && !found {
		opts = append(opts, huh.NewOption(current, current))
	}
	return opts
}

func focusOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, study.MaxFocus)
	for i := study.MinFocus; i <= study.MaxFocus; i++ {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d %s", i, focusDots(i)), i))
	}
	return opts
}

func newSessionForm(f sessionFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Subject").Options(options(study.Subjects, *f.subject)...).Value(f.subject),
			huh.NewInput().Title("Duration (minutes)").Value(f.duration).Validate(validateMinutes),
			huh.NewSelect[string]().Title("Type").Options(options(study.Types, *f.typ)...).Value(f.typ),
			huh.NewSelect[int]().Title("Focus").Options(focusOptions()...).Value(f.focus),
			huh.NewText().Title("Note").Lines(3).Value(f.note),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func newGoalForm(title *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal").Placeholder("e.g. finish worksheet 3").Value(title).Validate(validateGoalTitle),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func newConfirmForm(title string, confirmed *bool) *huh.Form {
	*confirmed = false
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Affirmative("Delete").Negative("Cancel").Value(confirmed),
		),
	).WithShowHelp(true)
}
