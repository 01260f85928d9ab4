package study

import "errors"

var (
	ErrInvalidDuration = errors.New("duration must be greater than 0 minutes")
	ErrInvalidFocus    = errors.New("focus must be between 1 and 5")
	ErrEmptyTitle      = errors.New("goal title is empty")
	ErrNotFound        = errors.New("not found")
)

const (
	MinFocus     = 1
	MaxFocus     = 5
	DefaultFocus = 4
)

// Subjects and Types seed the session form. Stored values are free strings.
var (
	Subjects = []string{"Chinese", "English", "Math", "Science", "History", "Geography", "Civics"}
	Types    = []string{"Reading", "Practice problems", "Memorization", "Reviewing exams", "Other"}
)

// DefaultType is the type preselected on a fresh form.
var DefaultType = Types[1]

// Session is one logged block of study. Duration is in minutes.
type Session struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Subject  string `json:"subject"`
	Duration int    `json:"duration"`
	Type     string `json:"type"`
	Focus    int    `json:"focus"`
	Note     string `json:"note"`
}

// Goal is a checklist item on one day's goal list.
type Goal struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// GoalMap maps a date key to that day's goals, newest first.
// A missing key is the same as an empty list.
type GoalMap map[string][]Goal

// SessionInput carries the editable fields of a session.
type SessionInput struct {
	Subject  string
	Duration int
	Type     string
	Focus    int
	Note     string
}

// Validate checks the fields accepted at the mutation boundary.
func (in SessionInput) Validate() error {
	if in.Duration <= 0 {
		return ErrInvalidDuration
	}
	if in.Focus < MinFocus || in.Focus > MaxFocus {
		return ErrInvalidFocus
	}
	return nil
}
