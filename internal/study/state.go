// Package study owns the in-memory session log and goal lists and the
// commands that mutate them.
package study

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/studylog/internal/calendar"
)

// Recorder persists whole-collection snapshots. Implementations must not
// block the caller; the returned channel reports the write result and may
// be ignored.
type Recorder interface {
	SaveSessions(sessions []Session) <-chan error
	SaveGoals(goals GoalMap) <-chan error
}

// Clock abstracts time so commands are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// IDFunc returns a fresh opaque identifier.
type IDFunc func() string

func newUUID() string { return uuid.NewString() }

// State is the application state shared by the views. Collections are only
// changed through its methods.
type State struct {
	sessions []Session
	goals    GoalMap

	clock    Clock
	newID    IDFunc
	recorder Recorder
}

// Option configures a State.
type Option func(*State)

func WithClock(c Clock) Option       { return func(s *State) { s.clock = c } }
func WithIDs(f IDFunc) Option        { return func(s *State) { s.newID = f } }
func WithRecorder(r Recorder) Option { return func(s *State) { s.recorder = r } }

// NewState wraps loaded collections. Nil collections start empty.
func NewState(sessions []Session, goals GoalMap, opts ...Option) *State {
	if sessions == nil {
		sessions = []Session{}
	}
	if goals == nil {
		goals = GoalMap{}
	}
	s := &State{
		sessions: sessions,
		goals:    goals,
		clock:    systemClock{},
		newID:    newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the session log, newest first. Callers must not modify it.
func (s *State) Sessions() []Session { return s.sessions }

// Goals returns the goal map. Callers must not modify it.
func (s *State) Goals() GoalMap { return s.goals }

// Now returns the state's current time.
func (s *State) Now() time.Time { return s.clock.Now() }

// Today returns today's date key.
func (s *State) Today() string { return calendar.DateKey(s.clock.Now()) }

// Session looks up a session by id.
func (s *State) Session(id string) (Session, bool) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

// AddSession logs a session for today and puts it first.
func (s *State) AddSession(in SessionInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	sess := Session{
		ID:       s.newID(),
		Date:     s.Today(),
		Subject:  in.Subject,
		Duration: in.Duration,
		Type:     in.Type,
		Focus:    in.Focus,
		Note:     in.Note,
	}
	next := make([]Session, 0, len(s.sessions)+1)
	next = append(next, sess)
	next = append(next, s.sessions...)
	s.sessions = next
	s.saveSessions()
	return sess, nil
}

// UpdateSession replaces every field of a session except its id and date.
func (s *State) UpdateSession(id string, in SessionInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	idx := s.sessionIndex(id)
	if idx < 0 {
		return fmt.Errorf("update session %s: %w", id, ErrNotFound)
	}
	next := append([]Session(nil), s.sessions...)
	sess := &next[idx]
	sess.Subject = in.Subject
	sess.Duration = in.Duration
	sess.Type = in.Type
	sess.Focus = in.Focus
	sess.Note = in.Note
	s.sessions = next
	s.saveSessions()
	return nil
}

// DeleteSession removes a session. Confirmation is the caller's job.
func (s *State) DeleteSession(id string) error {
	idx := s.sessionIndex(id)
	if idx < 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	next := make([]Session, 0, len(s.sessions)-1)
	next = append(next, s.sessions[:idx]...)
	next = append(next, s.sessions[idx+1:]...)
	s.sessions = next
	s.saveSessions()
	return nil
}

// AddGoal puts a new goal at the top of today's list.
func (s *State) AddGoal(title string) (Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Goal{}, ErrEmptyTitle
	}
	g := Goal{ID: s.newID(), Title: title}
	today := s.Today()
	list := make([]Goal, 0, len(s.goals[today])+1)
	list = append(list, g)
	list = append(list, s.goals[today]...)
	s.setGoals(today, list)
	return g, nil
}

// ToggleGoal flips a goal's done flag. The goal stays in the list.
func (s *State) ToggleGoal(date, id string) error {
	idx := goalIndex(s.goals[date], id)
	if idx < 0 {
		return fmt.Errorf("toggle goal %s: %w", id, ErrNotFound)
	}
	list := append([]Goal(nil), s.goals[date]...)
	list[idx].Done = !list[idx].Done
	s.setGoals(date, list)
	return nil
}

// DeleteGoal removes a goal from a day's list.
func (s *State) DeleteGoal(date, id string) error {
	current := s.goals[date]
	idx := goalIndex(current, id)
	if idx < 0 {
		return fmt.Errorf("delete goal %s: %w", id, ErrNotFound)
	}
	list := make([]Goal, 0, len(current)-1)
	list = append(list, current[:idx]...)
	list = append(list, current[idx+1:]...)
	s.setGoals(date, list)
	return nil
}

// setGoals swaps in a new map so snapshots already handed out stay intact.
func (s *State) setGoals(date string, list []Goal) {
	next := make(GoalMap, len(s.goals)+1)
	for k, v := range s.goals {
		next[k] = v
	}
	next[date] = list
	s.goals = next
	if s.recorder != nil {
		s.recorder.SaveGoals(s.goals)
	}
}

func (s *State) saveSessions() {
	if s.recorder != nil {
		s.recorder.SaveSessions(s.sessions)
	}
}

func (s *State) sessionIndex(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func goalIndex(list []Goal, id string) int {
	for i, g := range list {
		if g.ID == id {
			return i
		}
	}
	return -1
}
