// Package stats reduces the session log and goal lists into daily and weekly
// rollups. Every function is pure and leaves its inputs untouched.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/studylog/internal/calendar"
	"github.com/sadopc/studylog/internal/study"
)

// Window selects date keys.
type Window func(dateKey string) bool

// Day selects a single date.
func Day(key string) Window {
	return func(d string) bool { return d == key }
}

// InWeek selects the dates of w.
func InWeek(w calendar.Week) Window {
	return w.Contains
}

// WeekOf selects the Monday-start week containing t.
func WeekOf(t time.Time) Window {
	return InWeek(calendar.WeekBounds(t))
}

// FilterSessions keeps the sessions whose date is in the window, in input order.
func FilterSessions(sessions []study.Session, w Window) []study.Session {
	var out []study.Session
	for _, s := range sessions {
		if w(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// TotalMinutes sums durations.
func TotalMinutes(sessions []study.Session) int {
	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// PerDayMinutes sums durations for each of the seven dates.
func PerDayMinutes(dates [7]string, sessions []study.Session) [7]int {
	var out [7]int
	for _, s := range sessions {
		for i, d := range dates {
			if s.Date == d {
				out[i] += s.Duration
				break
			}
		}
	}
	return out
}

// BarHeights scales each day against the busiest day (at least 1 minute),
// rounded to whole percent. The busiest day is always 100.
func BarHeights(perDay [7]int) [7]int {
	peak := 1
	for _, m := range perDay {
		if m > peak {
			peak = m
		}
	}
	var out [7]int
	for i, m := range perDay {
		out[i] = int(math.Floor(float64(m)/float64(peak)*100 + 0.5))
	}
	return out
}

// SubjectTotal is the minutes studied for one subject.
type SubjectTotal struct {
	Subject string
	Minutes int
}

// SubjectTotals groups durations by subject in first-seen order.
func SubjectTotals(sessions []study.Session) []SubjectTotal {
	var out []SubjectTotal
	index := make(map[string]int)
	for _, s := range sessions {
		i, ok := index[s.Subject]
		if !ok {
			i = len(out)
			index[s.Subject] = i
			out = append(out, SubjectTotal{Subject: s.Subject})
		}
		out[i].Minutes += s.Duration
	}
	return out
}

// SubjectShare is the subject's percentage of grandTotal, capped at 100.
// A zero grand total yields 0.
func SubjectShare(subjectTotal, grandTotal int) float64 {
	if grandTotal <= 0 {
		return 0
	}
	return math.Min(float64(subjectTotal)/float64(grandTotal)*100, 100)
}

// GoalProgress returns done/total clamped to [0,1]; no goals means 0.
func GoalProgress(doneCount, totalCount int) float64 {
	if totalCount <= 0 {
		return 0
	}
	return math.Min(float64(doneCount)/float64(totalCount), 1)
}

// FlattenGoals collects the goals of every date in the window, dates in
// ascending order and each list in its stored order.
func FlattenGoals(goals study.GoalMap, w Window) []study.Goal {
	keys := make([]string, 0, len(goals))
	for k := range goals {
		if w(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []study.Goal
	for _, k := range keys {
		out = append(out, goals[k]...)
	}
	return out
}

// DistinctDays counts the dates that have at least one session.
func DistinctDays(sessions []study.Session) int {
	days := make(map[string]struct{})
	for _, s := range sessions {
		days[s.Date] = struct{}{}
	}
	return len(days)
}

// CountDone counts completed goals.
func CountDone(goals []study.Goal) int {
	n := 0
	for _, g := range goals {
		if g.Done {
			n++
		}
	}
	return n
}
