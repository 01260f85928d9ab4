package stats

import (
	"time"

	"github.com/sadopc/studylog/internal/achievement"
	"github.com/sadopc/studylog/internal/calendar"
	"github.com/sadopc/studylog/internal/study"
)

// TodayView is what the Today screen shows.
type TodayView struct {
	Date         string
	Label        string
	Sessions     []study.Session
	TotalMinutes int

	ActiveGoals    []study.Goal
	CompletedGoals []study.Goal
	TotalGoals     int
	DoneGoals      int
	GoalProgress   float64

	TargetMinutes  int
	TargetProgress float64
}

// Today builds the view for the day containing now. targetMinutes is the
// daily study target; zero or less disables target progress.
func Today(sessions []study.Session, goals study.GoalMap, now time.Time, targetMinutes int) TodayView {
	key := calendar.DateKey(now)
	todays := FilterSessions(sessions, Day(key))
	total := TotalMinutes(todays)

	v := TodayView{
		Date:          key,
		Label:         calendar.DayLabel(now),
		Sessions:      todays,
		TotalMinutes:  total,
		TargetMinutes: targetMinutes,
	}
	for _, g := range goals[key] {
		if g.Done {
			v.CompletedGoals = append(v.CompletedGoals, g)
		} else {
			v.ActiveGoals = append(v.ActiveGoals, g)
		}
	}
	v.TotalGoals = len(goals[key])
	v.DoneGoals = len(v.CompletedGoals)
	v.GoalProgress = GoalProgress(v.DoneGoals, v.TotalGoals)
	v.TargetProgress = GoalProgress(total, targetMinutes)
	return v
}

// SubjectRow is one line of the weekly subject breakdown.
type SubjectRow struct {
	SubjectTotal
	Share float64
}

// WeekView is the weekly rollup shared by the Week and Badges screens.
type WeekView struct {
	Week         calendar.Week
	Dates        [7]string
	PerDay       [7]int
	Bars         [7]int
	Sessions     []study.Session
	TotalMinutes int
	StudyDays    int
	Subjects     []SubjectRow

	TotalGoals int
	DoneGoals  int
}

// Week builds the rollup for the week containing ref.
func Week(sessions []study.Session, goals study.GoalMap, ref time.Time) WeekView {
	w := calendar.WeekBounds(ref)
	inWeek := InWeek(w)
	weekly := FilterSessions(sessions, inWeek)
	total := TotalMinutes(weekly)

	v := WeekView{
		Week:         w,
		Dates:        w.Dates(),
		Sessions:     weekly,
		TotalMinutes: total,
		StudyDays:    DistinctDays(weekly),
	}
	v.PerDay = PerDayMinutes(v.Dates, weekly)
	v.Bars = BarHeights(v.PerDay)
	for _, st := range SubjectTotals(weekly) {
		v.Subjects = append(v.Subjects, SubjectRow{SubjectTotal: st, Share: SubjectShare(st.Minutes, total)})
	}

	weekGoals := FlattenGoals(goals, inWeek)
	v.TotalGoals = len(weekGoals)
	v.DoneGoals = CountDone(weekGoals)
	return v
}

// Metrics returns the aggregates the achievement rules read.
func (v WeekView) Metrics() achievement.Metrics {
	return achievement.Metrics{
		DoneGoals:    v.DoneGoals,
		StudyMinutes: v.TotalMinutes,
		StudyDays:    v.StudyDays,
	}
}
