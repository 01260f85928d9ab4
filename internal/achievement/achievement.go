// Package achievement evaluates the weekly badge catalog.
//
// Badges are recomputed from the current weekly aggregates every time and
// never stored, so removing data can lock a badge that was unlocked before.
package achievement

// Metrics are the weekly aggregates the rules are evaluated against.
type Metrics struct {
	DoneGoals    int // completed goal items in the week
	StudyMinutes int // sum of session durations in the week
	StudyDays    int // distinct dates in the week with a session
}

// Metric names one of the aggregates.
type Metric int

const (
	MetricDoneGoals Metric = iota
	MetricStudyMinutes
	MetricStudyDays
)

func (m Metric) String() string {
	switch m {
	case MetricDoneGoals:
		return "doneGoals"
	case MetricStudyMinutes:
		return "studyMinutes"
	case MetricStudyDays:
		return "studyDays"
	}
	return "unknown"
}

// Value reads the metric from ms.
func (m Metric) Value(ms Metrics) int {
	switch m {
	case MetricDoneGoals:
		return ms.DoneGoals
	case MetricStudyMinutes:
		return ms.StudyMinutes
	case MetricStudyDays:
		return ms.StudyDays
	}
	return 0
}

// Rule unlocks when its metric reaches Threshold.
type Rule struct {
	ID          string
	Title       string
	Description string
	Metric      Metric
	Threshold   int
}

// Unlocked reports whether ms satisfies the rule.
func (r Rule) Unlocked(ms Metrics) bool {
	return r.Metric.Value(ms) >= r.Threshold
}

// Catalog is the fixed, ordered badge list.
var Catalog = []Rule{
	{ID: "weekly_first_goal", Title: "Off the Mark", Description: "Complete 1 daily goal this week", Metric: MetricDoneGoals, Threshold: 1},
	{ID: "weekly_goal_hunter", Title: "Goal Hunter", Description: "Complete 7 daily goals this week", Metric: MetricDoneGoals, Threshold: 7},
	{ID: "weekly_60", Title: "Warm-up", Description: "Study 60 minutes this week", Metric: MetricStudyMinutes, Threshold: 60},
	{ID: "weekly_300", Title: "Steady 300", Description: "Study 300 minutes this week", Metric: MetricStudyMinutes, Threshold: 300},
	{ID: "weekly_days_3", Title: "Three-Day Streak", Description: "Study on 3 or more days this week", Metric: MetricStudyDays, Threshold: 3},
	{ID: "weekly_days_5", Title: "Heavy Hitter", Description: "Study on 5 or more days this week", Metric: MetricStudyDays, Threshold: 5},
}

// Badge is a rule with its current state.
type Badge struct {
	Rule
	Unlocked bool
	Progress int // current metric value
}

// Evaluate returns one badge per catalog rule, in catalog order.
func Evaluate(ms Metrics) []Badge {
	badges := make([]Badge, len(Catalog))
	for i, r := range Catalog {
		badges[i] = Badge{
			Rule:     r,
			Unlocked: r.Unlocked(ms),
			Progress: r.Metric.Value(ms),
		}
	}
	return badges
}

// UnlockedCount counts unlocked badges.
func UnlockedCount(badges []Badge) int {
	n := 0
	for _, b := range badges {
		if b.Unlocked {
			n++
		}
	}
	return n
}
