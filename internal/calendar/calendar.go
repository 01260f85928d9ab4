// Package calendar converts dates into canonical day keys and Monday-start weeks.
package calendar

import (
	"fmt"
	"time"
)

// KeyLayout is the canonical date key format. Keys are fixed-width and
// zero-padded, so lexical order equals chronological order.
const KeyLayout = "2006-01-02"

var weekdayLabels = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ShortWeekdayLabels are the bar labels for a week, Monday first.
var ShortWeekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key into local midnight.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return t, nil
}

// WeekdayLabel returns the display name of t's day of week.
func WeekdayLabel(t time.Time) string {
	return weekdayLabels[t.Weekday()]
}

// DayLabel renders a heading such as "2024-01-01 (Monday)".
func DayLabel(t time.Time) string {
	return fmt.Sprintf("%s (%s)", DateKey(t), WeekdayLabel(t))
}

// MondayOf returns midnight of the Monday on or before t.
// Sunday belongs to the week that ends on it.
func MondayOf(t time.Time) time.Time {
	dow := int(t.Weekday())
	offset := 1 - dow
	if dow == 0 {
		offset = -6
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, offset)
}

// Week is an inclusive Monday..Sunday span of date keys.
type Week struct {
	Start string
	End   string

	monday time.Time
}

// WeekBounds returns the week containing t.
func WeekBounds(t time.Time) Week {
	monday := MondayOf(t)
	return Week{
		Start:  DateKey(monday),
		End:    DateKey(monday.AddDate(0, 0, 6)),
		monday: monday,
	}
}

// Contains reports whether key falls inside the week.
func (w Week) Contains(key string) bool {
	return w.Start <= key && key <= w.End
}

// Monday returns midnight of the week's first day.
func (w Week) Monday() time.Time {
	return w.monday
}

// Dates returns the seven keys of the week, Monday first.
func (w Week) Dates() [7]string {
	var dates [7]string
	for i := range dates {
		dates[i] = DateKey(w.monday.AddDate(0, 0, i))
	}
	return dates
}

// Shift returns the week n weeks later (negative n moves back).
func (w Week) Shift(n int) Week {
	return WeekBounds(w.monday.AddDate(0, 0, 7*n))
}

// Label renders the week as "Jan 1 – Jan 7, 2024".
func (w Week) Label() string {
	sunday := w.monday.AddDate(0, 0, 6)
	return fmt.Sprintf("%s – %s", w.monday.Format("Jan 2"), sunday.Format("Jan 2, 2006"))
}
