// Package export writes the session log to CSV and JSON files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sadopc/studylog/internal/calendar"
	"github.com/sadopc/studylog/internal/study"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// Filename returns dir/studylog-export-YYYY-MM-DD.<format>.
func Filename(dir string, f Format, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("studylog-export-%s.%s", calendar.DateKey(now), f))
}

// Write exports in the given format.
func Write(f Format, sessions []study.Session, goals study.GoalMap, path string) error {
	switch f {
	case CSV:
		return ToCSV(sessions, path)
	case JSON:
		return ToJSON(sessions, goals, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func ToCSV(sessions []study.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"ID", "Date", "Weekday", "Subject", "Type", "Duration (min)", "Duration", "Focus", "Note"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			s.Date,
			weekday(s.Date),
			s.Subject,
			s.Type,
			strconv.Itoa(s.Duration),
			formatDuration(s.Duration),
			strconv.Itoa(s.Focus),
			s.Note,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// weekday is empty for keys that do not parse.
func weekday(key string) string {
	t, err := calendar.ParseDateKey(key)
	if err != nil {
		return ""
	}
	return calendar.WeekdayLabel(t)
}

func formatDuration(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
