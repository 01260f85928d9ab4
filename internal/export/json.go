package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studylog/internal/stats"
	"github.com/sadopc/studylog/internal/study"
)

type jsonExport struct {
	ExportedAt   string        `json:"exported_at"`
	Count        int           `json:"count"`
	TotalMinutes int           `json:"total_minutes"`
	Sessions     []jsonSession `json:"sessions"`
	Goals        study.GoalMap `json:"goals,omitempty"`
}

type jsonSession struct {
	study.Session
	Weekday       string `json:"weekday,omitempty"`
	DurationLabel string `json:"duration_label"`
}

func ToJSON(sessions []study.Session, goals study.GoalMap, path string) error {
	export := jsonExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Count:        len(sessions),
		TotalMinutes: stats.TotalMinutes(sessions),
		Goals:        goals,
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			Session:       s,
			Weekday:       weekday(s.Date),
			DurationLabel: formatDuration(s.Duration),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
