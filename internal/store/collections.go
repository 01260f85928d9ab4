package store

import (
	"encoding/json"
	"log/slog"

	"github.com/sadopc/studylog/internal/logging"
	"github.com/sadopc/studylog/internal/study"
)

// Record keys. The values are JSON documents overwritten as a whole.
const (
	KeySessions = "STUDY_SESSIONS_V1"
	KeyGoals    = "DAILY_GOALS_V1"

	// KeyLegacyDailyTarget holds a bare JSON number of minutes per day.
	// It is only read, as a fallback for the daily target setting.
	KeyLegacyDailyTarget = "DAILY_GOAL_V1"
)

// LoadSessions reads the session log. Missing or unreadable data yields an
// empty log.
func LoadSessions(kv KV, logger *slog.Logger) []study.Session {
	var sessions []study.Session
	if !load(kv, logger, KeySessions, &sessions) || sessions == nil {
		return []study.Session{}
	}
	return sessions
}

// LoadGoals reads the goal map. Missing or unreadable data yields an empty map.
func LoadGoals(kv KV, logger *slog.Logger) study.GoalMap {
	var goals study.GoalMap
	if !load(kv, logger, KeyGoals, &goals) || goals == nil {
		return study.GoalMap{}
	}
	return goals
}

func load(kv KV, logger *slog.Logger, key string, v any) bool {
	if logger == nil {
		logger = logging.Discard()
	}
	raw, ok, err := kv.Get(key)
	if err != nil {
		logger.Warn("read record", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("discarding unreadable record", "key", key, "err", err)
		return false
	}
	return true
}

// Load reads both collections from the store.
func (s *Store) Load() ([]study.Session, study.GoalMap) {
	return LoadSessions(s, s.log), LoadGoals(s, s.log)
}
