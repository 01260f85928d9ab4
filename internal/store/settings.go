package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

type Setting struct {
	Key   string
	Value string
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

const (
	SettingDailyTarget = "daily_goal_minutes"
	SettingIdleTimeout = "idle_timeout"
	SettingIdleAction  = "idle_action"

	DefaultDailyTarget = 120
	MaxDailyTarget     = 24 * 60
)

func validTarget(n int) bool { return n > 0 && n <= MaxDailyTarget }

// DailyTarget returns the daily study target in minutes. When the setting was
// never written the legacy DAILY_GOAL_V1 record is used, then the default.
func (s *Store) DailyTarget() int {
	if v, err := s.GetSetting(SettingDailyTarget); err == nil {
		if n, err := strconv.Atoi(v); err == nil && validTarget(n) {
			return n
		}
		s.log.Warn("ignoring bad daily target setting", "value", v)
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.log.Warn("read daily target", "err", err)
	}

	raw, ok, err := s.Get(KeyLegacyDailyTarget)
	if err != nil {
		s.log.Warn("read legacy daily target", "err", err)
		return DefaultDailyTarget
	}
	if !ok {
		return DefaultDailyTarget
	}
	var f float64
	if err := json.Unmarshal([]byte(raw), &f); err != nil || f < 1 || f > MaxDailyTarget {
		s.log.Warn("ignoring bad legacy daily target", "key", KeyLegacyDailyTarget, "value", raw)
		return DefaultDailyTarget
	}
	return int(math.Round(f))
}

// SetDailyTarget stores the daily study target in minutes.
func (s *Store) SetDailyTarget(minutes int) error {
	if !validTarget(minutes) {
		return fmt.Errorf("daily target must be between 1 and %d minutes, got %d", MaxDailyTarget, minutes)
	}
	return s.SetSetting(SettingDailyTarget, strconv.Itoa(minutes))
}

// IdleTimeout is how long the stopwatch runs without input before it
// pauses itself.
func (s *Store) IdleTimeout() time.Duration {
	v, err := s.GetSetting(SettingIdleTimeout)
	if err != nil {
		return 5 * time.Minute
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(secs) * time.Second
}

// IdleAction is "pause" or "stop".
func (s *Store) IdleAction() string {
	v, err := s.GetSetting(SettingIdleAction)
	if err != nil || (v != "pause" && v != "stop") {
		return "pause"
	}
	return v
}
