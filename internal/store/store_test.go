package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sadopc/studylog/internal/study"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// putJSON stores v under key the way the writer would.
func putJSON(t *testing.T, s *Store, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := s.Set(key, string(data)); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPathPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "studylog.db")
	s, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeySessions, "[]"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen, should not re-migrate or lose data
	s2, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, ok, err := s2.Get(KeySessions)
	if err != nil || !ok || v != "[]" {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Records
// ============================================================

func TestGetMissingRecord(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != "" {
		t.Fatalf("expected missing record, got %q %v", v, ok)
	}
}

func TestSetOverwritesRecord(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "v1")
	s.Set("k", "v2")
	v, ok, _ := s.Get("k")
	if !ok || v != "v2" {
		t.Fatalf("expected v2, got %q", v)
	}
}

func TestStoreImplementsKV(t *testing.T) {
	var _ KV = newTestStore(t)
}

// ============================================================
// Collections
// ============================================================

func TestLoadEmptyStore(t *testing.T) {
	s := newTestStore(t)
	sessions, goals := s.Load()
	if sessions == nil || len(sessions) != 0 {
		t.Fatalf("expected empty non-nil sessions, got %#v", sessions)
	}
	if goals == nil || len(goals) != 0 {
		t.Fatalf("expected empty non-nil goals, got %#v", goals)
	}
}

func TestLoadGarbageYieldsEmpty(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeySessions, "{not json")
	s.Set(KeyGoals, `["wrong", "shape"]`)

	sessions, goals := s.Load()
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
	if len(goals) != 0 {
		t.Fatalf("expected no goals, got %d", len(goals))
	}
}

func TestLoadNullYieldsEmpty(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeySessions, "null")
	s.Set(KeyGoals, "null")

	sessions, goals := s.Load()
	if sessions == nil || goals == nil {
		t.Fatal("expected non-nil empty collections")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := []study.Session{
		{ID: "b", Date: "2024-01-03", Subject: "Math", Duration: 90, Type: "Reading", Focus: 5, Note: "ch. 4"},
		{ID: "a", Date: "2024-01-01", Subject: "English", Duration: 30, Type: "Other", Focus: 3},
	}
	putJSON(t, s, KeySessions, want)
	putJSON(t, s, KeyGoals, study.GoalMap{"2024-01-01": {{ID: "g", Title: "quiz", Done: true}}})

	sessions, goals := s.Load()
	if len(sessions) != 2 || sessions[0] != want[0] || sessions[1] != want[1] {
		t.Fatalf("sessions = %#v", sessions)
	}
	if g := goals["2024-01-01"]; len(g) != 1 || !g[0].Done || g[0].Title != "quiz" {
		t.Fatalf("goals = %#v", goals)
	}
}

func TestStoredSessionFieldNames(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeySessions, `[{"id":"x","date":"2024-01-01","subject":"Math","duration":25,"type":"Reading","focus":4,"note":"n"}]`)

	sessions, _ := s.Load()
	if len(sessions) != 1 || sessions[0].Duration != 25 || sessions[0].Note != "n" {
		t.Fatalf("sessions = %#v", sessions)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"idle_timeout": "300",
		"idle_action":  "pause",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettingsSorted(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(SettingDailyTarget, "90")
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestDailyTarget(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		legacy  string
		want    int
	}{
		{"default", "", "", DefaultDailyTarget},
		{"legacy fallback", "", "90", 90},
		{"setting wins over legacy", "45", "90", 45},
		{"garbled legacy", "", `"soon"`, DefaultDailyTarget},
		{"non-positive legacy", "", "0", DefaultDailyTarget},
		{"garbled setting falls through", "abc", "75", 75},
		{"fractional legacy rounds", "", "89.6", 90},
		{"legacy below one minute", "", "0.5", DefaultDailyTarget},
		{"legacy beyond a day", "", "1e300", DefaultDailyTarget},
		{"setting beyond a day falls through", "5000", "60", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			if tt.setting != "" {
				s.SetSetting(SettingDailyTarget, tt.setting)
			}
			if tt.legacy != "" {
				s.Set(KeyLegacyDailyTarget, tt.legacy)
			}
			if got := s.DailyTarget(); got != tt.want {
				t.Fatalf("DailyTarget() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetDailyTarget(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetDailyTarget(0); err == nil {
		t.Fatal("expected error for zero target")
	}
	if err := s.SetDailyTarget(MaxDailyTarget + 1); err == nil {
		t.Fatal("expected error for a target longer than a day")
	}
	if err := s.SetDailyTarget(150); err != nil {
		t.Fatal(err)
	}
	if got := s.DailyTarget(); got != 150 {
		t.Fatalf("DailyTarget() = %d, want 150", got)
	}
}

func TestIdleSettings(t *testing.T) {
	s := newTestStore(t)
	if got := s.IdleTimeout().Minutes(); got != 5 {
		t.Fatalf("IdleTimeout = %v min, want 5", got)
	}
	if got := s.IdleAction(); got != "pause" {
		t.Fatalf("IdleAction = %q", got)
	}

	s.SetSetting(SettingIdleTimeout, "60")
	s.SetSetting(SettingIdleAction, "stop")
	if got := s.IdleTimeout().Seconds(); got != 60 {
		t.Fatalf("IdleTimeout = %v s, want 60", got)
	}
	if got := s.IdleAction(); got != "stop" {
		t.Fatalf("IdleAction = %q", got)
	}

	s.SetSetting(SettingIdleAction, "explode")
	if got := s.IdleAction(); got != "pause" {
		t.Fatalf("IdleAction = %q, want pause for unknown value", got)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
