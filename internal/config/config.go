// Package config loads studylog's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appDir = "studylog"

// Config holds file locations and logging options. Every key is optional.
type Config struct {
	DBPath    string `yaml:"db_path"`
	LogPath   string `yaml:"log_path"`
	LogLevel  string `yaml:"log_level"`
	ExportDir string `yaml:"export_dir"`
}

// DefaultPath returns ~/.config/studylog/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, "config.yaml"), nil
}

// Defaults returns the configuration used when no file exists.
func Defaults() (Config, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Config{}, fmt.Errorf("locate config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("locate home dir: %w", err)
	}
	return Config{
		DBPath:    filepath.Join(dir, appDir, "studylog.db"),
		LogPath:   filepath.Join(dir, appDir, "studylog.log"),
		LogLevel:  "info",
		ExportDir: home,
	}, nil
}

// Load reads path over the defaults and applies STUDYLOG_DB and
// STUDYLOG_LOG_LEVEL. An empty path means DefaultPath. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return Config{}, err
	}

	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return Config{}, fmt.Errorf("locate config file: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.merge(file)
	}

	cfg.DBPath = getEnv("STUDYLOG_DB", cfg.DBPath)
	cfg.LogLevel = getEnv("STUDYLOG_LOG_LEVEL", cfg.LogLevel)

	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogPath = expandHome(cfg.LogPath)
	cfg.ExportDir = expandHome(cfg.ExportDir)
	return cfg, nil
}

// Write saves cfg as YAML, creating the directory if needed.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) merge(o Config) {
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.LogPath != "" {
		c.LogPath = o.LogPath
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.ExportDir != "" {
		c.ExportDir = o.ExportDir
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
