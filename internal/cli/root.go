// Package cli wires configuration, logging and storage together and exposes
// the studylog command line: the TUI as the root command plus scripting
// subcommands over the same state.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studylog/internal/config"
	"github.com/sadopc/studylog/internal/logging"
	"github.com/sadopc/studylog/internal/store"
	"github.com/sadopc/studylog/internal/study"
	"github.com/sadopc/studylog/internal/tui"
)

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "studylog",
		Short:         "Track study sessions, daily goals and weekly badges",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			env, err := openEnv(configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			return env.runTUI()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <config dir>/studylog/config.yaml)")

	root.AddCommand(newLogCmd(&configPath))
	root.AddCommand(newGoalCmd(&configPath))
	root.AddCommand(newWeekCmd(&configPath))
	root.AddCommand(newBadgesCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newConfigCmd(&configPath))
	return root
}

// env is one opened instance of the application: config, log file, store,
// snapshot writer and the state loaded from it.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	logF   io.Closer
	store  *store.Store
	writer *store.Writer
	state  *study.State
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, logF, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DBPath, logger)
	if err != nil {
		logF.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	sessions, goals := s.Load()
	w := store.NewWriter(s, logger)
	state := study.NewState(sessions, goals, study.WithRecorder(w))

	logger.Debug("opened", "db", cfg.DBPath, "sessions", len(sessions), "goal_days", len(goals))
	return &env{cfg: cfg, log: logger, logF: logF, store: s, writer: w, state: state}, nil
}

// Close drains pending writes before closing the database.
func (e *env) Close() {
	e.writer.Close()
	if err := e.store.Close(); err != nil {
		e.log.Error("close database", "err", err)
	}
	e.logF.Close()
}

func (e *env) runTUI() error {
	app := tui.NewApp(e.state, e.store, tui.Options{
		ExportDir: e.cfg.ExportDir,
		Logger:    e.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func withEnv(configPath *string, fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(*configPath)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

