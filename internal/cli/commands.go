package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sadopc/studylog/internal/achievement"
	"github.com/sadopc/studylog/internal/calendar"
	"github.com/sadopc/studylog/internal/export"
	"github.com/sadopc/studylog/internal/stats"
	"github.com/sadopc/studylog/internal/study"
)

var (
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
)

func newLogCmd(configPath *string) *cobra.Command {
	var in study.SessionInput

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a study session for today",
		RunE: withEnv(configPath, func(cmd *cobra.Command, _ []string, e *env) error {
			s, err := e.state.AddSession(in)
			if err != nil {
				return fmt.Errorf("log session: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged %s %d min (%s) id=%s\n", s.Subject, s.Duration, s.Date, s.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Subject, "subject", study.Subjects[0], "subject: "+strings.Join(study.Subjects, "|"))
	cmd.Flags().IntVar(&in.Duration, "minutes", 0, "duration in minutes (required)")
	cmd.Flags().StringVar(&in.Type, "type", study.DefaultType, "type: "+strings.Join(study.Types, "|"))
	cmd.Flags().IntVar(&in.Focus, "focus", study.DefaultFocus, "focus level 1-5")
	cmd.Flags().StringVar(&in.Note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("minutes")
	return cmd
}

func newGoalCmd(configPath *string) *cobra.Command {
	goal := &cobra.Command{Use: "goal", Short: "Manage daily goals"}

	var date string

	goal.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(configPath, func(cmd *cobra.Command, args []string, e *env) error {
			g, err := e.state.AddGoal(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("add goal: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %q id=%s\n", g.Title, g.ID)
			return nil
		}),
	})

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List goals for a day",
		RunE: withEnv(configPath, func(cmd *cobra.Command, _ []string, e *env) error {
			key, err := dayKey(date, e)
			if err != nil {
				return err
			}
			items := e.state.Goals()[key]
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s  %d/%d done\n", headStyle.Render(key), stats.CountDone(items), len(items))
			if len(items) == 0 {
				_, _ = fmt.Fprintln(out, mutedStyle.Render("no goals"))
			}
			for _, g := range items {
				check := "[ ]"
				if g.Done {
					check = okStyle.Render("[✓]")
				}
				_, _ = fmt.Fprintf(out, "%s %s  %s\n", check, g.Title, mutedStyle.Render(g.ID))
			}
			return nil
		}),
	}
	ls.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a goal between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(configPath, func(cmd *cobra.Command, args []string, e *env) error {
			key, err := dayKey(date, e)
			if err != nil {
				return err
			}
			if err := e.state.ToggleGoal(key, args[0]); err != nil {
				return fmt.Errorf("toggle goal: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "toggled %s\n", args[0])
			return nil
		}),
	}
	toggle.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(configPath, func(cmd *cobra.Command, args []string, e *env) error {
			key, err := dayKey(date, e)
			if err != nil {
				return err
			}
			if err := e.state.DeleteGoal(key, args[0]); err != nil {
				return fmt.Errorf("delete goal: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
	rm.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")

	goal.AddCommand(ls, toggle, rm)
	return goal
}

// dayKey validates a --date value, defaulting to today.
func dayKey(date string, e *env) (string, error) {
	if date == "" {
		return e.state.Today(), nil
	}
	if _, err := calendar.ParseDateKey(date); err != nil {
		return "", fmt.Errorf("invalid --date %q: %w", date, err)
	}
	return date, nil
}

// weekOf returns the rollup for the week offset weeks before the current one.
func weekOf(e *env, offset int) (stats.WeekView, error) {
	if offset < 0 {
		return stats.WeekView{}, errors.New("--offset cannot be negative")
	}
	ref := calendar.WeekBounds(e.state.Now()).Shift(-offset).Monday()
	return stats.Week(e.state.Sessions(), e.state.Goals(), ref), nil
}

func newWeekCmd(configPath *string) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the weekly rollup",
		RunE: withEnv(configPath, func(cmd *cobra.Command, _ []string, e *env) error {
			v, err := weekOf(e, offset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, headStyle.Render(v.Week.Label()))
			_, _ = fmt.Fprintf(out, "total %d min  sessions %d  study days %d  goals %d/%d\n",
				v.TotalMinutes, len(v.Sessions), v.StudyDays, v.DoneGoals, v.TotalGoals)
			_, _ = fmt.Fprintln(out)
			for i, d := range v.Dates {
				bar := strings.Repeat("█", v.Bars[i]/5)
				_, _ = fmt.Fprintf(out, "%s %s %4d min %s\n",
					calendar.ShortWeekdayLabels[i], mutedStyle.Render(d), v.PerDay[i], okStyle.Render(bar))
			}
			if len(v.Subjects) > 0 {
				_, _ = fmt.Fprintln(out)
			}
			for _, s := range v.Subjects {
				_, _ = fmt.Fprintf(out, "%-12s %4d min %5.1f%%\n", s.Subject, s.Minutes, s.Share)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks back from the current week")
	return cmd
}

func newBadgesCmd(configPath *string) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Print this week's achievement badges",
		RunE: withEnv(configPath, func(cmd *cobra.Command, _ []string, e *env) error {
			v, err := weekOf(e, offset)
			if err != nil {
				return err
			}
			badges := achievement.Evaluate(v.Metrics())
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s  unlocked %d / %d\n",
				headStyle.Render(v.Week.Label()), achievement.UnlockedCount(badges), len(badges))
			for _, b := range badges {
				status := mutedStyle.Render("locked  ")
				if b.Unlocked {
					status = okStyle.Render("unlocked")
				}
				_, _ = fmt.Fprintf(out, "%s  %-18s %d/%d  %s\n",
					status, b.Title, min(b.Progress, b.Threshold), b.Threshold, mutedStyle.Render(b.Description))
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks back from the current week")
	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the session log as CSV or JSON",
		RunE: withEnv(configPath, func(cmd *cobra.Command, _ []string, e *env) error {
			f := export.Format(strings.ToLower(format))
			if f != export.CSV && f != export.JSON {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			path := out
			if path == "" {
				path = export.Filename(e.cfg.ExportDir, f, e.state.Now())
			}
			if err := export.Write(f, e.state.Sessions(), e.state.Goals(), path); err != nil {
				return err
			}
			e.log.Info("exported", "path", path, "format", f)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s\n", len(e.state.Sessions()), path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", string(export.CSV), "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <export_dir>/studylog-export-<date>.<ext>)")
	return cmd
}
