package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/calendar"
	"github.com/sadopc/studylog/internal/stats"
	"github.com/sadopc/studylog/internal/study"
)

// weekNav is the ←/→ week offset shared by the Week and Badges views.
// 0 is the current week; it never goes into the future.
type weekNav struct {
	offset int
}

func (n *weekNav) update(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Left):
		n.offset++
		return true
	case key.Matches(msg, keys.Right):
		if n.offset > 0 {
			n.offset--
			return true
		}
	}
	return false
}

func (n weekNav) data(state *study.State) stats.WeekView {
	ref := calendar.WeekBounds(state.Now()).Shift(-n.offset).Monday()
	return stats.Week(state.Sessions(), state.Goals(), ref)
}

func (n weekNav) label(w calendar.Week) string {
	switch n.offset {
	case 0:
		return w.Label() + "  (this week)"
	case 1:
		return w.Label() + "  (last week)"
	}
	return w.Label()
}

type weekModel struct {
	state  *study.State
	width  int
	height int

	nav   weekNav
	data  stats.WeekView
	chart barchart.Model
}

func newWeekModel(state *study.State) weekModel {
	return weekModel{
		state: state,
		chart: barchart.New(60, 12),
	}
}

func (r *weekModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.refresh()
}

// refresh recomputes the rollup from the current state.
func (r *weekModel) refresh() {
	r.data = r.nav.data(r.state)
	r.buildChart()
}

func (r weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if r.nav.update(msg) {
			r.refresh()
		}
	}
	return r, nil
}

func (r *weekModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(r.data.Dates))
	for i := range r.data.Dates {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if r.data.PerDay[i] == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: calendar.ShortWeekdayLabels[i],
			Values: []barchart.BarValue{{
				Name:  calendar.ShortWeekdayLabels[i],
				Value: float64(r.data.Bars[i]),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r weekModel) view() string {
	w := r.width - 4
	v := r.data

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Week"), "  ", mutedStyle.Render(r.nav.label(v.Week)),
	)
	totals := fmt.Sprintf("%s  %s  %s",
		highlightStyle.Render(formatMinutes(v.TotalMinutes)),
		mutedStyle.Render(fmt.Sprintf("%d sessions", len(v.Sessions))),
		mutedStyle.Render(fmt.Sprintf("%d study days", v.StudyDays)),
	)

	nav := mutedStyle.Render("  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, totals, "", r.chart.View(), r.renderDayRow(), "",
			r.renderSubjects(w), "", nav,
		),
	)
}

// renderDayRow lists minutes per day under the chart.
func (r weekModel) renderDayRow() string {
	cells := make([]string, len(r.data.Dates))
	for i := range r.data.Dates {
		cells[i] = fmt.Sprintf("%s %s", calendar.ShortWeekdayLabels[i], formatMinutes(r.data.PerDay[i]))
	}
	return mutedStyle.Render("  " + strings.Join(cells, "  "))
}

func (r weekModel) renderSubjects(w int) string {
	if len(r.data.Subjects) == 0 {
		return mutedStyle.Render("  No sessions this week")
	}

	barWidth := max(10, min(30, w-40))
	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %8s  %s", "Subject", "Time", "Share")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 24+barWidth+6))),
	}
	for _, s := range r.data.Subjects {
		bar := progress.New(progress.WithSolidFill(string(subjectColor(s.Subject))), progress.WithWidth(barWidth), progress.WithoutPercentage())
		dot := lipgloss.NewStyle().Foreground(subjectColor(s.Subject)).Render("●")
		rows = append(rows, fmt.Sprintf("%s %-11s %8s  %s %3.0f%%",
			" "+dot, truncate(s.Subject, 11), formatMinutes(s.Minutes), bar.ViewAs(s.Share/100), s.Share))
	}
	return strings.Join(rows, "\n")
}
