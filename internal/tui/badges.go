package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/achievement"
	"github.com/sadopc/studylog/internal/stats"
	"github.com/sadopc/studylog/internal/study"
)

type badgesModel struct {
	state  *study.State
	width  int
	height int

	nav    weekNav
	week   stats.WeekView
	badges []achievement.Badge
}

func newBadgesModel(state *study.State) badgesModel {
	return badgesModel{state: state}
}

func (b *badgesModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

// refresh re-evaluates every badge against the selected week.
func (b *badgesModel) refresh() {
	b.week = b.nav.data(b.state)
	b.badges = achievement.Evaluate(b.week.Metrics())
}

func (b badgesModel) update(msg tea.Msg) (badgesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if b.nav.update(msg) {
			b.refresh()
		}
	}
	return b, nil
}

func (b badgesModel) view() string {
	w := b.width - 4

	unlocked := achievement.UnlockedCount(b.badges)
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Badges"), "  ",
		highlightStyle.Render(fmt.Sprintf("Unlocked %d / %d", unlocked, len(b.badges))), "  ",
		mutedStyle.Render(b.nav.label(b.week.Week)),
	)

	cardWidth := max(24, (w-8)/2)
	var cards []string
	for _, badge := range b.badges {
		cards = append(cards, renderBadge(badge, cardWidth))
	}

	var grid []string
	for i := 0; i < len(cards); i += 2 {
		row := cards[i:min(i+2, len(cards))]
		grid = append(grid, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	nav := mutedStyle.Render("  Badges reflect the selected week only.  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(grid, "\n"), "", nav),
	)
}

func renderBadge(b achievement.Badge, w int) string {
	status := mutedStyle.Render("locked")
	style := badgeLockedStyle
	if b.Unlocked {
		status = successStyle.Render("✓ unlocked")
		style = badgeUnlockedStyle
	}
	title := titleStyle.Render(b.Title)
	progressLine := mutedStyle.Render(fmt.Sprintf("%d / %d %s", min(b.Progress, b.Threshold), b.Threshold, metricUnit(b.Metric)))

	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+status,
		b.Description,
		progressLine,
	))
}

func metricUnit(m achievement.Metric) string {
	switch m {
	case achievement.MetricDoneGoals:
		return "goals"
	case achievement.MetricStudyMinutes:
		return "min"
	case achievement.MetricStudyDays:
		return "days"
	}
	return ""
}
