// Package summary shows what a committed study session earned.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/achievements"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/stats"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	result   session.Result
	unlocked []achievements.Status
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(result session.Result, unlocked []achievements.Status) *SummaryScreen {
	return &SummaryScreen{result: result, unlocked: unlocked}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.Back
		}
	}
	return s, nil
}

// StreakLine describes how the session moved the streak.
func StreakLine(acc stats.Accrual, streak int) string {
	switch acc.Streak {
	case stats.StreakExtended:
		return fmt.Sprintf("Streak extended to %d days!", streak)
	case stats.StreakRestarted:
		return fmt.Sprintf("New streak started (was %d days).", acc.PrevStreak)
	default:
		return fmt.Sprintf("Streak holds at %d days.", streak)
	}
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	center := lipgloss.NewStyle().Width(min(width-8, 60)).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Session complete!"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%s · %d min", res.Session.Subject, res.Session.DurationMinutes)))
	b.WriteString("\n")
	if res.Session.Notes != "" {
		b.WriteString(theme.Muted.Render(res.Session.Notes))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(theme.Highlight.Render(fmt.Sprintf("+%d points", res.PointsEarned())))
	b.WriteString(theme.Muted.Render(fmt.Sprintf("   total %d", res.Profile.Points)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Streak).Render(StreakLine(res.Accrual, res.Profile.StudyStreak)))
	b.WriteString("\n")
	if res.Accrual.LevelUp {
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Level up! %d → %d", res.Accrual.PrevLevel, res.Profile.Level)))
		b.WriteString("\n")
	}

	if len(s.unlocked) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Achievements unlocked"))
		b.WriteString("\n")
		for _, a := range s.unlocked {
			line := fmt.Sprintf("%s %s (%s)", a.Kind.Icon(), a.Name, a.Rarity.DisplayName())
			b.WriteString(lipgloss.NewStyle().Foreground(RarityColor(a.Rarity)).Bold(true).Render(line))
			b.WriteString("\n")
		}
	}

	return layout.Centered(theme.Card.Padding(1, 4).Render(center.Render(strings.TrimRight(b.String(), "\n"))), width, height)
}
