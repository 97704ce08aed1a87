// Package leaderboard ranks the signed-in student against the community.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

var periods = []content.Period{content.PeriodWeek, content.PeriodMonth, content.PeriodAll}

var periodLabels = []string{"This Week", "This Month", "All Time"}

type loadedMsg struct {
	you content.LeaderboardEntry
	err error
}

// LeaderboardScreen shows the ranked table.
type LeaderboardScreen struct {
	deps         *screen.Deps
	you          *content.LeaderboardEntry
	period       int
	universities []string // index 0 is content.AllUniversities
	university   int
	errMsg       string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

// New creates the leaderboard screen.
func New(deps *screen.Deps) *LeaderboardScreen {
	return &LeaderboardScreen{
		deps:         deps,
		universities: append([]string{content.AllUniversities}, content.Universities(deps.Content.LeaderboardEntries())...),
	}
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		snap, err := deps.Snapshot(context.Background())
		if err != nil {
			return loadedMsg{err: err}
		}
		var p ledger.Profile
		if snap.Profile != nil {
			p = *snap.Profile
		}
		return loadedMsg{you: content.YouEntry(p, snap.Sessions, deps.Today(), deps.Engine)}
	}
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Period"},
		{Key: "U", Description: "University"},
		{Key: "Esc", Description: "Back"},
	}
}

// Period returns the selected period.
func (s *LeaderboardScreen) Period() content.Period {
	return periods[s.period]
}

// Rows returns the ranked table for the current filters.
func (s *LeaderboardScreen) Rows() []content.Ranked {
	return content.Leaderboard(s.deps.Content, s.Period(), s.universities[s.university], s.you)
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		you := msg.you
		s.you = &you
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Back
		case "right", "l", "tab":
			s.period = components.NextIndex(s.period, 1, len(periods))
		case "left", "h", "shift+tab":
			s.period = components.NextIndex(s.period, -1, len(periods))
		case "1", "2", "3":
			s.period = int(msg.String()[0] - '1')
		case "u":
			s.university = components.NextIndex(s.university, 1, len(s.universities))
		}
	}
	return s, nil
}

func (s *LeaderboardScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(theme.ErrorText.Render("Error: "+s.errMsg), width, height)
	}

	var b strings.Builder
	b.WriteString(components.Tabs(periodLabels, s.period))
	b.WriteString("\n")
	uni := s.universities[s.university]
	if uni == content.AllUniversities {
		uni = "All universities"
	}
	b.WriteString(theme.Muted.Render("University: " + uni))
	b.WriteString("\n\n")

	rows := s.Rows()
	header := fmt.Sprintf("%-5s %-22s %-26s %5s %6s %7s", "Rank", "Name", "University", "Level", "Streak", "Points")
	b.WriteString(theme.Heading.Render(header))
	b.WriteString("\n")

	youIdx := -1
	for i, r := range rows {
		if r.You {
			youIdx = i
		}
	}
	start, end := components.Window(max(youIdx, 0), len(rows), max(3, height-8))
	for i := start; i < end; i++ {
		r := rows[i]
		name := r.Name
		if r.You {
			name += " (you)"
		}
		line := fmt.Sprintf("%-5s %-22s %-26s %5d %5dd %7d",
			rankLabel(r.Rank), components.Truncate(name, 22), components.Truncate(r.University, 26),
			r.Level, r.Streak, r.Points)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case r.You:
			style = theme.Highlight
		case r.Rank <= 3:
			style = style.Foreground(theme.Accent)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.TrimRight(b.String(), "\n"))
}

func rankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("#%d", rank)
}
