// Package home is the dashboard: today's progress, the week at a glance
// and the main menu.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/screens/friends"
	"github.com/blink-new/studytrack/internal/screens/history"
	"github.com/blink-new/studytrack/internal/screens/leaderboard"
	"github.com/blink-new/studytrack/internal/screens/materials"
	"github.com/blink-new/studytrack/internal/screens/profile"
	"github.com/blink-new/studytrack/internal/screens/quizzes"
	"github.com/blink-new/studytrack/internal/screens/timer"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/stats"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

type loadedMsg struct {
	summary stats.Summary
	profile ledger.Profile
	err     error
}

// HomeScreen is the dashboard.
type HomeScreen struct {
	deps    *screen.Deps
	menu    components.Menu
	summary stats.Summary
	name    string
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates the dashboard.
func New(deps *screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	open := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd { return router.Open(build()) }
	}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Study Timer", Action: open(func() screen.Screen { return timer.New(deps) })},
		{Label: "Session History", Action: open(func() screen.Screen { return history.New(deps) })},
		{Label: "Materials", Action: open(func() screen.Screen { return materials.New(deps) })},
		{Label: "Quizzes", Action: open(func() screen.Screen { return quizzes.New(deps) })},
		{Label: "Leaderboard", Action: open(func() screen.Screen { return leaderboard.New(deps) })},
		{Label: "Friends", Action: open(func() screen.Screen { return friends.New(deps) })},
		{Label: "Profile", Action: open(func() screen.Screen { return profile.New(deps) })},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads the dashboard after returning from another screen.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		snap, err := deps.Snapshot(context.Background())
		if err != nil {
			return loadedMsg{err: err}
		}
		var p ledger.Profile
		if snap.Profile != nil {
			p = *snap.Profile
		}
		sum := deps.Engine.Summarize(p, snap.Sessions, deps.Today(), deps.GoalHours)
		return loadedMsg{summary: sum, profile: p}
	}
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		h.loaded = true
		if msg.err != nil {
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.summary = msg.summary
		h.name = msg.profile.DisplayName
		p := msg.profile
		return h, func() tea.Msg { return screen.ProfileChangedMsg{Profile: p} }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	if h.errMsg != "" {
		return layout.Centered(theme.ErrorText.Render("Could not load your ledger: "+h.errMsg), width, height)
	}
	if !h.loaded {
		return layout.Centered(theme.Muted.Render("Loading..."), width, height)
	}

	stats := theme.Card.Render(h.renderStats())
	menu := theme.Card.Render(h.renderMenu())

	var body string
	if layout.IsCompactWidth(width) {
		body = lipgloss.JoinVertical(lipgloss.Left, menu, stats)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, stats, "  ", menu)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (h *HomeScreen) renderMenu() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Welcome back, %s", h.name)))
	b.WriteString("\n\n")
	if st := h.deps.Controller.Status(); st.State != session.Idle {
		b.WriteString(theme.Highlight.Render(fmt.Sprintf("● %s %s (%s)",
			st.Subject, session.FormatElapsed(st.Elapsed), st.State)))
		b.WriteString("\n\n")
	}
	b.WriteString(h.menu.View())
	return b.String()
}

func (h *HomeScreen) renderStats() string {
	s := h.summary
	var b strings.Builder

	b.WriteString(theme.Heading.Render("Today's Goal"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%.1fh of %.1fh\n", s.TodayHours, s.GoalHours))
	b.WriteString(components.NewProgressBar("", s.GoalProgress, true, 36).View())
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(theme.Muted.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(theme.Body.Render(value))
		b.WriteString("\n")
	}
	row("This week", fmt.Sprintf("%.1fh", s.WeeklyHours))
	row("Streak", fmt.Sprintf("%d days", s.Streak))
	row("Level", fmt.Sprintf("%d (%d pts)", s.Level, s.Points))
	row("Total", fmt.Sprintf("%.1fh in %d sessions", s.TotalHours, s.SessionCount))

	minutes := make([]int, len(s.LastWeek))
	var days []string
	for i, d := range s.LastWeek {
		minutes[i] = d.Minutes
		days = append(days, weekdayInitial(d.Date))
	}
	b.WriteString("\n")
	b.WriteString(theme.Heading.Render("Last 7 days"))
	b.WriteString("\n")
	b.WriteString(theme.Warning.Render(components.Sparkline(minutes)))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(strings.Join(days, "")))
	b.WriteString("\n")

	if len(s.BySubject) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Top subjects"))
		b.WriteString("\n")
		for _, st := range s.BySubject[:min(3, len(s.BySubject))] {
			b.WriteString(fmt.Sprintf("%-20s %5.1fh\n", components.Truncate(st.Subject, 20), float64(st.Minutes)/60))
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.Heading.Render("Recent sessions"))
	b.WriteString("\n")
	if len(s.Recent) == 0 {
		b.WriteString(theme.Hint.Render("No sessions yet. Start the timer!"))
		b.WriteString("\n")
	}
	for _, rs := range s.Recent {
		b.WriteString(fmt.Sprintf("%s  %-18s %4dm\n", rs.SessionDate, components.Truncate(rs.Subject, 18), rs.DurationMinutes))
	}
	return strings.TrimRight(b.String(), "\n")
}

func weekdayInitial(d ledger.Date) string {
	t, err := d.Time()
	if err != nil {
		return "?"
	}
	return t.Weekday().String()[:1]
}
