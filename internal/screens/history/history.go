// Package history lists past study sessions.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/stats"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []ledger.Session
	Err      error
}

// HistoryScreen displays past sessions newest first.
type HistoryScreen struct {
	deps     *screen.Deps
	sessions []ledger.Session
	subjects []string // index 0 is ledger.AllSubjects
	subject  int
	selected int
	expanded map[string]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps *screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		subjects: []string{ledger.AllSubjects},
		expanded: make(map[string]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		snap, err := deps.Snapshot(context.Background())
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Sessions: snap.Sessions}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Notes"},
		{Key: "Tab", Description: "Subject"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

// visible returns the sessions matching the subject filter.
func (s *HistoryScreen) visible() []ledger.Session {
	want := s.subjects[s.subject]
	if want == ledger.AllSubjects {
		return s.sessions
	}
	var out []ledger.Session
	for _, sess := range s.sessions {
		if strings.EqualFold(sess.Subject, want) {
			out = append(out, sess)
		}
	}
	return out
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.subjects = append([]string{ledger.AllSubjects}, ledger.Subjects(ledger.Snapshot{Sessions: msg.Sessions})...)
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		rows := s.visible()
		switch msg.String() {
		case "esc":
			return s, router.Back
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(rows)-1 {
				s.selected++
			}
		case "tab":
			s.subject = components.NextIndex(s.subject, 1, len(s.subjects))
			s.selected = 0
		case "shift+tab":
			s.subject = components.NextIndex(s.subject, -1, len(s.subjects))
			s.selected = 0
		case "enter":
			if s.selected < len(rows) {
				id := rows[s.selected].ID
				s.expanded[id] = !s.expanded[id]
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(theme.ErrorText.Render("Error: "+s.errMsg), width, height)
	}
	if !s.loaded {
		return layout.Centered(theme.Muted.Render("Loading history..."), width, height)
	}
	if len(s.sessions) == 0 {
		return layout.Centered(theme.Hint.Render("No sessions yet. Start the timer!"), width, height)
	}

	rows := s.visible()
	var minutes int
	for _, r := range rows {
		minutes += r.DurationMinutes
	}

	var b strings.Builder
	labels := make([]string, len(s.subjects))
	for i, subj := range s.subjects {
		if subj == ledger.AllSubjects {
			subj = "All"
		}
		labels[i] = components.Truncate(subj, 16)
	}
	b.WriteString(components.Tabs(labels, s.subject))
	b.WriteString("\n\n")
	b.WriteString(theme.Muted.Render(fmt.Sprintf("%d sessions · %.1fh", len(rows), float64(minutes)/60)))
	b.WriteString("\n\n")

	start, end := components.Window(s.selected, len(rows), max(3, height-8))
	for i := start; i < end; i++ {
		sess := rows[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  %-24s %4d min  +%d pts",
			prefix, sess.SessionDate, components.Truncate(sess.Subject, 24),
			sess.DurationMinutes, stats.PointsForSession(sess.DurationMinutes))
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if s.expanded[sess.ID] {
			notes := sess.Notes
			if notes == "" {
				notes = "No notes for this session"
			}
			b.WriteString(theme.Muted.Italic(true).Render("    " + notes))
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.TrimRight(b.String(), "\n"))
}
