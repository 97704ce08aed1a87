// Package profile shows the student's profile, study totals and
// achievement progress, and edits the profile fields.
package profile

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/achievements"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/screens/summary"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

type loadedMsg struct {
	profile      ledger.Profile
	streak       int
	achievements []achievements.Status
	materials    int
	quizzes      int
	err          error
}

// ProfileScreen displays the profile.
type ProfileScreen struct {
	deps   *screen.Deps
	data   loadedMsg
	loaded bool
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)
var _ screen.Refresher = (*ProfileScreen)(nil)

// New creates the profile screen.
func New(deps *screen.Deps) *ProfileScreen {
	return &ProfileScreen{deps: deps}
}

func (s *ProfileScreen) Init() tea.Cmd {
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
		return loadedMsg{
			profile:      p,
			streak:       deps.Engine.CurrentStreak(p, deps.Today()),
			achievements: achievements.Evaluate(achievements.FromSnapshot(snap)),
			materials:    len(snap.Materials),
			quizzes:      len(snap.Quizzes),
		}
	}
}

// Refresh reloads after an edit.
func (s *ProfileScreen) Refresh() tea.Cmd {
	return s.Init()
}

func (s *ProfileScreen) Title() string {
	return "Profile"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "E", Description: "Edit profile"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.data = msg
		s.loaded = true
		return s, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Back
		case "e":
			if s.loaded && s.data.err == nil {
				return s, router.Open(NewEdit(s.deps, s.data.profile))
			}
		}
	}
	return s, nil
}

func (s *ProfileScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered(theme.Muted.Render("Loading profile..."), width, height)
	}
	if s.data.err != nil {
		return layout.Centered(theme.ErrorText.Render("Error: "+s.data.err.Error()), width, height)
	}

	info := theme.Card.Render(s.renderInfo())
	badges := theme.Card.Render(s.renderAchievements())
	var body string
	if layout.IsCompactWidth(width) {
		body = lipgloss.JoinVertical(lipgloss.Left, info, badges)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, info, "  ", badges)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *ProfileScreen) renderInfo() string {
	p := s.data.profile
	var b strings.Builder
	b.WriteString(theme.Title.Render(p.DisplayName))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(p.Email))
	b.WriteString("\n\n")

	row := func(label, value string) {
		if value == "" {
			value = theme.Hint.Render("not set")
		}
		b.WriteString(theme.Muted.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("University", p.University)
	row("Major", p.Major)
	year := ""
	if p.YearOfStudy > 0 {
		year = fmt.Sprintf("Year %d", p.YearOfStudy)
	}
	row("Year", year)
	if p.Bio != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(40).Render(p.Bio))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	row("Level", fmt.Sprintf("%d (%d pts)", p.Level, p.Points))
	row("Streak", fmt.Sprintf("%d days", s.data.streak))
	row("Studied", fmt.Sprintf("%.1fh", p.TotalStudyHours))
	row("Materials", fmt.Sprint(s.data.materials))
	row("Quizzes", fmt.Sprint(s.data.quizzes))
	row("Joined", p.CreatedAt.Format("Jan 2006"))
	return strings.TrimRight(b.String(), "\n")
}

func (s *ProfileScreen) renderAchievements() string {
	var b strings.Builder
	earned := 0
	for _, a := range s.data.achievements {
		if a.Earned {
			earned++
		}
	}
	b.WriteString(theme.Heading.Render(fmt.Sprintf("Achievements %d/%d", earned, len(s.data.achievements))))
	b.WriteString("\n\n")
	for _, a := range s.data.achievements {
		name := fmt.Sprintf("%s %s", a.Kind.Icon(), a.Name)
		if a.Earned {
			b.WriteString(lipgloss.NewStyle().Foreground(summary.RarityColor(a.Rarity)).Bold(true).Render(name))
			b.WriteString(theme.Correct.Render("  ✓"))
		} else {
			b.WriteString(theme.Muted.Render(name))
		}
		b.WriteString(theme.Hint.Render("  " + a.Rarity.DisplayName()))
		b.WriteString("\n")
		b.WriteString(theme.Muted.Render("  " + a.Description))
		b.WriteString("\n  ")
		b.WriteString(components.NewProgressBar("", float64(a.Percent())/100, true, 24).View())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
