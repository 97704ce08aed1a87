// Package welcome is the splash shown at startup.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 400 * time.Millisecond
	phase2End    = 1000 * time.Millisecond
	totalDur     = 2500 * time.Millisecond
)

const bookArt = `   ___________
  /          /|
 /  ⏱ STUDY  / |
/__________/  |
|          |  /
|__________| /`

var sparkleFrames = []string{"✦", "·"}

type tickMsg time.Time

// WelcomeScreen shows a short splash, then replaces itself with the
// dashboard. Any key skips ahead.
type WelcomeScreen struct {
	name         string
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen greeting name that hands over to the screen
// produced by homeFactory.
func New(name string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		name:        name,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		w.elapsed += tickInterval
		w.tickCount++
		if w.elapsed >= totalDur {
			return w, w.transition()
		}
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	art := lipgloss.NewStyle().Foreground(theme.Secondary).Render(bookArt)
	if w.elapsed >= phase1End {
		sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
		s := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		lines := strings.Split(art, "\n")
		lines[0] = s + " " + lines[0]
		lines[len(lines)-1] = lines[len(lines)-1] + " " + s
		art = strings.Join(lines, "\n")
	}
	sections = append(sections, art)

	if w.elapsed >= phase1End {
		sections = append(sections, "", RenderBanner(width))
	}

	if w.elapsed >= phase2End {
		greeting := "Welcome back!"
		if w.name != "" {
			greeting = "Welcome back, " + w.name + "!"
		}
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(greeting),
			theme.Muted.Render("Track your study time. Build your streak."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
