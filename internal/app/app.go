// Package app hosts the root Bubble Tea model: the screen router framed by
// the header and footer.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/screens/home"
	"github.com/blink-new/studytrack/internal/screens/welcome"
	"github.com/blink-new/studytrack/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	stats  layout.HeaderStats
	width  int
	height int
}

// New creates the root model. It opens on the splash unless skipSplash,
// and the header starts from profile.
func New(deps *screen.Deps, profile ledger.Profile, skipSplash bool) AppModel {
	homeFactory := func() screen.Screen { return home.New(deps) }
	var first screen.Screen
	if skipSplash {
		first = homeFactory()
	} else {
		first = welcome.New(profile.DisplayName, homeFactory)
	}
	return AppModel{
		router: router.New(first),
		stats:  headerStats(profile),
	}
}

func headerStats(p ledger.Profile) layout.HeaderStats {
	return layout.HeaderStats{Streak: p.StudyStreak, Points: p.Points, Level: p.Level}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.ProfileChangedMsg:
		m.stats = headerStats(msg.Profile)
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.Capturer); ok && c.Capturing() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Back
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// Stats returns the header figures.
func (m AppModel) Stats() layout.HeaderStats {
	return m.stats
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(deps *screen.Deps, profile ledger.Profile, skipSplash bool) error {
	p := tea.NewProgram(New(deps, profile, skipSplash))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
