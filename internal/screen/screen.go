package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/blink-new/studytrack/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that reload their data when they
// become active again after the screen above them is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

// Capturer is implemented by screens with inner modes (a focused text
// field, a detail view, a confirm prompt). While Capturing reports true
// the app forwards esc to the screen instead of popping it.
type Capturer interface {
	Capturing() bool
}
