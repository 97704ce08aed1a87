package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/ui/theme"
)

const bannerArt = `
 ╔═╗╔╦╗╦ ╦╔╦╗╦ ╦  ╔╦╗╦═╗╔═╗╔═╗╦╔═
 ╚═╗ ║ ║ ║ ║║╚╦╝   ║ ╠╦╝╠═╣║  ╠╩╗
 ╚═╝ ╩ ╚═╝═╩╝ ╩    ╩ ╩╚═╩ ╩╚═╝╩ ╩`

const bannerCompact = "S T U D Y T R A C K"

// RenderBanner returns the StudyTrack banner in the primary color, or a
// compact one for terminals narrower than 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
