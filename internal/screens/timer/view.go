package timer

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

// digits is a 3-row block font for the clock face.
var digits = map[rune][3]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {" ▀█", "  █", "  ▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {" ", "▪", "▪"},
}

// bigClock renders an HH:MM:SS string in the block font.
func bigClock(s string) string {
	var rows [3]strings.Builder
	for i, r := range s {
		glyph, ok := digits[r]
		if !ok {
			continue
		}
		for row := range rows {
			if i > 0 {
				rows[row].WriteString(" ")
			}
			rows[row].WriteString(glyph[row])
		}
	}
	return rows[0].String() + "\n" + rows[1].String() + "\n" + rows[2].String()
}

func (s *TimerScreen) View(width, height int) string {
	st := s.ctrl.Status()

	var b strings.Builder
	if st.State == session.Idle {
		b.WriteString(theme.Title.Render("Ready to focus?"))
		b.WriteString("\n\n")
		b.WriteString(s.subject.View())
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Leave blank for " + session.DefaultSubject + "."))
	} else {
		clockStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		stateLabel := theme.Correct.Render("● RUNNING")
		if st.State == session.Paused {
			clockStyle = clockStyle.Foreground(theme.TextDim)
			stateLabel = theme.Warning.Render("❚❚ PAUSED")
		}
		if st.State == session.Stopped || s.saving {
			stateLabel = theme.Muted.Render("saving...")
		}

		b.WriteString(theme.Heading.Render(st.Subject))
		b.WriteString("\n\n")
		b.WriteString(clockStyle.Render(bigClock(session.FormatElapsed(st.Elapsed))))
		b.WriteString("\n\n")
		b.WriteString(stateLabel)
		if st.Notes != "" && s.mode != modeNotes {
			b.WriteString("\n\n")
			b.WriteString(theme.Muted.Render("Notes: " + st.Notes))
		}
		if s.mode == modeNotes {
			b.WriteString("\n\n")
			b.WriteString(s.notes.View())
		}
		if s.mode == modeConfirmDiscard {
			b.WriteString("\n\n")
			b.WriteString(theme.Warning.Render("Discard this session? Nothing will be saved. (y/n)"))
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	} else if s.infoMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Muted.Render(s.infoMsg))
	}

	card := theme.Card.Padding(1, 4).Render(lipgloss.NewStyle().Align(lipgloss.Center).Render(b.String()))
	return layout.Centered(card, width, height)
}
