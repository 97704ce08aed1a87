package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

var years = []string{"-", "1", "2", "3", "4", "5", "6"}

type savedMsg struct {
	profile ledger.Profile
	err     error
}

// EditScreen edits the user-editable profile fields.
type EditScreen struct {
	deps   *screen.Deps
	form   components.Form
	saving bool
	errMsg string
}

var _ screen.Screen = (*EditScreen)(nil)
var _ screen.Capturer = (*EditScreen)(nil)

// NewEdit creates the edit form filled from p.
func NewEdit(deps *screen.Deps, p ledger.Profile) *EditScreen {
	form := components.NewForm(
		components.TextField("name", "Display name", "Your name", 60),
		components.TextField("university", "University", "", 80),
		components.TextField("major", "Major", "", 80),
		components.ChoiceField("year", "Year of study", years, 0),
		components.TextField("bio", "Bio", "A line about you", 280),
	)
	form.SetValue("name", p.DisplayName)
	form.SetValue("university", p.University)
	form.SetValue("major", p.Major)
	if p.YearOfStudy > 0 {
		form.SetValue("year", strconv.Itoa(p.YearOfStudy))
	}
	form.SetValue("bio", p.Bio)
	return &EditScreen{deps: deps, form: form}
}

func (s *EditScreen) Init() tea.Cmd { return nil }

func (s *EditScreen) Title() string { return "Edit Profile" }

// Capturing is always true; the form owns every key.
func (s *EditScreen) Capturing() bool { return true }

func (s *EditScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Next / Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Edit returns the profile change described by the form.
func (s *EditScreen) Edit() ledger.ProfileEdit {
	name := s.form.Value("name")
	uni := s.form.Value("university")
	major := s.form.Value("major")
	bio := s.form.Value("bio")
	year, _ := strconv.Atoi(s.form.Value("year")) // "-" clears to 0
	return ledger.ProfileEdit{
		DisplayName: &name,
		University:  &uni,
		Major:       &major,
		YearOfStudy: &year,
		Bio:         &bio,
	}
}

func (s *EditScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			var verr *ledger.ValidationError
			if errors.As(msg.err, &verr) {
				s.errMsg = verr.Error()
			} else {
				s.errMsg = fmt.Sprintf("Could not save: %v", msg.err)
			}
			s.form.Reopen()
			return s, nil
		}
		p := msg.profile
		return s, tea.Batch(
			func() tea.Msg { return screen.ProfileChangedMsg{Profile: p} },
			router.Back,
		)

	case tea.KeyPressMsg:
		if s.saving {
			return s, nil
		}
		if msg.String() == "esc" {
			return s, router.Back
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	if s.form.Submitted && !s.saving {
		s.saving = true
		s.errMsg = ""
		deps, edit := s.deps, s.Edit()
		return s, func() tea.Msg {
			p, err := deps.Ledger.UpdateProfile(context.Background(), deps.UserID, edit)
			return savedMsg{profile: p, err: err}
		}
	}
	return s, cmd
}

func (s *EditScreen) View(width, height int) string {
	body := s.form.View()
	if s.errMsg != "" {
		body += "\n\n" + theme.ErrorText.Render(s.errMsg)
	}
	return layout.Centered(theme.Card.Width(min(80, width-4)).Render(body), width, height)
}
