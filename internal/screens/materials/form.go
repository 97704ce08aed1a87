package materials

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

type savedMsg struct {
	material ledger.Material
	err      error
}

// FormScreen adds a material.
type FormScreen struct {
	deps   *screen.Deps
	form   components.Form
	saving bool
	errMsg string
}

var _ screen.Screen = (*FormScreen)(nil)
var _ screen.Capturer = (*FormScreen)(nil)

// NewForm creates the add-material form.
func NewForm(deps *screen.Deps) *FormScreen {
	types := make([]string, len(ledger.MaterialTypes))
	for i, t := range ledger.MaterialTypes {
		types[i] = string(t)
	}
	return &FormScreen{
		deps: deps,
		form: components.NewForm(
			components.TextField("title", "Title", "Cell structure", 120),
			components.TextField("subject", "Subject", "Biology", 60),
			components.ChoiceField("type", "Type", types, 0),
			components.TextField("content", "Content", "Notes, a summary or flashcard text", 4000),
			components.TextField("url", "File URL", "https://...", 500),
			components.TextField("tags", "Tags", "comma separated", 200),
		),
	}
}

func (s *FormScreen) Init() tea.Cmd { return nil }

func (s *FormScreen) Title() string { return "Add Material" }

// Capturing is always true; the form's text fields own every key.
func (s *FormScreen) Capturing() bool { return true }

func (s *FormScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Type"},
		{Key: "Enter", Description: "Next / Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Input returns the material described by the form.
func (s *FormScreen) Input() ledger.MaterialInput {
	f := s.form
	return ledger.MaterialInput{
		Title:   f.Value("title"),
		Subject: f.Value("subject"),
		Type:    ledger.MaterialType(f.Value("type")),
		Content: f.Value("content"),
		FileURL: f.Value("url"),
		Tags:    ledger.ParseTags(f.Value("tags")),
	}
}

func (s *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			var verr *ledger.ValidationError
			if errors.As(msg.err, &verr) {
				s.errMsg = verr.Error()
			} else {
				s.errMsg = "Could not save: " + msg.err.Error()
			}
			s.form.Reopen()
			return s, nil
		}
		return s, router.Back

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
		return s, s.save(s.Input())
	}
	return s, cmd
}

func (s *FormScreen) save(in ledger.MaterialInput) tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		m, err := deps.Ledger.CreateMaterial(context.Background(), deps.UserID, in)
		return savedMsg{material: m, err: err}
	}
}

func (s *FormScreen) View(width, height int) string {
	body := s.form.View()
	if s.errMsg != "" {
		body += "\n\n" + theme.ErrorText.Render(s.errMsg)
	}
	if s.saving {
		body += "\n\n" + theme.Muted.Render("Saving...")
	}
	return layout.Centered(theme.Card.Width(min(90, width-4)).Render(body), width, height)
}
