// Package timer is the study timer screen. It drives the shared
// session.Controller, so a running session survives leaving the screen.
package timer

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/blink-new/studytrack/internal/achievements"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/screens/summary"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
)

// tickMsg redraws the elapsed time.
type tickMsg time.Time

// stoppedMsg carries the outcome of committing a session.
type stoppedMsg struct {
	result   session.Result
	unlocked []achievements.Status
	err      error
}

type mode int

const (
	modeNormal mode = iota
	modeNotes
	modeConfirmDiscard
)

// TimerScreen implements screen.Screen for the study timer.
type TimerScreen struct {
	deps    *screen.Deps
	ctrl    *session.Controller
	subject components.TextInput
	notes   components.TextInput
	mode    mode
	saving  bool
	errMsg  string
	infoMsg string
}

var _ screen.Screen = (*TimerScreen)(nil)
var _ screen.KeyHintProvider = (*TimerScreen)(nil)
var _ screen.Capturer = (*TimerScreen)(nil)

// New creates the timer screen.
func New(deps *screen.Deps) *TimerScreen {
	s := &TimerScreen{
		deps:    deps,
		ctrl:    deps.Controller,
		subject: components.NewTextInput("What are you studying?", session.DefaultSubject, 60),
		notes:   components.NewTextInput("Session notes", "What did you cover?", 280),
	}
	s.notes.Blur()
	return s
}

func (s *TimerScreen) Init() tea.Cmd {
	if s.ctrl.Status().State == session.Idle {
		return tea.Batch(s.subject.Focus(), tickCmd())
	}
	s.subject.Blur()
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *TimerScreen) Title() string {
	return "Study Timer"
}

// Capturing reports whether esc belongs to the notes editor or the
// discard prompt.
func (s *TimerScreen) Capturing() bool {
	return s.mode != modeNormal
}

func (s *TimerScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.mode == modeConfirmDiscard:
		return []layout.KeyHint{{Key: "Y", Description: "Discard"}, {Key: "N", Description: "Keep"}}
	case s.mode == modeNotes:
		return []layout.KeyHint{{Key: "Enter", Description: "Save notes"}, {Key: "Esc", Description: "Cancel"}}
	}
	switch s.ctrl.Status().State {
	case session.Idle:
		return []layout.KeyHint{{Key: "Enter", Description: "Start"}, {Key: "Esc", Description: "Back"}}
	case session.Running:
		return []layout.KeyHint{
			{Key: "Space", Description: "Pause"},
			{Key: "S", Description: "Stop & save"},
			{Key: "N", Description: "Notes"},
			{Key: "X", Description: "Discard"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Space", Description: "Resume"},
			{Key: "S", Description: "Stop & save"},
			{Key: "N", Description: "Notes"},
			{Key: "X", Description: "Discard"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *TimerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return s, tickCmd()

	case stoppedMsg:
		return s.handleStopped(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	return s.forward(msg)
}

func (s *TimerScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case s.mode == modeNotes:
		s.notes, cmd = s.notes.Update(msg)
	case s.ctrl.Status().State == session.Idle:
		s.subject, cmd = s.subject.Update(msg)
	}
	return s, cmd
}

func (s *TimerScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if s.saving {
		return s, nil
	}

	switch s.mode {
	case modeConfirmDiscard:
		switch key {
		case "y", "Y":
			s.ctrl.Discard()
			s.mode = modeNormal
			s.errMsg = ""
			s.infoMsg = "Session discarded."
			s.subject.Reset()
			return s, s.subject.Focus()
		case "n", "N", "esc":
			s.mode = modeNormal
		}
		return s, nil

	case modeNotes:
		switch key {
		case "enter":
			s.ctrl.SetNotes(s.notes.Value())
			s.notes.Blur()
			s.mode = modeNormal
			s.infoMsg = "Notes saved."
			return s, nil
		case "esc":
			s.notes.Blur()
			s.mode = modeNormal
			return s, nil
		}
		return s.forward(msg)
	}

	st := s.ctrl.Status()
	if key == "esc" {
		return s, router.Back
	}

	if st.State == session.Idle {
		if key == "enter" {
			return s.start()
		}
		return s.forward(msg)
	}

	switch key {
	case "space", "p":
		return s.togglePause(st.State)
	case "s", "enter":
		s.saving = true
		s.errMsg = ""
		return s, s.stopCmd()
	case "n":
		s.mode = modeNotes
		s.notes.SetValue(st.Notes)
		return s, s.notes.Focus()
	case "x":
		s.mode = modeConfirmDiscard
	}
	return s, nil
}

func (s *TimerScreen) start() (screen.Screen, tea.Cmd) {
	if err := s.ctrl.Start(s.subject.Value()); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.subject.Blur()
	s.errMsg = ""
	s.infoMsg = ""
	return s, nil
}

func (s *TimerScreen) togglePause(st session.State) (screen.Screen, tea.Cmd) {
	var err error
	if st == session.Running {
		err = s.ctrl.Pause()
	} else {
		err = s.ctrl.Resume()
	}
	if err != nil {
		s.errMsg = err.Error()
	}
	return s, nil
}

// stopCmd commits the session and works out which achievements it unlocked.
func (s *TimerScreen) stopCmd() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		before, err := deps.Snapshot(ctx)
		if err != nil {
			return stoppedMsg{err: err}
		}
		res, err := deps.Controller.Stop(ctx)
		if err != nil || res.Discarded {
			return stoppedMsg{result: res, err: err}
		}
		after, err := deps.Snapshot(ctx)
		if err != nil {
			return stoppedMsg{result: res}
		}
		unlocked := achievements.Unlocked(achievements.FromSnapshot(before), achievements.FromSnapshot(after))
		return stoppedMsg{result: res, unlocked: unlocked}
	}
}

func (s *TimerScreen) handleStopped(msg stoppedMsg) (screen.Screen, tea.Cmd) {
	s.saving = false
	if msg.err != nil {
		var verr *ledger.ValidationError
		var perr *ledger.PersistenceError
		switch {
		case errors.As(msg.err, &verr):
			s.errMsg = "Study for at least one minute before saving."
		case errors.As(msg.err, &perr):
			s.errMsg = "Could not save the session. It is paused; press S to retry."
		default:
			s.errMsg = msg.err.Error()
		}
		return s, nil
	}
	if msg.result.Discarded {
		s.infoMsg = "Nothing to save; the timer never ran."
		s.subject.Reset()
		return s, s.subject.Focus()
	}

	p := msg.result.Profile
	return s, tea.Batch(
		func() tea.Msg { return screen.ProfileChangedMsg{Profile: p} },
		func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(msg.result, msg.unlocked)}
		},
	)
}
