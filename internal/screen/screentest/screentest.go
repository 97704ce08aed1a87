// Package screentest builds screen dependencies backed by an in-memory
// store for screen tests.
package screentest

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap/zaptest"

	"github.com/blink-new/studytrack/internal/auth"
	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/stats"
	"github.com/blink-new/studytrack/internal/store"
)

// UserID is the signed-in user in test deps.
const UserID = "student-1"

// Now is the fixed clock used by test deps.
var Now = time.Date(2026, 3, 10, 18, 0, 0, 0, time.Local)

// NewDeps returns deps over an empty in-memory ledger with a profile for
// UserID. The controller's clock never fires on its own.
func NewDeps(t *testing.T) *screen.Deps {
	t.Helper()
	clock := func() time.Time { return Now }
	l := ledger.New(store.NewMemory(), ledger.WithClock(clock))
	if _, err := l.EnsureProfile(context.Background(), auth.User{ID: UserID, DisplayName: "Ada", Email: "ada@example.edu"}); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	engine := stats.NewEngine()
	ctrl := session.NewController(l, UserID, engine, session.WithNow(clock), session.WithInterval(time.Hour))
	t.Cleanup(ctrl.Close)
	return &screen.Deps{
		Ledger:     l,
		UserID:     UserID,
		Engine:     engine,
		Controller: ctrl,
		Content:    content.Default(),
		GoalHours:  stats.DefaultDailyGoalHours,
		Now:        clock,
		Log:        zaptest.NewLogger(t),
	}
}

// LogSession records a finished session of the given length for UserID.
func LogSession(t *testing.T, deps *screen.Deps, subject string, minutes int, notes string) session.Result {
	t.Helper()
	res, err := session.Record(context.Background(), deps.Ledger, deps.Engine, deps.UserID,
		session.Entry{Subject: subject, DurationMinutes: minutes, Notes: notes}, deps.Today())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	return res
}

// Msgs runs cmd and returns the messages it produces, expanding batches.
// Commands that block on a timer must not be passed in.
func Msgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Msgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Feed delivers msgs to s, returning the updated screen and the last
// command produced.
func Feed(s screen.Screen, msgs ...tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	for _, m := range msgs {
		s, cmd = s.Update(m)
	}
	return s, cmd
}

// Key builds a key press for a printable rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Type sends each rune of text to s.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(Key(r))
	}
	return s
}
