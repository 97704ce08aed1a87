package screen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/quizgen"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/stats"
)

// Deps are the services screens read from and act on.
type Deps struct {
	Ledger     *ledger.Store
	UserID     string
	Engine     stats.Engine
	Controller *session.Controller
	Content    content.Provider
	// Generator drafts quizzes from materials; nil when no LLM is set up.
	Generator *quizgen.Generator
	GoalHours float64
	Now       func() time.Time
	Log       *zap.Logger
}

// Today returns the local calendar date.
func (d *Deps) Today() ledger.Date {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return ledger.DateOf(now())
}

// Snapshot returns the signed-in user's ledger.
func (d *Deps) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	return d.Ledger.Snapshot(ctx, d.UserID)
}

// Logger returns the configured logger or a no-op one.
func (d *Deps) Logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// ProfileChangedMsg announces a new profile so the header can update.
type ProfileChangedMsg struct {
	Profile ledger.Profile
}
