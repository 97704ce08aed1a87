package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/stats"
)

// Entry is a session about to be committed.
type Entry struct {
	Subject         string
	DurationMinutes int
	Notes           string
	Date            ledger.Date
}

// Record commits entry for userID: the stats engine updates the profile
// and the ledger stores the session and profile together. It serves both
// the timer and manually logged sessions.
func Record(ctx context.Context, l *ledger.Store, engine stats.Engine, userID string, entry Entry, today ledger.Date) (Result, error) {
	if entry.DurationMinutes <= 0 {
		return Result{}, &ledger.ValidationError{
			Field:   "durationMinutes",
			Message: fmt.Sprintf("must be positive, got %d", entry.DurationMinutes),
		}
	}
	if strings.TrimSpace(entry.Subject) == "" {
		entry.Subject = DefaultSubject
	}
	if entry.Date.IsZero() {
		entry.Date = today
	}
	if today.Before(entry.Date) {
		return Result{}, &ledger.ValidationError{
			Field:   "sessionDate",
			Message: fmt.Sprintf("%s is in the future", entry.Date),
		}
	}

	profile, ok, err := l.Profile(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, fmt.Errorf("profile %s: %w", userID, ledger.ErrNotFound)
	}

	sess := ledger.Session{
		Subject:         entry.Subject,
		DurationMinutes: entry.DurationMinutes,
		Notes:           entry.Notes,
		SessionDate:     entry.Date,
	}
	updated, acc := engine.ApplySession(profile, sess, today)

	saved, stored, err := l.CommitSession(ctx, userID, sess, updated)
	if err != nil {
		return Result{}, err
	}
	return Result{Session: saved, Profile: stored, Accrual: acc}, nil
}
