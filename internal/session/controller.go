// Package session runs the study timer and turns finished timer runs into
// committed ledger sessions.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blink-new/studytrack/internal/clock"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/stats"
)

// Controller is the study timer state machine:
//
//	Idle -> Running <-> Paused -> Stopped -> Idle
//
// Discard returns to Idle from any state. The controller's lock is never
// held while calling into the clock, whose callback takes it.
type Controller struct {
	mu      sync.Mutex
	state   State
	subject string
	notes   string
	seconds int

	userID         string
	ledger         *ledger.Store
	engine         stats.Engine
	clock          *clock.Clock
	now            func() time.Time
	log            *zap.Logger
	defaultSubject string
	interval       time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithNow overrides the time source used to date sessions.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithInterval sets the clock tick interval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithDefaultSubject sets the label used when Start gets an empty subject.
func WithDefaultSubject(s string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(s) != "" {
			c.defaultSubject = strings.TrimSpace(s)
		}
	}
}

// NewController returns an idle controller that commits sessions for userID.
func NewController(l *ledger.Store, userID string, engine stats.Engine, opts ...Option) *Controller {
	c := &Controller{
		userID:         userID,
		ledger:         l,
		engine:         engine,
		now:            time.Now,
		log:            zap.NewNop(),
		defaultSubject: DefaultSubject,
		interval:       clock.DefaultInterval,
	}
	for _, o := range opts {
		o(c)
	}
	c.clock = clock.New(c.interval, c.Tick)
	return c
}

// Start begins a new session. Only one session may be active at a time.
func (c *Controller) Start(subject string) error {
	c.mu.Lock()
	if c.state != Idle {
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "start", State: st}
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = c.defaultSubject
	}
	c.subject = subject
	c.notes = ""
	c.seconds = 0
	c.state = Running
	c.mu.Unlock()

	c.clock.Start()
	c.log.Debug("session started", zap.String("subject", subject))
	return nil
}

// Pause stops the clock and keeps the elapsed time.
func (c *Controller) Pause() error {
	c.mu.Lock()
	if c.state != Running {
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "pause", State: st}
	}
	c.state = Paused
	c.mu.Unlock()

	c.clock.Stop()
	return nil
}

// Resume restarts the clock after Pause.
func (c *Controller) Resume() error {
	c.mu.Lock()
	if c.state != Paused {
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "resume", State: st}
	}
	c.state = Running
	c.mu.Unlock()

	c.clock.Start()
	return nil
}

// SetNotes attaches free-text notes to the active session.
func (c *Controller) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = strings.TrimSpace(notes)
}

// Stop ends the session and commits it.
//
// With no elapsed time the session is discarded and nothing is written.
// Under one minute Stop returns a *ledger.ValidationError and the session
// stays as it was. If the commit fails the session is left Paused with its
// subject and elapsed time intact so Stop can be retried.
func (c *Controller) Stop(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.state != Running && c.state != Paused {
		st := c.state
		c.mu.Unlock()
		return Result{}, &TransitionError{Op: "stop", State: st}
	}
	if c.seconds == 0 {
		c.resetLocked()
		c.mu.Unlock()
		c.clock.Stop()
		return Result{Discarded: true}, nil
	}
	minutes := c.seconds / 60
	if minutes == 0 {
		c.mu.Unlock()
		return Result{}, &ledger.ValidationError{
			Field:   "durationMinutes",
			Message: "session is shorter than one minute",
		}
	}
	c.state = Stopped
	entry := Entry{
		Subject:         c.subject,
		DurationMinutes: minutes,
		Notes:           c.notes,
	}
	c.mu.Unlock()
	c.clock.Stop()

	now := c.now()
	entry.Date = ledger.DateOf(now)
	res, err := Record(ctx, c.ledger, c.engine, c.userID, entry, ledger.DateOf(now))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.state == Stopped {
			c.state = Paused
		}
		c.log.Warn("session commit failed",
			zap.String("subject", entry.Subject),
			zap.Int("minutes", minutes),
			zap.Error(err),
		)
		return Result{}, err
	}
	c.resetLocked()
	c.log.Info("session committed",
		zap.String("id", res.Session.ID),
		zap.String("subject", res.Session.Subject),
		zap.Int("minutes", res.Session.DurationMinutes),
		zap.Int("points", res.PointsEarned()),
	)
	return res, nil
}

// Discard abandons the session without writing anything.
func (c *Controller) Discard() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	c.clock.Stop()
}

// Tick advances the elapsed time by one second while running. It is the
// clock callback.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		c.seconds++
	}
}

// Status reports the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:   c.state,
		Subject: c.subject,
		Notes:   c.notes,
		Elapsed: time.Duration(c.seconds) * time.Second,
	}
}

// Close stops the clock. An active session is left as is.
func (c *Controller) Close() {
	c.clock.Stop()
}

func (c *Controller) resetLocked() {
	c.state = Idle
	c.subject = ""
	c.notes = ""
	c.seconds = 0
}
