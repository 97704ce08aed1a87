package ledger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// AppendSession validates s, assigns its id and sequence, and records it as
// the newest session of userID.
func (s *Store) AppendSession(ctx context.Context, userID string, sess Session) (Session, error) {
	if err := validateSession(sess); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Session{}, err
	}

	sess = s.prepareSession(c, userID, sess)
	prev := c.sessions
	c.sessions = append([]Session{sess}, prev...)
	if err := s.write(ctx, Key(SessionsKeyPrefix, userID), c.sessions); err != nil {
		c.sessions = prev
		return Session{}, err
	}
	return sess, nil
}

// CommitSession appends sess and stores the updated profile as one unit,
// returning both as stored. If the profile write fails the session append
// is undone both in memory and in the backend, so neither change is visible.
func (s *Store) CommitSession(ctx context.Context, userID string, sess Session, profile Profile) (Session, Profile, error) {
	if err := validateSession(sess); err != nil {
		return Session{}, Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Session{}, Profile{}, err
	}

	sess = s.prepareSession(c, userID, sess)
	sessionsKey := Key(SessionsKeyPrefix, userID)
	prevSessions := c.sessions
	c.sessions = append([]Session{sess}, prevSessions...)
	if err := s.write(ctx, sessionsKey, c.sessions); err != nil {
		c.sessions = prevSessions
		return Session{}, Profile{}, err
	}

	prevProfile := c.profile
	next := s.stampProfile(userID, profile)
	c.profile = &next
	if err := s.write(ctx, Key(ProfileKeyPrefix, userID), next); err != nil {
		c.profile = prevProfile
		c.sessions = prevSessions
		if rerr := s.write(ctx, sessionsKey, prevSessions); rerr != nil {
			// The backend now holds a session the profile does not account for.
			s.log.Error("session rollback failed",
				zap.String("user", userID),
				zap.String("session", sess.ID),
				zap.Error(rerr),
			)
		}
		return Session{}, Profile{}, err
	}
	return sess, next, nil
}

// prepareSession fills the ledger-owned fields of a new session.
func (s *Store) prepareSession(c *collections, userID string, sess Session) Session {
	seq := nextSeq(c.sessions)
	sess.Seq = seq
	sess.ID = fmt.Sprintf("session_%d", seq)
	sess.UserID = userID
	sess.Subject = strings.TrimSpace(sess.Subject)
	sess.Notes = strings.TrimSpace(sess.Notes)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	return sess
}

// nextSeq returns one past the highest sequence recorded. Sessions are
// never deleted, so ids never repeat.
func nextSeq(sessions []Session) int {
	top := 0
	for _, ss := range sessions {
		if ss.Seq > top {
			top = ss.Seq
		}
	}
	return top + 1
}
