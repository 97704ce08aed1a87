package ledger

import (
	"context"
	"strings"

	"github.com/blink-new/studytrack/internal/auth"
)

// EnsureProfile returns the profile of user, creating the default profile
// on first sign-in.
func (s *Store) EnsureProfile(ctx context.Context, user auth.User) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, user.ID)
	if err != nil {
		return Profile{}, err
	}
	if c.profile != nil {
		return *c.profile, nil
	}

	p := NewProfile(user.ID, user.Email, user.DisplayName, s.now())
	c.profile = &p
	if err := s.write(ctx, Key(ProfileKeyPrefix, user.ID), p); err != nil {
		c.profile = nil
		return Profile{}, err
	}
	return p, nil
}

// Profile returns the stored profile of userID. ok is false when none exists.
func (s *Store) Profile(ctx context.Context, userID string) (p Profile, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Profile{}, false, err
	}
	if c.profile == nil {
		return Profile{}, false, nil
	}
	return *c.profile, true, nil
}

// UpsertProfile replaces the profile of userID.
func (s *Store) UpsertProfile(ctx context.Context, userID string, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	prev := c.profile
	next := s.stampProfile(userID, p)
	c.profile = &next
	if err := s.write(ctx, Key(ProfileKeyPrefix, userID), next); err != nil {
		c.profile = prev
		return Profile{}, err
	}
	return next, nil
}

// UpdateProfile applies the user-editable fields in edit. The profile must
// already exist.
func (s *Store) UpdateProfile(ctx context.Context, userID string, edit ProfileEdit) (Profile, error) {
	if err := edit.Validate(); err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if c.profile == nil {
		return Profile{}, ErrNotFound
	}

	prev := c.profile
	next := *prev
	edit.apply(&next)
	next = s.stampProfile(userID, next)
	c.profile = &next
	if err := s.write(ctx, Key(ProfileKeyPrefix, userID), next); err != nil {
		c.profile = prev
		return Profile{}, err
	}
	return next, nil
}

// stampProfile fixes ownership and timestamps before a profile is stored.
func (s *Store) stampProfile(userID string, p Profile) Profile {
	now := s.now()
	p.ID = userID
	p.Email = strings.TrimSpace(p.Email)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.normalize()
	return p
}
