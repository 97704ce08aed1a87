// Package ledger persists a user's profile, study sessions, materials and
// quizzes in a string key-value store. Each collection lives under its own
// key and is rewritten whole on every change.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blink-new/studytrack/internal/store"
)

// Key prefixes. The full key is prefix + "_" + user id.
const (
	SessionsKeyPrefix  = "sessions"
	MaterialsKeyPrefix = "materials"
	QuizzesKeyPrefix   = "quizzes"
	ProfileKeyPrefix   = "profile"
)

// Key returns the storage key for a collection of userID.
func Key(prefix, userID string) string {
	return prefix + "_" + userID
}

// Keys returns every storage key owned by userID.
func Keys(userID string) []string {
	return []string{
		Key(ProfileKeyPrefix, userID),
		Key(SessionsKeyPrefix, userID),
		Key(MaterialsKeyPrefix, userID),
		Key(QuizzesKeyPrefix, userID),
	}
}

// Store is the ledger over a KV backend. It caches each user's collections
// after the first read; all mutations write through.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	log   *zap.Logger
	now   func() time.Time
	newID func() string
	users map[string]*collections
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for decode failures and rollbacks.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides material, quiz and question id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a ledger over kv.
func New(kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
		users: make(map[string]*collections),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type collections struct {
	profile   *Profile
	sessions  []Session
	materials []Material
	quizzes   []Quiz
}

func (c *collections) snapshot() Snapshot {
	snap := Snapshot{
		Sessions:  slices.Clone(c.sessions),
		Materials: slices.Clone(c.materials),
		Quizzes:   slices.Clone(c.quizzes),
	}
	for i := range snap.Materials {
		snap.Materials[i] = cloneMaterial(snap.Materials[i])
	}
	for i := range snap.Quizzes {
		snap.Quizzes[i] = cloneQuiz(snap.Quizzes[i])
	}
	if c.profile != nil {
		p := *c.profile
		snap.Profile = &p
	}
	return snap
}

// cloneMaterial and cloneQuiz copy nested slices so callers never share
// backing arrays with the cache.
func cloneMaterial(m Material) Material {
	m.Tags = slices.Clone(m.Tags)
	return m
}

func cloneQuiz(q Quiz) Quiz {
	q.Tags = slices.Clone(q.Tags)
	q.Questions = slices.Clone(q.Questions)
	for i := range q.Questions {
		q.Questions[i].Options = slices.Clone(q.Questions[i].Options)
	}
	return q
}

// Load reads every collection of userID from the backend, replacing any
// cached copy. Absent keys yield empty collections. Values that fail to
// decode are logged and replaced by the empty value. Only backend read
// failures are returned.
func (s *Store) Load(ctx context.Context, userID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.users[userID] = c
	return c.snapshot(), nil
}

// Snapshot returns the cached ledger of userID, loading it on first use.
func (s *Store) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return c.snapshot(), nil
}

// Sessions returns the sessions of userID, newest first.
func (s *Store) Sessions(ctx context.Context, userID string) ([]Session, error) {
	snap, err := s.Snapshot(ctx, userID)
	return snap.Sessions, err
}

// Materials returns the materials of userID, newest first.
func (s *Store) Materials(ctx context.Context, userID string) ([]Material, error) {
	snap, err := s.Snapshot(ctx, userID)
	return snap.Materials, err
}

// Quizzes returns the quizzes of userID, newest first.
func (s *Store) Quizzes(ctx context.Context, userID string) ([]Quiz, error) {
	snap, err := s.Snapshot(ctx, userID)
	return snap.Quizzes, err
}

// get returns the cached collections, reading them if needed. Caller holds mu.
func (s *Store) get(ctx context.Context, userID string) (*collections, error) {
	if c, ok := s.users[userID]; ok {
		return c, nil
	}
	c, err := s.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.users[userID] = c
	return c, nil
}

func (s *Store) read(ctx context.Context, userID string) (*collections, error) {
	c := &collections{}

	var profile Profile
	found, err := readJSON(ctx, s, Key(ProfileKeyPrefix, userID), &profile)
	if err != nil {
		return nil, err
	}
	if found {
		if profile.ID == "" {
			profile.ID = userID
		}
		profile.normalize()
		c.profile = &profile
	}

	if _, err := readJSON(ctx, s, Key(SessionsKeyPrefix, userID), &c.sessions); err != nil {
		return nil, err
	}
	if _, err := readJSON(ctx, s, Key(MaterialsKeyPrefix, userID), &c.materials); err != nil {
		return nil, err
	}
	if _, err := readJSON(ctx, s, Key(QuizzesKeyPrefix, userID), &c.quizzes); err != nil {
		return nil, err
	}
	return c, nil
}

// readJSON reads key into dst. It reports whether a usable value was found.
// A malformed value leaves dst at its zero value and is only logged.
func readJSON[T any](ctx context.Context, s *Store, key string, dst *T) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		derr := &DecodeError{Key: key, Err: err}
		s.log.Warn("discarding unreadable ledger value",
			zap.String("key", key),
			zap.Error(derr),
		)
		return false, nil
	}
	*dst = v
	return true, nil
}

// write persists v under key. Caller holds mu.
func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Key: key, Err: err}
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}

// Reset removes every key of userID and drops the cache.
func (s *Store) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
	for _, k := range Keys(userID) {
		if err := s.kv.Remove(ctx, k); err != nil {
			return &PersistenceError{Key: k, Err: err}
		}
	}
	return nil
}
