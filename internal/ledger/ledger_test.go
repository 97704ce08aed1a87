package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blink-new/studytrack/internal/auth"
	"github.com/blink-new/studytrack/internal/store"
)

const testUser = "user-1"

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, kv store.KV, opts ...Option) *Store {
	t.Helper()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}
	return New(kv, append(base, opts...)...)
}

func sampleSession(subject string, minutes int) Session {
	return Session{Subject: subject, DurationMinutes: minutes, SessionDate: DateOf(testNow)}
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	snap, err := s.Load(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, snap.Profile)
	assert.Empty(t, snap.Sessions)
	assert.Empty(t, snap.Materials)
	assert.Empty(t, snap.Quizzes)
}

func TestLoadMalformedValuesAreLoggedAndReplaced(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, Key(SessionsKeyPrefix, testUser), "{oops"))
	require.NoError(t, kv.Set(ctx, Key(ProfileKeyPrefix, testUser), `"not an object"`))
	require.NoError(t, kv.Set(ctx, Key(MaterialsKeyPrefix, testUser), `[{"id":"m1","title":"Cells","subject":"Biology","materialType":"note","tags":[]}]`))

	core, logs := observer.New(zapcore.WarnLevel)
	s := newTestStore(t, kv, WithLogger(zap.New(core)))

	snap, err := s.Load(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, snap.Profile)
	assert.Empty(t, snap.Sessions)
	require.Len(t, snap.Materials, 1, "valid collections still load")

	entries := logs.FilterMessage("discarding unreadable ledger value").All()
	require.Len(t, entries, 2)
	var keys []string
	for _, e := range entries {
		keys = append(keys, e.ContextMap()["key"].(string))
	}
	assert.ElementsMatch(t, []string{"sessions_user-1", "profile_user-1"}, keys)
}

type failingKV struct{ store.KV }

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func TestLoadBackendFailureIsReturned(t *testing.T) {
	s := newTestStore(t, failingKV{store.NewMemory()})
	_, err := s.Load(context.Background(), testUser)
	require.Error(t, err)
	var derr *DecodeError
	assert.False(t, errors.As(err, &derr))
}

func TestAppendSessionOrderingAndIDs(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	first, err := s.AppendSession(ctx, testUser, sampleSession("Math", 30))
	require.NoError(t, err)
	second, err := s.AppendSession(ctx, testUser, sampleSession("Physics", 45))
	require.NoError(t, err)

	assert.Equal(t, "session_1", first.ID)
	assert.Equal(t, "session_2", second.ID)
	assert.Equal(t, testUser, second.UserID)
	assert.Equal(t, testNow, second.CreatedAt)

	snap, err := s.Snapshot(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, snap.Sessions, 2)
	assert.Equal(t, "Physics", snap.Sessions[0].Subject, "newest first")

	sessions, err := s.Sessions(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"session_2", "session_1"}, []string{sessions[0].ID, sessions[1].ID})
	sessions[0].Subject = "mutated"
	again, err := s.Sessions(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Physics", again[0].Subject, "accessor returns a copy")

	// A fresh store sees the same persisted ordering and keeps numbering.
	reloaded := newTestStore(t, kv)
	third, err := reloaded.AppendSession(ctx, testUser, sampleSession("Chemistry", 15))
	require.NoError(t, err)
	assert.Equal(t, "session_3", third.ID)

	raw, ok, err := kv.Get(ctx, "sessions_user-1")
	require.NoError(t, err)
	require.True(t, ok)
	var stored []Session
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 3)
	assert.Equal(t, []string{"session_3", "session_2", "session_1"},
		[]string{stored[0].ID, stored[1].ID, stored[2].ID})
}

func TestAppendSessionValidation(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	ctx := context.Background()

	tests := []struct {
		name  string
		sess  Session
		field string
	}{
		{"zero duration", sampleSession("Math", 0), "durationMinutes"},
		{"negative duration", sampleSession("Math", -5), "durationMinutes"},
		{"blank subject", sampleSession("  ", 10), "subject"},
		{"bad date", Session{Subject: "Math", DurationMinutes: 10, SessionDate: "10/03/2026"}, "sessionDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AppendSession(ctx, testUser, tt.sess)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	snap, err := s.Snapshot(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, snap.Sessions)
}

func TestAppendSessionRollsBackOnWriteFailure(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	_, err := s.AppendSession(ctx, testUser, sampleSession("Math", 30))
	require.NoError(t, err)

	kv.FailWrites(errors.New("quota exceeded"))
	_, err = s.AppendSession(ctx, testUser, sampleSession("Physics", 45))
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "sessions_user-1", perr.Key)

	snap, _ := s.Snapshot(ctx, testUser)
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, "Math", snap.Sessions[0].Subject)

	// The failed append does not consume a sequence number.
	kv.FailWrites(nil)
	next, err := s.AppendSession(ctx, testUser, sampleSession("Physics", 45))
	require.NoError(t, err)
	assert.Equal(t, "session_2", next.ID)
}

func TestCommitSession(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	p, err := s.EnsureProfile(ctx, auth.User{ID: testUser, Email: "ada@uni.edu"})
	require.NoError(t, err)

	p.Points = 60
	p.TotalStudyHours = 0.5
	sess, stored, err := s.CommitSession(ctx, testUser, sampleSession("Math", 30), p)
	require.NoError(t, err)
	assert.Equal(t, "session_1", sess.ID)
	assert.Equal(t, testNow, stored.UpdatedAt)

	fresh := newTestStore(t, kv)
	snap, err := fresh.Load(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, 60, snap.Profile.Points)
	assert.Equal(t, stored, *snap.Profile)
	require.Len(t, snap.Sessions, 1)
}

func TestCommitSessionProfileFailureUndoesAppend(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	p, err := s.EnsureProfile(ctx, auth.User{ID: testUser})
	require.NoError(t, err)

	kv.FailKey(Key(ProfileKeyPrefix, testUser), errors.New("quota exceeded"))
	p.Points = 60
	_, _, err = s.CommitSession(ctx, testUser, sampleSession("Math", 30), p)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "profile_user-1", perr.Key)

	snap, _ := s.Snapshot(ctx, testUser)
	assert.Empty(t, snap.Sessions)
	assert.Equal(t, 0, snap.Profile.Points)

	// Durable state matches memory.
	durable, err := newTestStore(t, kv).Load(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, durable.Sessions)
}

func TestEnsureProfileDefaults(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	ctx := context.Background()

	p, err := s.EnsureProfile(ctx, auth.User{ID: testUser, Email: "lee@campus.edu"})
	require.NoError(t, err)
	assert.Equal(t, "lee", p.DisplayName)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.StudyStreak)
	assert.True(t, p.LastStudyDate.IsZero())

	// Second call returns the stored profile untouched.
	p.Points = 99
	_, err = s.UpsertProfile(ctx, testUser, p)
	require.NoError(t, err)
	again, err := s.EnsureProfile(ctx, auth.User{ID: testUser, Email: "lee@campus.edu"})
	require.NoError(t, err)
	assert.Equal(t, 99, again.Points)
}

func TestUpdateProfile(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	_, err := s.UpdateProfile(ctx, testUser, ProfileEdit{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.EnsureProfile(ctx, auth.User{ID: testUser, DisplayName: "Ada"})
	require.NoError(t, err)

	uni, year, blank := "MIT", 2, " "
	p, err := s.UpdateProfile(ctx, testUser, ProfileEdit{University: &uni, YearOfStudy: &year})
	require.NoError(t, err)
	assert.Equal(t, "MIT", p.University)
	assert.Equal(t, 2, p.YearOfStudy)
	assert.Equal(t, "Ada", p.DisplayName)

	_, err = s.UpdateProfile(ctx, testUser, ProfileEdit{DisplayName: &blank})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	kv.FailWrites(errors.New("boom"))
	major := "Physics"
	_, err = s.UpdateProfile(ctx, testUser, ProfileEdit{Major: &major})
	require.Error(t, err)
	got, ok, err := s.Profile(ctx, testUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.Major, "failed write must not leak into memory")
}

func TestProfileRoundTrip(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()

	want := Profile{
		ID:              testUser,
		Email:           "ada@uni.edu",
		DisplayName:     "Ada",
		University:      "MIT",
		Major:           "Physics",
		YearOfStudy:     3,
		Bio:             "Night owl.",
		StudyStreak:     4,
		TotalStudyHours: 12.75,
		Points:          1530,
		Level:           11,
		LastStudyDate:   "2026-03-09",
		CreatedAt:       testNow.Add(-48 * time.Hour),
		UpdatedAt:       testNow,
	}
	stored, err := newTestStore(t, kv).UpsertProfile(ctx, testUser, want)
	require.NoError(t, err)
	assert.Equal(t, want, stored)

	snap, err := newTestStore(t, kv).Load(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, want, *snap.Profile)
}

func TestSnapshotDoesNotShareNestedSlices(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	ctx := context.Background()

	m, err := s.CreateMaterial(ctx, testUser, cellNotes())
	require.NoError(t, err)
	q, err := s.CreateQuiz(ctx, testUser, calculusQuiz())
	require.NoError(t, err)
	m.Tags[0] = "changed"
	q.Questions[0].Options[0] = "changed"

	snap, err := s.Snapshot(ctx, testUser)
	require.NoError(t, err)
	snap.Materials[0].Tags[0] = "changed"
	snap.Quizzes[0].Tags[0] = "changed"
	snap.Quizzes[0].Questions[0].Prompt = "changed"
	snap.Quizzes[0].Questions[1].Options[0] = "changed"

	gotM, err := s.Material(ctx, testUser, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cells", "exam"}, gotM.Tags)

	gotQ, err := s.Quiz(ctx, testUser, q.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"calculus"}, gotQ.Tags)
	assert.Equal(t, "d/dx x^2?", gotQ.Questions[0].Prompt)
	assert.Equal(t, "x", gotQ.Questions[0].Options[0])
	assert.Equal(t, "x + C", gotQ.Questions[1].Options[0])
}

func TestReset(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	_, err := s.AppendSession(ctx, testUser, sampleSession("Math", 30))
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx, testUser))

	snap, err := s.Snapshot(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, snap.Sessions)
	_, ok, _ := kv.Get(ctx, "sessions_user-1")
	assert.False(t, ok)
}

func TestDateHelpers(t *testing.T) {
	d := Date("2026-03-01")
	assert.Equal(t, Date("2026-02-28"), d.AddDays(-1))
	assert.Equal(t, Date("2026-03-08"), d.AddDays(7))
	assert.Equal(t, 7, d.DaysUntil("2026-03-08"))
	assert.True(t, d.Before("2026-03-02"))
	assert.False(t, Date("garbage").Valid())
	assert.Equal(t, Date("garbage"), Date("garbage").AddDays(1))

	tm, err := d.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, tm.Weekday())
}
