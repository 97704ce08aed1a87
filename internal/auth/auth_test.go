package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blink-new/studytrack/internal/store"
)

func TestLocalProviderCreatesAndReusesIdentity(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()

	p := NewLocalProvider(kv, User{DisplayName: "Ada"})
	assert.True(t, p.Current().IsLoading)

	first, err := p.Resolve(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Ada", first.DisplayName)
	assert.False(t, p.Current().IsLoading)

	again, err := NewLocalProvider(kv, User{}).Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "identity must be stable across runs")
	assert.Equal(t, "Ada", again.DisplayName)
}

func TestLocalProviderAppliesOverrides(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()

	first, err := NewLocalProvider(kv, User{DisplayName: "Ada"}).Resolve(ctx)
	require.NoError(t, err)

	renamed, err := NewLocalProvider(kv, User{DisplayName: "Ada L.", Email: "ada@uni.edu"}).Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, renamed.ID)
	assert.Equal(t, "Ada L.", renamed.DisplayName)
	assert.Equal(t, "ada@uni.edu", renamed.Email)
}

func TestLocalProviderReplacesCorruptIdentity(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, IdentityKey, "{not json"))

	u, err := NewLocalProvider(kv, User{}).Resolve(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestLocalProviderWriteFailurePublishesSignedOut(t *testing.T) {
	kv := store.NewMemory()
	kv.FailWrites(errors.New("disk full"))

	p := NewLocalProvider(kv, User{})
	_, err := p.Resolve(context.Background())
	require.Error(t, err)

	st := p.Current()
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.User)
}

func TestSubscribeReceivesCurrentAndChanges(t *testing.T) {
	p := NewTokenProvider("secret")

	var got []State
	unsubscribe := p.Subscribe(func(s State) { got = append(got, s) })

	token, err := IssueToken([]byte("secret"), User{ID: "u1", Email: "u1@x.io", DisplayName: "U One"}, time.Hour)
	require.NoError(t, err)
	_, err = p.SignIn(token)
	require.NoError(t, err)

	unsubscribe()
	p.SignOut()

	require.Len(t, got, 2)
	assert.True(t, got[0].IsLoading)
	require.NotNil(t, got[1].User)
	assert.Equal(t, "u1", got[1].User.ID)
	assert.Nil(t, p.Current().User)
}

func TestParseToken(t *testing.T) {
	secret := []byte("s3cret")
	u := User{ID: "user-42", Email: "sam@campus.edu", DisplayName: "Sam"}

	good, err := IssueToken(secret, u, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, u, -time.Minute)
	require.NoError(t, err)
	noSubject, err := IssueToken(secret, User{Email: "x@y.z"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  []byte
		token   string
		wantErr bool
	}{
		{"valid", secret, good, false},
		{"wrong secret", []byte("other"), good, true},
		{"expired", secret, expired, true},
		{"missing subject", secret, noSubject, true},
		{"garbage", secret, "abc.def.ghi", true},
		{"no secret", nil, good, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.secret, tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u, got)
		})
	}
}

func TestAwait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p := NewLocalProvider(store.NewMemory(), User{DisplayName: "Kim"})
	go func() {
		_, _ = p.Resolve(context.Background())
	}()

	u, err := Await(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Kim", u.DisplayName)
}

func TestAwaitSignedOut(t *testing.T) {
	p := NewTokenProvider("secret")
	_, _ = p.SignIn("bogus")

	_, err := Await(context.Background(), p)
	assert.ErrorIs(t, err, ErrSignedOut)
}
