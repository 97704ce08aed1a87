package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/blink-new/studytrack/internal/store"
)

// IdentityKey is where the local device identity is stored.
const IdentityKey = "identity"

// LocalProvider signs in a single device-local user. The identity is
// generated on first use and persisted in the KV store.
type LocalProvider struct {
	broadcaster
	kv       store.KV
	defaults User
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider returns a provider in the loading state. defaults seeds
// the email and display name of a newly created identity.
func NewLocalProvider(kv store.KV, defaults User) *LocalProvider {
	return &LocalProvider{
		broadcaster: broadcaster{state: State{IsLoading: true}},
		kv:          kv,
		defaults:    defaults,
	}
}

// Resolve loads or creates the device identity and publishes it.
func (p *LocalProvider) Resolve(ctx context.Context) (User, error) {
	u, err := p.load(ctx)
	if err != nil {
		p.publish(State{})
		return User{}, err
	}
	p.publish(signedIn(u))
	return u, nil
}

func (p *LocalProvider) load(ctx context.Context) (User, error) {
	raw, ok, err := p.kv.Get(ctx, IdentityKey)
	if err != nil {
		return User{}, fmt.Errorf("read identity: %w", err)
	}

	var u User
	if ok {
		if err := json.Unmarshal([]byte(raw), &u); err == nil && u.ID != "" {
			return p.refresh(ctx, u)
		}
		// Unreadable identity: start over with a fresh one.
	}

	u = User{
		ID:          uuid.NewString(),
		Email:       p.defaults.Email,
		DisplayName: p.defaults.DisplayName,
	}
	if err := p.save(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// refresh applies configured name and email overrides to a stored identity.
func (p *LocalProvider) refresh(ctx context.Context, u User) (User, error) {
	changed := false
	if e := strings.TrimSpace(p.defaults.Email); e != "" && e != u.Email {
		u.Email = e
		changed = true
	}
	if n := strings.TrimSpace(p.defaults.DisplayName); n != "" && n != u.DisplayName {
		u.DisplayName = n
		changed = true
	}
	if changed {
		if err := p.save(ctx, u); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func (p *LocalProvider) save(ctx context.Context, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, IdentityKey, string(data)); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// SignOut publishes the signed-out state. The stored identity is kept.
func (p *LocalProvider) SignOut() {
	p.publish(State{})
}
