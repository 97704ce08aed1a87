// Package auth supplies the identity of the user whose ledger is active.
// Providers publish State changes to subscribers; the ledger only ever sees
// the resulting user id.
package auth

import (
	"context"
	"errors"
	"sync"
)

// ErrSignedOut is returned by Await when loading finishes with no user.
var ErrSignedOut = errors.New("not signed in")

// User is an authenticated identity.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// State is a snapshot of the authentication state.
type State struct {
	User      *User
	IsLoading bool
}

// Provider publishes authentication state.
type Provider interface {
	// Subscribe calls fn with the current state and then on every change.
	// The returned func stops delivery.
	Subscribe(fn func(State)) (unsubscribe func())

	// Current returns the latest state.
	Current() State
}

// Await blocks until p finishes loading and returns the signed-in user.
func Await(ctx context.Context, p Provider) (User, error) {
	states := make(chan State, 1)
	unsubscribe := p.Subscribe(func(s State) {
		if s.IsLoading {
			return
		}
		select {
		case states <- s:
		default:
		}
	})
	defer unsubscribe()

	select {
	case s := <-states:
		if s.User == nil {
			return User{}, ErrSignedOut
		}
		return *s.User, nil
	case <-ctx.Done():
		return User{}, ctx.Err()
	}
}

// broadcaster holds state and fans changes out to subscribers. Callbacks
// run outside the lock.
type broadcaster struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(State)
}

func (b *broadcaster) Subscribe(fn func(State)) func() {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[int]func(State))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	current := b.state
	b.mu.Unlock()

	fn(current)

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcaster) Current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *broadcaster) publish(s State) {
	b.mu.Lock()
	b.state = s
	fns := make([]func(State), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func signedIn(u User) State {
	return State{User: &u}
}
