package yggdrasil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/steviee/nidhogg/pkg/data"
)

// State is the state of a session lifecycle.
type State int

const (
	// Unauthenticated means no session has been obtained yet.
	Unauthenticated State = iota

	// Authenticated means a login returned an active session.
	Authenticated

	// Refreshed means the session was replaced by a refresh.
	Refreshed

	// Invalidated means the session was invalidated.
	Invalidated

	// SignedOut means every session of the account was ended.
	SignedOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Refreshed:
		return "refreshed"
	case Invalidated:
		return "invalidated"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Invalidated || s == SignedOut
}

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state.
var ErrInvalidTransition = errors.New("invalid session state transition")

// Lifecycle tracks one session through login, refreshes and its end.
// Operations are serialized. Once invalidated or signed out, the lifecycle
// stays there: Validate still asks the server and reports false, Refresh
// surfaces the server's error.
type Lifecycle struct {
	client *Client

	mu      sync.Mutex
	state   State
	session data.Session
}

// NewLifecycle creates an unauthenticated lifecycle.
func NewLifecycle(client *Client) *Lifecycle {
	return &Lifecycle{client: client}
}

// ResumeLifecycle creates a lifecycle for a previously issued session.
func ResumeLifecycle(client *Client, session data.Session) *Lifecycle {
	return &Lifecycle{client: client, state: Authenticated, session: session}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Session returns the current session.
func (l *Lifecycle) Session() data.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// Login authenticates. It is only allowed while unauthenticated.
func (l *Lifecycle) Login(ctx context.Context, creds data.AccountCredentials, opts *LoginOptions) (*AuthResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Unauthenticated {
		return nil, fmt.Errorf("%w: login while %s", ErrInvalidTransition, l.state)
	}

	result, err := l.client.Login(ctx, creds, opts)
	if err != nil {
		return nil, err
	}

	l.session = result.Session
	l.state = Authenticated
	return result, nil
}

// Validate reports whether the current session is valid.
func (l *Lifecycle) Validate(ctx context.Context, includeClientToken bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.client.Validate(ctx, l.session, includeClientToken)
}

// Refresh replaces the current session with a refreshed one.
func (l *Lifecycle) Refresh(ctx context.Context, opts *RefreshOptions) (*AuthResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result, err := l.client.Refresh(ctx, l.session, opts)
	if err != nil {
		return nil, err
	}

	if !l.state.Terminal() {
		l.session = result.Session
		l.state = Refreshed
	}
	return result, nil
}

// Invalidate ends the session.
func (l *Lifecycle) Invalidate(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Unauthenticated {
		return fmt.Errorf("%w: invalidate while %s", ErrInvalidTransition, l.state)
	}

	if err := l.client.Invalidate(ctx, l.session); err != nil {
		return err
	}

	if !l.state.Terminal() {
		l.state = Invalidated
	}
	return nil
}

// SignOut ends every session of the account.
func (l *Lifecycle) SignOut(ctx context.Context, creds data.AccountCredentials) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.client.SignOut(ctx, creds); err != nil {
		return err
	}

	if !l.state.Terminal() {
		l.state = SignedOut
	}
	return nil
}
