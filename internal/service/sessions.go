package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// SessionRegistry resolves a logged-in user to the foxops client built from
// their own token.
type SessionRegistry struct {
	users   port.UserStore
	factory port.ClientFactory

	mu     sync.RWMutex
	tokens map[string]string // userID -> foxops token
}

// NewSessionRegistry creates a registry backed by the user store.
func NewSessionRegistry(users port.UserStore, factory port.ClientFactory) *SessionRegistry {
	return &SessionRegistry{
		users:   users,
		factory: factory,
		tokens:  make(map[string]string),
	}
}

// Remember stores the token of a freshly logged-in user.
func (r *SessionRegistry) Remember(userID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = token
}

// Forget drops the memoised token and its cached client, e.g. after foxops
// rejected it.
func (r *SessionRegistry) Forget(userID string) {
	r.mu.Lock()
	token, ok := r.tokens[userID]
	delete(r.tokens, userID)
	r.mu.Unlock()

	if ok {
		r.factory.Evict(token)
	}
}

// ClientFor returns the foxops client of userID, loading the stored token
// on first use.
func (r *SessionRegistry) ClientFor(ctx context.Context, userID string) (port.IncarnationAPI, error) {
	r.mu.RLock()
	token, ok := r.tokens[userID]
	r.mu.RUnlock()
	if ok {
		return r.factory.ClientFor(token), nil
	}

	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if user.AccessToken == "" {
		return nil, fmt.Errorf("load session: %w", port.ErrUnauthorized)
	}

	r.Remember(userID, user.AccessToken)
	return r.factory.ClientFor(user.AccessToken), nil
}
