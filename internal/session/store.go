package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrEmptyToken is returned by Login when given a blank token.
var ErrEmptyToken = errors.New("session: empty token")

// Listener is called after every session transition with the new identity
// (nil once logged out or when the token cannot be decoded).
type Listener func(id *Identity)

// Store is the current session: the raw token plus the identity derived from
// it. Safe for concurrent use.
type Store struct {
	tokens TokenStore
	logger *slog.Logger

	mu        sync.RWMutex
	token     string
	identity  *Identity
	listeners map[int]Listener
	order     []int
	nextID    int
}

// Open restores the session held in tokens, if any, without contacting the API.
func Open(tokens TokenStore, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		tokens:    tokens,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
	tok, err := tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("session.Open: %w", err)
	}
	if tok != "" {
		s.token = tok
		s.identity = Decode(tok)
		if s.identity == nil {
			logger.Warn("stored token could not be decoded")
		}
	}
	return s, nil
}

// Login persists token and makes its identity current. An undecodable token
// is still stored; the session then has a token but no identity.
func (s *Store) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.tokens.Save(token); err != nil {
		return fmt.Errorf("session.Login: %w", err)
	}
	id := Decode(token)

	s.mu.Lock()
	s.token = token
	s.identity = id
	s.mu.Unlock()

	if id == nil {
		s.logger.Warn("token could not be decoded; no identity")
	} else {
		s.logger.Info("logged in", "subject", id.Subject, "roles", id.Roles)
	}
	s.notify(id)
	return nil
}

// Logout clears the stored token and identity. Listeners run before Logout
// returns, so dependent state is already cleared when it does.
func (s *Store) Logout() error {
	clearErr := s.tokens.Clear()

	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	s.logger.Info("logged out")
	s.notify(nil)
	if clearErr != nil {
		return fmt.Errorf("session.Logout: %w", clearErr)
	}
	return nil
}

// CurrentIdentity returns the identity, or nil when logged out. The returned
// value must not be modified.
func (s *Store) CurrentIdentity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Token returns the raw bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn for session transitions. Listeners run
// synchronously in registration order. The returned func unregisters fn.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify(id *Identity) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.order))
	for _, k := range s.order {
		fns = append(fns, s.listeners[k])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(id)
	}
}
