package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/crewdeck/crewctl/internal/errors"
	"github.com/crewdeck/crewctl/internal/log"
)

// Session is the authenticated identity and tenant context held for the
// current client. A token's absence defines the logged-out state.
type Session struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	TenantID   string `json:"tenantId"`
	UserName   string `json:"userName"`
	TenantName string `json:"tenantName"`
	Role       string `json:"role,omitempty"`
}

// Invalidator is the cache surface the store needs: logout drops every cached
// entry so stale data never serves a different or absent identity.
type Invalidator interface {
	Clear()
}

// Store holds the session in memory and persists it as one flat record under
// a fixed path. A missing or malformed persisted record is treated as
// logged-out, never as an error.
//
// Authorization failures reported by the request client are routed through
// HandleAuthError, which always logs out before observers fire, so every
// consumer observes a consistent cleared state.
type Store struct {
	mu       sync.RWMutex
	current  *Session
	path     string
	sealer   *sealer
	cache    Invalidator
	onAuth   []func()
	logger   *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCache attaches the result cache cleared on logout.
func WithCache(cache Invalidator) Option {
	return func(s *Store) {
		s.cache = cache
	}
}

// WithPassphrase seals the persisted record at rest with a key derived from
// the passphrase. A record that fails to unseal degrades to logged-out
// exactly like a corrupt plain record.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		if passphrase != "" {
			s.sealer = newSealer(passphrase)
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a session store persisting to path and loads any existing
// record. Corrupted local state degrades silently to logged-out rather than
// failing application boot.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// Login stores the session in memory and in the persisted record.
func (s *Store) Login(session Session) error {
	if session.Token == "" {
		return errors.New(errors.ErrCodeSessionPersist, "session token cannot be empty")
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()

	return s.persist(session)
}

// Logout clears the in-memory session, removes the persisted record, and
// unconditionally drops the entire result cache.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).Warn("failed to remove persisted session")
	}

	if s.cache != nil {
		s.cache.Clear()
	}
}

// IsAuthenticated reports whether a session token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Token != ""
}

// Current returns the active session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Token returns the current bearer token, or empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// OnAuthError registers an observer notified after an authorization failure
// has cleared the session.
func (s *Store) OnAuthError(fn func()) {
	s.mu.Lock()
	s.onAuth = append(s.onAuth, fn)
	s.mu.Unlock()
}

// HandleAuthError reacts to a remote authorization failure: logout runs
// first, then every registered observer fires. Wire this into the request
// client's auth-error handler.
func (s *Store) HandleAuthError() {
	s.Logout()

	s.mu.RLock()
	observers := make([]func(), len(s.onAuth))
	copy(observers, s.onAuth)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}

func (s *Store) persist(session Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionPersist, "marshal session", err)
	}

	if s.sealer != nil {
		sealed, err := s.sealer.seal(data)
		if err != nil {
			return errors.Wrap(errors.ErrCodeSessionSeal, "seal session record", err)
		}
		data = sealed
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeSessionPersist, "create session dir", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeSessionPersist, "write session record", err)
	}
	return nil
}

// load restores the persisted session. Every failure path here is silent:
// absent, unreadable, unsealable, or malformed records all mean logged-out.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Debug("persisted session unreadable, starting logged out")
		}
		return
	}

	if s.sealer != nil {
		opened, err := s.sealer.open(data)
		if err != nil {
			s.logger.Debug("persisted session failed to unseal, starting logged out")
			return
		}
		data = opened
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Debug("persisted session malformed, starting logged out")
		return
	}
	if session.Token == "" {
		return
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()
}
