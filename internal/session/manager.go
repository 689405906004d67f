package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Authenticator exchanges credentials for a token. Implemented by [services.Catalog].
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
}

// LogoutNotifier announces that the server rejected a token. Implemented by [services.Client].
type LogoutNotifier interface {
	OnForcedLogout(fn func(token string)) (unregister func())
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	Token string
	User  models.User
}

// Authenticated reports whether the snapshot holds a session.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

func (s Snapshot) String() string {
	if !s.Authenticated() {
		return "anonymous"
	}
	return "authenticated as " + s.User.Email
}

// Manager owns the Anonymous/Authenticated state and keeps it in step with the [Store].
type Manager struct {
	mu   sync.RWMutex
	snap Snapshot

	store  Store
	auth   Authenticator
	logger *log.Logger

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int

	unregister func()
}

// NewManager derives the initial state from store and registers for forced logouts on notifier.
//
// notifier may be nil when no pipeline is involved.
func NewManager(store Store, auth Authenticator, notifier LogoutNotifier, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	m := &Manager{
		store:  store,
		auth:   auth,
		logger: logger,
		subs:   make(map[int]func(Snapshot)),
	}
	m.snap = m.load()

	if notifier != nil {
		m.unregister = notifier.OnForcedLogout(m.forceLogout)
	}
	return m
}

func (m *Manager) load() Snapshot {
	s, ok := m.store.Get()
	if !ok {
		return Snapshot{}
	}
	return Snapshot{Token: s.Token, User: s.User}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().Authenticated()
}

// User returns the current user, if any.
func (m *Manager) User() (models.User, bool) {
	s := m.Snapshot()
	return s.User, s.Authenticated()
}

// Login authenticates with the server, persists the session and transitions to Authenticated.
//
// On failure the state is unchanged. A 401 from the login endpoint is reported as [shared.ErrInvalidCredentials].
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	creds := models.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", shared.ErrInvalidCredentials, err)
		}
		return err
	}
	if resp == nil || resp.Token == "" {
		return fmt.Errorf("%w: login response carried no token", shared.ErrAPIRequest)
	}

	user := models.User{Email: email}
	if err := m.store.Set(resp.Token, user); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.transition(Snapshot{Token: resp.Token, User: user})
	m.logger.Info("logged in", "email", email)
	return nil
}

// Logout clears persisted state and transitions to Anonymous. Calling it while anonymous is a no-op.
//
// The in-memory state is cleared even if storage fails; the storage error is returned. Share a [GuardedStore]
// between the manager and the pipeline so the token that could not be removed is no longer sent.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	if err != nil {
		m.logger.Warn("failed to clear session storage", "error", err)
	}
	m.transition(Snapshot{})
	return err
}

// Reload re-derives the state from the store, as a fresh process would.
func (m *Manager) Reload() Snapshot {
	s := m.load()
	m.transition(s)
	return s
}

// Subscribe registers fn for every state change. fn runs outside the manager's locks.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// Close unregisters the manager from its notifier.
func (m *Manager) Close() {
	if m.unregister != nil {
		m.unregister()
		m.unregister = nil
	}
}

// Claims decodes the registered claims of the current token without verifying it.
//
// Opaque tokens and anonymous sessions report false.
func (m *Manager) Claims() (*jwt.RegisteredClaims, bool) {
	token := m.Snapshot().Token
	if token == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// forceLogout handles a rejected token.
//
// The rejected token is removed if still stored, then the state is re-derived from the store: a session set
// since the request was sent, by this process or another one, survives.
func (m *Manager) forceLogout(token string) {
	if _, err := m.store.ClearToken(token); err != nil {
		m.logger.Warn("failed to clear rejected token", "error", err)
	}

	next := m.load()
	if next.Token == token {
		next = Snapshot{}
	}

	if m.IsAuthenticated() && !next.Authenticated() {
		m.logger.Warn("session expired, logged out")
	}
	m.transition(next)
}

func (m *Manager) transition(next Snapshot) {
	m.mu.Lock()
	changed := m.snap != next
	m.snap = next
	m.mu.Unlock()

	if changed {
		m.notify(next)
	}
}

func (m *Manager) notify(s Snapshot) {
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
