package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/shared"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// Store persists the session token and its user record.
//
// Token and user are written and removed together. Implementations never fail reads:
// an unreadable store reports no session.
type Store interface {
	// Get returns the stored session. ok is false unless both token and user are present and readable.
	Get() (models.Session, bool)
	// Token returns the stored token alone.
	Token() (string, bool)
	// Set replaces the stored session.
	Set(token string, user models.User) error
	// Clear removes both keys. Clearing an empty store is not an error.
	Clear() error
	// ClearToken removes the session only if the stored token equals token.
	ClearToken(token string) (bool, error)
}

// SQLiteStore is a [Store] backed by the kv table.
type SQLiteStore struct {
	repo   *repositories.KeyValueRepository
	logger *log.Logger
}

// NewSQLiteStore creates a [SQLiteStore] over a migrated database.
func NewSQLiteStore(db *sql.DB, logger *log.Logger) *SQLiteStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLiteStore{repo: repositories.NewKeyValueRepository(db), logger: logger}
}

func (s *SQLiteStore) Get() (models.Session, bool) {
	values, err := s.repo.GetMany(keyToken, keyUser)
	if err != nil {
		s.logger.Warn("session storage unavailable", "error", err)
		return models.Session{}, false
	}
	return decodeSession(values, s.logger)
}

func (s *SQLiteStore) Token() (string, bool) {
	token, err := s.repo.Get(keyToken)
	if err != nil {
		if !errors.Is(err, shared.ErrKeyNotFound) {
			s.logger.Warn("session storage unavailable", "error", err)
		}
		return "", false
	}
	return token, token != ""
}

func (s *SQLiteStore) Set(token string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.repo.Put(map[string]string{keyToken: token, keyUser: string(data)}); err != nil {
		return errors.Join(shared.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if err := s.repo.Delete(keyToken, keyUser); err != nil {
		return errors.Join(shared.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) ClearToken(token string) (bool, error) {
	cleared, err := s.repo.DeleteIf(keyToken, token, keyToken, keyUser)
	if err != nil {
		return false, errors.Join(shared.ErrStorageUnavailable, err)
	}
	return cleared, nil
}

// MemoryStore is a [Store] that lives for the process only.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get() (models.Session, bool) {
	s.mu.Lock()
	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	s.mu.Unlock()

	return decodeSession(values, nil)
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.values[keyToken]
	return token, ok && token != ""
}

func (s *MemoryStore) Set(token string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyToken] = token
	s.values[keyUser] = string(data)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, keyToken)
	delete(s.values, keyUser)
	return nil
}

func (s *MemoryStore) ClearToken(token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.values[keyToken]; !ok || current != token {
		return false, nil
	}
	delete(s.values, keyToken)
	delete(s.values, keyUser)
	return true, nil
}

// decodeSession builds a session from raw kv values. A half-written or corrupt pair is treated as no session.
func decodeSession(values map[string]string, logger *log.Logger) (models.Session, bool) {
	token, hasToken := values[keyToken]
	raw, hasUser := values[keyUser]
	if !hasToken && !hasUser {
		return models.Session{}, false
	}
	if !hasToken || !hasUser {
		if logger != nil {
			logger.Warn("incomplete session in storage", "token", hasToken, "user", hasUser)
		}
		return models.Session{}, false
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		if logger != nil {
			logger.Warn("corrupt user record in storage", "error", err)
		}
		return models.Session{}, false
	}

	s := models.Session{Token: token, User: user}
	return s, s.Valid()
}

// GuardedStore wraps a [Store] so a logout that could not be written still takes effect.
//
// When Clear fails the token that was stored is withheld from Get and Token until a new session is set,
// so the pipeline stops sending it and a reload reads no session. The guard lives in memory only.
type GuardedStore struct {
	Store

	mu      sync.Mutex
	revoked string
}

// NewGuardedStore wraps inner.
func NewGuardedStore(inner Store) *GuardedStore {
	return &GuardedStore{Store: inner}
}

func (g *GuardedStore) withheld(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.revoked != "" && token == g.revoked
}

func (g *GuardedStore) Get() (models.Session, bool) {
	s, ok := g.Store.Get()
	if !ok || g.withheld(s.Token) {
		return models.Session{}, false
	}
	return s, true
}

func (g *GuardedStore) Token() (string, bool) {
	token, ok := g.Store.Token()
	if !ok || g.withheld(token) {
		return "", false
	}
	return token, true
}

func (g *GuardedStore) Set(token string, user models.User) error {
	if err := g.Store.Set(token, user); err != nil {
		return err
	}
	g.mu.Lock()
	g.revoked = ""
	g.mu.Unlock()
	return nil
}

func (g *GuardedStore) Clear() error {
	token, hasToken := g.Store.Token()
	err := g.Store.Clear()

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil && hasToken {
		g.revoked = token
	} else if err == nil {
		g.revoked = ""
	}
	return err
}
