package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Demo account seeded into every development server.
const (
	DemoEmail    = "user@movie.com"
	DemoPassword = "123456"

	defaultTokenTTL = time.Hour
	issuer          = "mvx-dev"
)

// Users holds bcrypt password hashes by email.
type Users struct {
	hashes map[string][]byte
}

// NewUsers creates a [Users] with a single account.
func NewUsers(email, password string) (*Users, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &Users{hashes: map[string][]byte{strings.ToLower(email): hash}}, nil
}

// Check reports whether password matches the account for email.
func (u *Users) Check(email, password string) bool {
	hash, ok := u.hashes[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// TokenIssuer signs and verifies HS256 tokens whose subject is the user's email.
type TokenIssuer struct {
	key []byte
	ttl time.Duration

	mu  sync.RWMutex
	now func() time.Time
}

// NewTokenIssuer creates a [TokenIssuer]. A non-positive ttl falls back to one hour.
func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{key: key, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// SetClock replaces the time source used for issuing and verifying.
func (t *TokenIssuer) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

func (t *TokenIssuer) clock() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.now()
}

// Issue signs a token for email.
func (t *TokenIssuer) Issue(email string) (string, error) {
	now := t.clock()
	claims := jwt.RegisteredClaims{
		ID:        shared.GenerateID(),
		Issuer:    issuer,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Verify checks signature, issuer and expiry and returns the subject.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AuthHandler serves POST /auth/login.
type AuthHandler struct {
	users  *Users
	tokens *TokenIssuer
	logger *log.Logger
}

func NewAuthHandler(users *Users, tokens *TokenIssuer, logger *log.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

func (h *AuthHandler) Routes() []Route {
	return []Route{{Method: http.MethodPost, Path: "/auth/login", Handler: h.login}}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Request body must be JSON with email and password")
		return
	}
	if err := creds.Validate(); err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !h.users.Check(creds.Email, creds.Password) {
		h.logger.Warn("failed login", "email", creds.Email)
		writeProblem(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	token, err := h.tokens.Issue(email)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		writeProblem(w, r, http.StatusInternalServerError, "Could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	})
}
