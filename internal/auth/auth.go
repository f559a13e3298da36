// Package auth is the admin gate. One shared credential guards the admin
// surface (a real user model is out of scope), but verification happens
// server side against a bcrypt hash and grants an opaque expiring session
// token instead of the old client-held constant.
package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const DefaultSessionTTL = 12 * time.Hour

type Service struct {
	passwordHash []byte
	ttl          time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]time.Time

	now func() time.Time
}

func NewService(password string, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if password == "" {
		return nil, errors.New("admin password must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		passwordHash: hash,
		ttl:          ttl,
		logger:       logger,
		sessions:     make(map[string]time.Time),
		now:          time.Now,
	}, nil
}

// Login verifies the password and mints a session token.
func (s *Service) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.New().String()

	s.mu.Lock()
	s.sessions[token] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return token, nil
}

// Validate reports whether the token belongs to a live session. Expired
// sessions are dropped on sight.
func (s *Service) Validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.sessions, token)
		return false
	}
	return true
}

func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Middleware rejects requests without a live admin session.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || !s.Validate(token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
