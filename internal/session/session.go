package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marcovilla/storefront-client/internal/storage"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/types"
	"go.uber.org/multierr"
)

// Storage keys, matching what the hosted frontend keeps in localStorage.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Storage is the durable backing the store persists through.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Session is a read-only snapshot of the current auth state.
type Session struct {
	User            *types.User
	AccessToken     string
	IsAuthenticated bool
}

// Store owns the session lifecycle: loaded once at startup, mutated by
// login/logout, torn down only by explicit logout or token clearing. It is
// constructed in main and injected, never package-global.
type Store struct {
	mu      sync.RWMutex
	storage Storage

	user    *types.User
	access  string
	refresh string
}

// Load reads persisted state and returns a ready store. A missing or
// unreadable user record degrades to an anonymous session rather than
// failing startup.
func Load(ctx context.Context, backing Storage) (*Store, error) {
	if backing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStorage, "session storage is required")
	}

	s := &Store{storage: backing}

	access, err := backing.Get(ctx, KeyAccessToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	refresh, err := backing.Get(ctx, KeyRefreshToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	s.access = strings.TrimSpace(access)
	s.refresh = strings.TrimSpace(refresh)

	if raw, err := backing.Get(ctx, KeyUser); err == nil && raw != "" {
		var user types.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			s.user = &user
		}
	}

	return s, nil
}

// Login persists the token pair and identity, flipping the session to
// authenticated. Subsequent gateway calls carry the access token.
func (s *Store) Login(ctx context.Context, user *types.User, access, refresh string) error {
	access = strings.TrimSpace(access)
	if access == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access token is required")
	}

	if err := s.storage.Set(ctx, KeyAccessToken, access); err != nil {
		return err
	}
	if refresh != "" {
		if err := s.storage.Set(ctx, KeyRefreshToken, refresh); err != nil {
			return err
		}
	}
	if user != nil {
		if err := s.persistUser(ctx, user); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.user = user
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
	return nil
}

// Logout clears both token entries and the cached identity. Calling it twice
// yields the same cleared state as once.
func (s *Store) Logout(ctx context.Context) error {
	err := multierr.Combine(
		s.storage.Delete(ctx, KeyAccessToken, KeyRefreshToken),
		s.storage.Delete(ctx, KeyUser),
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = nil
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()
	return nil
}

// UpdateUser replaces the cached identity without touching the tokens.
func (s *Store) UpdateUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user is required")
	}
	if err := s.persistUser(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// Current returns the session snapshot. The invariant holds by construction:
// IsAuthenticated is true exactly when an access token is present.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{
		User:            s.user,
		AccessToken:     s.access,
		IsAuthenticated: s.access != "",
	}
}

// AccessToken returns the current bearer token, empty when anonymous.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the stored refresh token. Refresh-token exchange is
// not implemented; the server's logout endpoint wants it for blacklisting.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// ClearTokens drops both tokens but keeps the cached identity, matching what
// the gateway does when the server answers 401. The next Current() read
// reports IsAuthenticated false.
func (s *Store) ClearTokens(ctx context.Context) error {
	if err := s.storage.Delete(ctx, KeyAccessToken, KeyRefreshToken); err != nil {
		return err
	}

	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()
	return nil
}

// TokenExpiry peeks at the access token's exp claim without verifying the
// signature (the client has no signing secret). ok is false when there is no
// token or no parsable expiry.
func (s *Store) TokenExpiry() (expiry time.Time, ok bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) persistUser(ctx context.Context, user *types.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode user")
	}
	return s.storage.Set(ctx, KeyUser, string(raw))
}
