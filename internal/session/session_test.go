package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marcovilla/storefront-client/internal/storage"
	"github.com/marcovilla/storefront-client/pkg/types"
)

type memoryStorage struct {
	values map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{values: map[string]string{}}
}

func (m *memoryStorage) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (m *memoryStorage) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestLoginPersistsAndAuthenticates(t *testing.T) {
	ctx := context.Background()
	backing := newMemoryStorage()
	store, err := Load(ctx, backing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if store.Current().IsAuthenticated {
		t.Fatalf("expected anonymous session before login")
	}

	user := &types.User{ID: 1, Username: "maria"}
	if err := store.Login(ctx, user, "access-token", "refresh-token"); err != nil {
		t.Fatalf("login: %v", err)
	}

	current := store.Current()
	if !current.IsAuthenticated {
		t.Fatalf("expected authenticated session after login")
	}
	if current.AccessToken != "access-token" {
		t.Fatalf("unexpected access token %q", current.AccessToken)
	}
	if backing.values[KeyAccessToken] != "access-token" {
		t.Fatalf("access token not persisted")
	}
	if backing.values[KeyRefreshToken] != "refresh-token" {
		t.Fatalf("refresh token not persisted")
	}
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	backing := newMemoryStorage()

	first, err := Load(ctx, backing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := first.Login(ctx, &types.User{ID: 7, Username: "amit"}, "tok", "ref"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Simulates an application restart reading the same storage.
	second, err := Load(ctx, backing)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	current := second.Current()
	if !current.IsAuthenticated {
		t.Fatalf("expected restored session to be authenticated")
	}
	if current.User == nil || current.User.Username != "amit" {
		t.Fatalf("expected restored user, got %+v", current.User)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backing := newMemoryStorage()
	store, err := Load(ctx, backing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.Login(ctx, &types.User{ID: 2, Username: "lena"}, "tok", "ref"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	after := store.Current()

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	again := store.Current()

	if after.IsAuthenticated || again.IsAuthenticated {
		t.Fatalf("expected cleared session after logout")
	}
	if after != again {
		t.Fatalf("expected identical cleared state, got %+v vs %+v", after, again)
	}
	if len(backing.values) != 0 {
		t.Fatalf("expected empty storage after logout, got %v", backing.values)
	}
}

func TestClearTokensFlipsAuthOnNextRead(t *testing.T) {
	ctx := context.Background()
	backing := newMemoryStorage()
	store, err := Load(ctx, backing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.Login(ctx, &types.User{ID: 3, Username: "noor"}, "tok", "ref"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := store.ClearTokens(ctx); err != nil {
		t.Fatalf("clear tokens: %v", err)
	}

	current := store.Current()
	if current.IsAuthenticated {
		t.Fatalf("expected unauthenticated session after token clear")
	}
	if _, ok := backing.values[KeyAccessToken]; ok {
		t.Fatalf("access token still stored")
	}
	if _, ok := backing.values[KeyRefreshToken]; ok {
		t.Fatalf("refresh token still stored")
	}
	// The cached identity survives a token clear; only logout drops it.
	if current.User == nil || current.User.Username != "noor" {
		t.Fatalf("expected cached user to survive, got %+v", current.User)
	}
}

func TestUpdateUserKeepsTokens(t *testing.T) {
	ctx := context.Background()
	store, err := Load(ctx, newMemoryStorage())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.Login(ctx, &types.User{ID: 4, Username: "old"}, "tok", "ref"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := store.UpdateUser(ctx, &types.User{ID: 4, Username: "new"}); err != nil {
		t.Fatalf("update user: %v", err)
	}

	current := store.Current()
	if current.User == nil || current.User.Username != "new" {
		t.Fatalf("expected updated identity, got %+v", current.User)
	}
	if current.AccessToken != "tok" {
		t.Fatalf("expected token untouched, got %q", current.AccessToken)
	}
}

func TestTokenExpiryPeek(t *testing.T) {
	ctx := context.Background()
	store, err := Load(ctx, newMemoryStorage())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := store.TokenExpiry(); ok {
		t.Fatalf("expected no expiry without a token")
	}

	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
		"sub": "4",
	})
	signed, err := token.SignedString([]byte("irrelevant-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if err := store.Login(ctx, nil, signed, ""); err != nil {
		t.Fatalf("login: %v", err)
	}

	got, ok := store.TokenExpiry()
	if !ok {
		t.Fatalf("expected expiry from token")
	}
	if !got.Equal(expiry) {
		t.Fatalf("expected expiry %v, got %v", expiry, got)
	}
}
