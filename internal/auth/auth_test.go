package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/store"
	"github.com/snigenigmatic/QuadChat/pkg/jwt"
)

const testSecret = "test-secret"

func newAuthenticator(t *testing.T, ttl time.Duration) (Authenticator, *jwt.Manager, *store.MemoryStore) {
	t.Helper()

	manager := jwt.NewManager(testSecret, ttl, "quadchat-test")
	st := store.NewMemoryStore()
	return NewJWTAuthenticator(manager, st), manager, st
}

func TestAuthenticateValidToken(t *testing.T) {
	a, manager, st := newAuthenticator(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, &domain.User{
		ID:    "u1",
		Name:  "alice",
		Email: "alice@example.com",
	}))

	token, err := manager.Generate("u1", "alice", "alice@example.com")
	require.NoError(t, err)

	identity, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "alice", identity.Name)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestAuthenticateMissingToken(t *testing.T) {
	a, _, _ := newAuthenticator(t, time.Hour)

	_, err := a.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	a, _, _ := newAuthenticator(t, time.Hour)

	_, err := a.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	a, _, _ := newAuthenticator(t, time.Hour)

	other := jwt.NewManager("different-secret", time.Hour, "quadchat-test")
	token, err := other.Generate("u1", "alice", "")
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	a, manager, st := newAuthenticator(t, -time.Minute)
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, &domain.User{ID: "u1", Name: "alice"}))

	token, err := manager.Generate("u1", "alice", "")
	require.NoError(t, err)

	_, err = a.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	a, manager, _ := newAuthenticator(t, time.Hour)

	// Valid token for an account that no longer exists.
	token, err := manager.Generate("deleted-user", "ghost", "")
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnknownUser)
}
