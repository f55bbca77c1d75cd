// Package auth validates session tokens and resolves them to identities.
// Token issuance lives in the auth service; the chat core only consumes
// its contract.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/store"
	"github.com/snigenigmatic/QuadChat/pkg/jwt"
)

var (
	ErrMissingToken = errors.New("authentication token missing")
	ErrInvalidToken = errors.New("invalid authentication token")
	ErrUnknownUser  = errors.New("unknown user")
)

// Authenticator maps an opaque bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

type jwtAuthenticator struct {
	tokens *jwt.Manager
	users  store.UserStore
}

// NewJWTAuthenticator validates HS256 session tokens and loads the user
// behind each one, so a token for a deleted account is rejected.
func NewJWTAuthenticator(tokens *jwt.Manager, users store.UserStore) Authenticator {
	return &jwtAuthenticator{tokens: tokens, users: users}
}

func (a *jwtAuthenticator) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrMissingToken
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}

	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.Identity{}, ErrUnknownUser
		}
		return domain.Identity{}, err
	}

	return user.Identity(), nil
}
