package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
)

// UserResolver loads a user by id from storage, bypassing any user cache.
// ErrUserNotFound signals a missing record. repository.UserRepository
// satisfies it.
type UserResolver interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// Gate resolves the acting identity of a request from its bearer token.
//
// The stored token row is the source of truth: a token is accepted when a row
// with the identical digest exists and its owner can be loaded. With
// verifySignature set, the signature and embedded user id are checked too.
type Gate struct {
	tokens          repository.AuthTokenRepository
	users           UserResolver
	jwt             *JWTService
	verifySignature bool
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithSignatureVerification makes the gate re-verify the token signature
// after the stored row matched.
func WithSignatureVerification(jwt *JWTService) GateOption {
	return func(g *Gate) {
		g.jwt = jwt
		g.verifySignature = jwt != nil
	}
}

// NewGate creates an Auth Gate.
func NewGate(tokens repository.AuthTokenRepository, users UserResolver, opts ...GateOption) *Gate {
	g := &Gate{tokens: tokens, users: users}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate resolves the user behind an Authorization header value.
// It returns ErrTokenNotFound when no stored token matches and ErrInvalidToken
// when the token's owner cannot be resolved. Storage failures are returned
// wrapped.
func (g *Gate) Authenticate(ctx context.Context, authHeader string) (*model.User, error) {
	token := BearerToken(authHeader)
	if token == "" {
		return nil, apperrors.ErrTokenNotFound
	}

	row, err := g.tokens.FindByDigest(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	user, err := g.users.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	if g.verifySignature {
		claims, err := g.jwt.Parse(token)
		if err != nil || claims.UserID != user.ID {
			return nil, apperrors.ErrInvalidToken
		}
	}

	return user, nil
}

// BearerToken extracts the token from a "<scheme> <token>" header value.
// Anything not shaped like two space-separated parts yields "".
func BearerToken(authHeader string) string {
	parts := strings.Split(strings.TrimSpace(authHeader), " ")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
