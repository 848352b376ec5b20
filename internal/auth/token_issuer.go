package auth

import (
	"context"
	"fmt"

	"userauth/internal/model"
	"userauth/internal/repository"
)

// TokenIssuer mints bearer tokens and keeps the one stored token per user in
// sync with what was handed out.
type TokenIssuer struct {
	jwt    *JWTService
	tokens repository.AuthTokenRepository
}

// NewTokenIssuer creates a token issuer.
func NewTokenIssuer(jwt *JWTService, tokens repository.AuthTokenRepository) *TokenIssuer {
	return &TokenIssuer{jwt: jwt, tokens: tokens}
}

// Issue signs a token for user and stores it as the user's only valid token,
// replacing any previous one.
func (i *TokenIssuer) Issue(ctx context.Context, user *model.User) (string, error) {
	token, err := i.jwt.Sign(user.ID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	row := &model.AuthToken{UserID: user.ID, TokenDigest: token}
	if err := i.tokens.Upsert(ctx, row); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	user.AuthToken = row
	return token, nil
}

// Revoke deletes the user's token if there is one.
func (i *TokenIssuer) Revoke(ctx context.Context, user *model.User) error {
	if err := i.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	user.AuthToken = nil
	return nil
}
