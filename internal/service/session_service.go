package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-user-password"), bcryptCost)

// SessionService handles login and logout.
type SessionService interface {
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, user *model.User) error
	IssueToken(ctx context.Context, user *model.User) (string, error)
}

type sessionService struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
}

// NewSessionService creates a new session service.
func NewSessionService(users repository.UserRepository, issuer *auth.TokenIssuer) SessionService {
	return &sessionService{users: users, issuer: issuer}
}

// Login verifies the credentials and issues a fresh token, replacing any
// token the user held before.
func (s *sessionService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes the token of an authenticated user. Revoking an absent
// token succeeds.
func (s *sessionService) Logout(ctx context.Context, user *model.User) error {
	return s.issuer.Revoke(ctx, user)
}

// IssueToken issues a token for a freshly created user.
func (s *sessionService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	return s.issuer.Issue(ctx, user)
}
