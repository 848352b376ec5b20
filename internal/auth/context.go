package auth

import (
	"context"

	"userauth/internal/model"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying user as the acting identity.
func WithIdentity(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFrom returns the acting identity bound by the Auth Gate.
func IdentityFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(identityKey{}).(*model.User)
	return user, ok && user != nil
}
