package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "userauth/internal/errors"
	"userauth/internal/model"
)

// AuthTokenRepository defines persistence operations for bearer tokens.
type AuthTokenRepository interface {
	Upsert(ctx context.Context, token *model.AuthToken) error
	FindByDigest(ctx context.Context, digest string) (*model.AuthToken, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

type authTokenRepository struct {
	db *gorm.DB
}

// NewAuthTokenRepository builds a GORM-backed token repository.
func NewAuthTokenRepository(db *gorm.DB) AuthTokenRepository {
	return &authTokenRepository{db: db}
}

// Upsert writes the token for token.UserID, replacing any previous one.
// Concurrent writers for the same user resolve as last write wins.
func (r *authTokenRepository) Upsert(ctx context.Context, token *model.AuthToken) error {
	token.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_digest", "updated_at"}),
		}).
		Create(token).Error
}

// FindByDigest returns the token row whose digest equals digest exactly.
func (r *authTokenRepository) FindByDigest(ctx context.Context, digest string) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.WithContext(ctx).Where("token_digest = ?", digest).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteByUserID removes the user's token. Missing rows are not an error.
func (r *authTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AuthToken{}).Error
}
