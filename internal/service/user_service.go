package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userauth/internal/cache"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
)

const (
	userCacheTTL = 5 * time.Minute
	bcryptCost   = 10
)

// UserInput carries user attributes from a request. Nil fields are absent;
// on create every field is treated as present.
type UserInput struct {
	Name                 *string
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

// UserService exposes domain operations.
type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, input UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	cache     *cache.Client
	validator *fieldValidator
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache, validator: newFieldValidator()}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// CreateUser validates input, hashes the password and stores the user.
func (s *userService) CreateUser(ctx context.Context, input UserInput) (*model.User, error) {
	name, email, password := strings.TrimSpace(deref(input.Name)), deref(input.Email), deref(input.Password)

	var messages []string
	messages = s.validator.check(messages, nameRule, name)
	messages = s.validator.check(messages, emailRule, model.NormalizeEmail(email))
	messages, err := s.checkEmailTaken(ctx, messages, email, 0)
	if err != nil {
		return nil, err
	}
	messages = s.validator.check(messages, passwordRule, password)
	messages = checkConfirmation(messages, password, input.PasswordConfirmation)
	if len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError("Email has already been taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}

// GetUser returns the user by id, served from cache when possible. Cached
// copies never carry the password hash.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// UpdateUser applies the present fields of input to the stored user.
func (s *userService) UpdateUser(ctx context.Context, id uint, input UserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var messages []string
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
		messages = s.validator.check(messages, nameRule, name)
	}
	if input.Email != nil {
		messages = s.validator.check(messages, emailRule, model.NormalizeEmail(*input.Email))
		if messages, err = s.checkEmailTaken(ctx, messages, *input.Email, user.ID); err != nil {
			return nil, err
		}
	}
	if input.Password != nil {
		messages = s.validator.check(messages, passwordRule, *input.Password)
		messages = checkConfirmation(messages, *input.Password, input.PasswordConfirmation)
	}
	if len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError("Email has already been taken")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}

// DeleteUser removes the user together with its auth token.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) checkEmailTaken(ctx context.Context, messages []string, email string, exceptID uint) ([]string, error) {
	if model.NormalizeEmail(email) == "" {
		return messages, nil
	}
	taken, err := s.repo.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		messages = append(messages, "Email has already been taken")
	}
	return messages, nil
}

func checkConfirmation(messages []string, password string, confirmation *string) []string {
	if confirmation != nil && *confirmation != password {
		messages = append(messages, "Password confirmation doesn't match Password")
	}
	return messages
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
