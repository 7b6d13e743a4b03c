package services

import (
	"context"
	"errors"
	"strings"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
	"tabletrack/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || strings.TrimSpace(user.Name) == "" {
		return apperrors.NewInvalidInput("name and email are required")
	}
	if password == "" {
		return apperrors.NewInvalidInput("password is required")
	}
	if user.Role == "" {
		user.Role = models.RoleWaiter
	}
	if _, ok := models.ParseUserRole(string(user.Role)); !ok {
		return apperrors.NewInvalidInput("invalid role %q", user.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("a user with this email already exists")
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	return user, nil
}
