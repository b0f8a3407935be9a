package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/auth"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// UserService handles registration, profile lookup, role management, and
// badge awarding.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService) *UserService {
	return &UserService{users: users, passwords: passwords}
}

// RegisterInput is the payload accepted at registration. Password is
// optional; accounts created through a social login flow have none.
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatarUrl"`
}

// Register creates a new account. The email must not already be registered:
// a friendly pre-check catches the common case and the UNIQUE index on the
// email column backstops the race.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.ValidationFailed("email", "Email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		AvatarURL: in.AvatarURL,
	}

	if in.Password != "" {
		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", "Password is too long")
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperror.ValidationFailed("email", "Email is required")
	}
	return s.users.GetByEmail(ctx, email)
}

// List returns a page of users, newest registration first, with totals over
// the whole user table.
func (s *UserService) List(ctx context.Context, req PageRequest) ([]model.User, PageInfo, error) {
	users, err := s.users.List(ctx, req.listOptions(""))
	if err != nil {
		return nil, PageInfo{}, err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return users, pageInfo(req, total), nil
}

// UpdateRole sets the user's role. Only the two known roles are accepted.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.ValidationFailed("id", "Invalid User ID format")
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return apperror.ValidationFailed("role", fmt.Sprintf("Unknown role %q", role))
	}
	return s.users.UpdateRole(ctx, id, role)
}

// AddBadge awards a badge to the user identified by email. Awarding a badge
// the user already has is a no-op.
func (s *UserService) AddBadge(ctx context.Context, email, badge string) error {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return apperror.ValidationFailed("badge", "Badge is required")
	}
	if strings.TrimSpace(email) == "" {
		return apperror.ValidationFailed("email", "Email is required")
	}
	return s.users.AddBadge(ctx, email, badge)
}
