package services

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/app/repositories"
	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/logger"
)

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users   repositories.UserStore
	tokens  *auth.Manager
	timeout time.Duration
}

func NewAuthService(users repositories.UserStore, tokens *auth.Manager, timeout time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, timeout: timeout}
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
}

// Register stores a new user with a bcrypt-hashed password and returns its id.
func (s *AuthService) Register(ctx context.Context, username, password string, role auth.Role) (uint, error) {
	if !role.Valid() {
		return 0, apperr.New(apperr.InvalidInput, "role must be seller or customer")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidInput, err, "password cannot be hashed")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user := models.User{Username: username, Password: hash, Role: string(role)}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return 0, apperr.New(apperr.DuplicateUsername, "username %q is already taken", username)
		}
		return 0, unavailable(ctx, "users.create", err)
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID, "role", role)
	return user.ID, nil
}

// Login verifies the password and issues a token carrying the user's role.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return LoginResult{}, apperr.New(apperr.UserNotFound, "user not found")
	}
	if err != nil {
		return LoginResult{}, unavailable(ctx, "users.find", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return LoginResult{}, apperr.New(apperr.InvalidCredentials, "invalid password")
	}

	role := auth.Role(user.Role)
	token, err := s.tokens.Issue(user.ID, role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Role: role}, nil
}
