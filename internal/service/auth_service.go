package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ontohin26/ontohin/internal/auth"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"go.uber.org/zap"
)

// AuthService signs staff into the admin console. There is no sign-up:
// the only account is the admin seeded at start-up.
type AuthService struct {
	users  *repository.UserRepo
	tokens *auth.Issuer
	log    *zap.Logger
}

func NewAuthService(users *repository.UserRepo, tokens *auth.Issuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log.With(zap.String("service", "auth"))}
}

type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt string              `json:"expiresAt"`
	User      models.UserResponse `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		s.log.Warn("login rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	s.log.Info("admin signed in", zap.String("user_id", user.ID))
	return &AuthResult{Token: token, ExpiresAt: models.Timestamp(exp), User: user.ToResponse()}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

// SeedAdmin creates the admin account unless it already exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		CreatedAt:    models.Timestamp(time.Now()),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin seeded", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
