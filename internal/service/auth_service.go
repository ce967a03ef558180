package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService handles registration, login and password recovery.
type AuthService struct {
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	tokens  *auth.TokenManager
	gateway notify.Gateway
	cfg     config.AuthConfig
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	ResetRepo repository.PasswordResetRepository
	Tokens    *auth.TokenManager
	Gateway   notify.Gateway
	AuthCfg   config.AuthConfig
	BaseURL   string
	Logger    *zap.Logger
}

// RegisterInput carries self-service registration payload. Registered
// accounts always start as USER; elevated roles are granted by admins.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AuthResult pairs a signed token with its subject.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:   deps.UserRepo,
		resets:  deps.ResetRepo,
		tokens:  deps.Tokens,
		gateway: deps.Gateway,
		cfg:     deps.AuthCfg,
		baseURL: deps.BaseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a USER account and returns a fresh token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("valid email required", map[string]any{"email": input.Email})
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	return s.issue(user)
}

// Login verifies credentials and returns a token. Deactivated accounts
// cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("account deactivated")
	}
	return s.issue(user)
}

// RequestPasswordReset stores a single-use token and mails the reset
// link. Unknown emails succeed silently so the endpoint does not leak
// which addresses are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(time.Duration(s.cfg.PasswordResetTTLMinutes) * time.Minute),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return apperrors.MapError(err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.baseURL, "/"), token.Token)
	if err := s.gateway.Enqueue(ctx,
		"[HelpDesk] Password reset requested",
		fmt.Sprintf("A password reset was requested for your account.\n\nReset link: %s\n\nThe link expires in %d minutes. If you did not request this, ignore this email.\n",
			link, s.cfg.PasswordResetTTLMinutes),
		[]string{user.Email},
	); err != nil {
		s.logger.Warn("failed to enqueue password reset email",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	token, err := s.resets.GetByToken(ctx, strings.TrimSpace(tokenStr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid or expired reset token", nil)
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || s.now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("invalid or expired reset token", nil)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ChangePassword updates the actor's own password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, currentPassword, newPassword string) error {
	if err := auth.ComparePassword(actor.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	actor.PasswordHash = hash
	if err := s.users.Update(ctx, actor); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
