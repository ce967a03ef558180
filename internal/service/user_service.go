package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UserService covers admin account management plus the assignable
// staff listing used by the assignment UI.
type UserService struct {
	users  repository.UserRepository
	cfg    config.AuthConfig
	logger *zap.Logger
}

// AdminCreateUserInput carries the admin user creation payload.
type AdminCreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      domain.UserRole
}

// AdminUpdateUserInput carries partial updates. Nil fields are left
// unchanged.
type AdminUpdateUserInput struct {
	FirstName *string
	LastName  *string
	Role      *domain.UserRole
	IsActive  *bool
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, cfg config.AuthConfig, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, cfg: cfg, logger: logger}
}

// List returns accounts matching the filter. Admin only.
func (s *UserService) List(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("only admins can manage users")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get returns one account. Admin only.
func (s *UserService) Get(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("only admins can manage users")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Create provisions an account with an explicit role. Admin only.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input AdminCreateUserInput) (*domain.User, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("only admins can manage users")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("valid email required", map[string]any{"email": input.Email})
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
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
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update applies partial changes to an account. Admins cannot
// deactivate or demote themselves.
func (s *UserService) Update(ctx context.Context, actor *domain.User, userID string, input AdminUpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	if user.ID == actor.ID {
		if input.IsActive != nil && !*input.IsActive {
			return nil, apperrors.NewValidationError("admins cannot deactivate their own account", nil)
		}
		if input.Role != nil && *input.Role != domain.RoleAdmin {
			return nil, apperrors.NewValidationError("admins cannot change their own role", nil)
		}
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Deactivate disables an account without deleting its history.
func (s *UserService) Deactivate(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	inactive := false
	return s.Update(ctx, actor, userID, AdminUpdateUserInput{IsActive: &inactive})
}

// ListAssignable returns the active moderators and admins a ticket can
// be assigned to. Any staff member may consult it.
func (s *UserService) ListAssignable(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !authz.IsModeratorOrAdmin(actor) {
		return nil, apperrors.NewForbidden("only moderators and admins can list assignees")
	}

	active := true
	var result []domain.User
	for _, role := range []domain.UserRole{domain.RoleModerator, domain.RoleAdmin} {
		role := role
		users, err := s.users.List(ctx, repository.UserFilter{Role: &role, IsActive: &active, Limit: 500})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, users...)
	}
	return result, nil
}
