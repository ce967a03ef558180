package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newUserServiceFixture(t *testing.T) (*UserService, *fakeUserRepo, *domain.User, *domain.User) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewUserService(users, config.AuthConfig{BcryptCost: 4}, nil)

	admin := users.add(domain.User{Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true})
	mod := users.add(domain.User{Email: "mod@example.com", Role: domain.RoleModerator, IsActive: true})
	return svc, users, &admin, &mod
}

func TestAdminCreateUser(t *testing.T) {
	svc, _, admin, mod := newUserServiceFixture(t)

	user, err := svc.Create(context.Background(), admin, AdminCreateUserInput{
		Email:    "new-mod@example.com",
		Password: "password1",
		Role:     domain.RoleModerator,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != domain.RoleModerator || !user.IsActive {
		t.Errorf("user = role %s active %v, want active MODERATOR", user.Role, user.IsActive)
	}

	t.Run("moderator forbidden", func(t *testing.T) {
		if _, err := svc.Create(context.Background(), mod, AdminCreateUserInput{Email: "x@example.com", Password: "password1"}); !apperrors.IsCode(err, "FORBIDDEN") {
			t.Errorf("err = %v, want FORBIDDEN", err)
		}
	})
	t.Run("invalid role", func(t *testing.T) {
		if _, err := svc.Create(context.Background(), admin, AdminCreateUserInput{Email: "y@example.com", Password: "password1", Role: "SUPERUSER"}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})
	t.Run("duplicate email", func(t *testing.T) {
		if _, err := svc.Create(context.Background(), admin, AdminCreateUserInput{Email: "new-mod@example.com", Password: "password1"}); !apperrors.IsCode(err, "CONFLICT") {
			t.Errorf("err = %v, want CONFLICT", err)
		}
	})
}

func TestAdminUpdateUser(t *testing.T) {
	svc, _, admin, mod := newUserServiceFixture(t)

	newRole := domain.RoleAdmin
	updated, err := svc.Update(context.Background(), admin, mod.ID, AdminUpdateUserInput{Role: &newRole})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", updated.Role)
	}

	t.Run("self-deactivation rejected", func(t *testing.T) {
		inactive := false
		if _, err := svc.Update(context.Background(), admin, admin.ID, AdminUpdateUserInput{IsActive: &inactive}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})
	t.Run("self-demotion rejected", func(t *testing.T) {
		demoted := domain.RoleUser
		if _, err := svc.Update(context.Background(), admin, admin.ID, AdminUpdateUserInput{Role: &demoted}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})
	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Update(context.Background(), admin, "nope", AdminUpdateUserInput{}); !apperrors.IsCode(err, "NOT_FOUND") {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestDeactivateUser(t *testing.T) {
	svc, users, admin, mod := newUserServiceFixture(t)

	updated, err := svc.Deactivate(context.Background(), admin, mod.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.IsActive {
		t.Error("user still active")
	}

	stored, _ := users.GetByID(context.Background(), mod.ID)
	if stored.IsActive {
		t.Error("deactivation not persisted")
	}
}

func TestListAssignable(t *testing.T) {
	svc, users, _, mod := newUserServiceFixture(t)
	users.add(domain.User{Email: "user@example.com", Role: domain.RoleUser, IsActive: true})
	users.add(domain.User{Email: "inactive-mod@example.com", Role: domain.RoleModerator, IsActive: false})

	assignable, err := svc.ListAssignable(context.Background(), mod)
	if err != nil {
		t.Fatalf("list assignable: %v", err)
	}
	if len(assignable) != 2 {
		t.Fatalf("assignable = %d, want 2 (active mod + active admin)", len(assignable))
	}
	for _, user := range assignable {
		if !user.IsActive || !user.IsModeratorOrAdmin() {
			t.Errorf("assignable includes %s (role %s, active %v)", user.Email, user.Role, user.IsActive)
		}
	}

	regular := &domain.User{ID: "u-x", Role: domain.RoleUser, IsActive: true}
	if _, err := svc.ListAssignable(context.Background(), regular); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("err = %v, want FORBIDDEN", err)
	}
}
