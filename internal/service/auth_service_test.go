package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type fakeResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]repository.PasswordResetToken)}
}

func (r *fakeResetRepo) Create(ctx context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token.ID = fmt.Sprintf("reset-%d", r.seq)
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = *token
	return nil
}

func (r *fakeResetRepo) GetByToken(ctx context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := token
	return &copied, nil
}

func (r *fakeResetRepo) MarkUsed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			r.tokens[key] = token
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeResetRepo) lastToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest repository.PasswordResetToken
	for _, token := range r.tokens {
		if token.ID > latest.ID {
			latest = token
		}
	}
	return latest.Token
}

type authFixture struct {
	svc     *AuthService
	users   *fakeUserRepo
	resets  *fakeResetRepo
	gateway *fakeGateway
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	gateway := &fakeGateway{}

	svc := NewAuthService(AuthDependencies{
		UserRepo:  users,
		ResetRepo: resets,
		Tokens:    auth.NewTokenManager("test-secret", 60),
		Gateway:   gateway,
		AuthCfg: config.AuthConfig{
			BcryptCost:              4,
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
		},
		BaseURL: "http://localhost:5173",
	})
	return &authFixture{svc: svc, users: users, resets: resets, gateway: gateway}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     "Alice@Example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Email != "alice@example.com" {
		t.Errorf("email = %s, want lowercased", result.User.Email)
	}
	if result.User.Role != domain.RoleUser {
		t.Errorf("role = %s, want USER", result.User.Role)
	}
	if result.Token == "" {
		t.Error("token empty")
	}

	login, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Errorf("login returned user %s, want %s", login.User.ID, result.User.ID)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, err := f.svc.Login(context.Background(), "alice@example.com", "wrong"); !apperrors.IsCode(err, "UNAUTHORIZED") {
			t.Errorf("err = %v, want UNAUTHORIZED", err)
		}
	})
	t.Run("unknown email", func(t *testing.T) {
		if _, err := f.svc.Login(context.Background(), "nobody@example.com", "x"); !apperrors.IsCode(err, "UNAUTHORIZED") {
			t.Errorf("err = %v, want UNAUTHORIZED", err)
		}
	})
	t.Run("duplicate email", func(t *testing.T) {
		if _, err := f.svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "12345678"}); !apperrors.IsCode(err, "CONFLICT") {
			t.Errorf("err = %v, want CONFLICT", err)
		}
	})
	t.Run("short password", func(t *testing.T) {
		if _, err := f.svc.Register(context.Background(), RegisterInput{Email: "bob@example.com", Password: "short"}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})
}

func TestLoginDeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	result, err := f.svc.Register(context.Background(), RegisterInput{Email: "gone@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, _ := f.users.GetByID(context.Background(), result.User.ID)
	user.IsActive = false
	if err := f.users.Update(context.Background(), user); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := f.svc.Login(context.Background(), "gone@example.com", "password1"); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("err = %v, want FORBIDDEN", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.Register(context.Background(), RegisterInput{Email: "carol@example.com", Password: "original-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := f.svc.RequestPasswordReset(context.Background(), "carol@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if f.gateway.count() != 1 {
		t.Fatalf("reset emails sent = %d, want 1", f.gateway.count())
	}

	token := f.resets.lastToken()
	if err := f.svc.ResetPassword(context.Background(), token, "brand-new-pass"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := f.svc.Login(context.Background(), "carol@example.com", "brand-new-pass"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "carol@example.com", "original-pass"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Errorf("old password still works: %v", err)
	}

	t.Run("token single use", func(t *testing.T) {
		if err := f.svc.ResetPassword(context.Background(), token, "another-pass1"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})
	t.Run("unknown token", func(t *testing.T) {
		if err := f.svc.ResetPassword(context.Background(), "bogus", "another-pass1"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("err = %v, want VALIDATION_FAILED", err)
		}
	})
}

func TestPasswordResetUnknownEmailSilent(t *testing.T) {
	f := newAuthFixture(t)
	if err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("err = %v, want nil for unknown email", err)
	}
	if f.gateway.count() != 0 {
		t.Errorf("emails sent = %d, want 0", f.gateway.count())
	}
}

func TestPasswordResetExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.Register(context.Background(), RegisterInput{Email: "dave@example.com", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.svc.RequestPasswordReset(context.Background(), "dave@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}

	f.svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	if err := f.svc.ResetPassword(context.Background(), f.resets.lastToken(), "new-password"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("err = %v, want VALIDATION_FAILED for expired token", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	result, err := f.svc.Register(context.Background(), RegisterInput{Email: "erin@example.com", Password: "current-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	actor, _ := f.users.GetByID(context.Background(), result.User.ID)

	if err := f.svc.ChangePassword(context.Background(), actor, "current-pass", "next-password"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "erin@example.com", "next-password"); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	if err := f.svc.ChangePassword(context.Background(), actor, "wrong-pass", "whatever-1"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
}
