package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestDomainErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"invalid transition", NewInvalidTransition("nope", nil), "INVALID_TRANSITION", http.StatusBadRequest},
		{"not found", NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("who"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("no"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", NewConflict("dup", nil), "CONFLICT", http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var domainErr *DomainError
			if !errors.As(tc.err, &domainErr) {
				t.Fatalf("not a DomainError: %v", tc.err)
			}
			if domainErr.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", domainErr.Code, tc.wantCode)
			}
			if domainErr.HTTPStatus != tc.wantStatus {
				t.Errorf("status = %d, want %d", domainErr.HTTPStatus, tc.wantStatus)
			}
			if !IsCode(tc.err, tc.wantCode) {
				t.Errorf("IsCode(%s) = false", tc.wantCode)
			}
		})
	}
}

func TestToDomainError(t *testing.T) {
	t.Run("passes through DomainError", func(t *testing.T) {
		original := NewForbidden("no")
		wrapped := fmt.Errorf("handler: %w", original)
		if got := ToDomainError(wrapped); got.Code != "FORBIDDEN" {
			t.Errorf("code = %s, want FORBIDDEN", got.Code)
		}
	})
	t.Run("maps pgx.ErrNoRows to NOT_FOUND", func(t *testing.T) {
		if got := ToDomainError(pgx.ErrNoRows); got.Code != "NOT_FOUND" {
			t.Errorf("code = %s, want NOT_FOUND", got.Code)
		}
	})
	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		got := ToDomainError(errors.New("disk full"))
		if got.Code != "INTERNAL_ERROR" {
			t.Errorf("code = %s, want INTERNAL_ERROR", got.Code)
		}
		if got.Unwrap() == nil {
			t.Error("cause dropped")
		}
	})
	t.Run("nil stays nil", func(t *testing.T) {
		if got := ToDomainError(nil); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}

func TestIsCode(t *testing.T) {
	err := NewValidationError("bad", nil)
	if IsCode(err, "FORBIDDEN") {
		t.Error("IsCode matched wrong code")
	}
	if IsCode(errors.New("plain"), "VALIDATION_FAILED") {
		t.Error("IsCode matched non-domain error")
	}
	if IsCode(nil, "VALIDATION_FAILED") {
		t.Error("IsCode matched nil")
	}
}
