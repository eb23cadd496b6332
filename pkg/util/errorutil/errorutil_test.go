package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "domain error", err: NewForbidden("nope"), wantCode: "FORBIDDEN", wantStatus: http.StatusForbidden},
		{name: "wrapped domain error", err: fmt.Errorf("ctx: %w", NewConflict("dup", nil)), wantCode: "CONFLICT", wantStatus: http.StatusConflict},
		{name: "fiber error", err: fiber.NewError(http.StatusBadRequest, "invalid payload"), wantCode: "VALIDATION_FAILED", wantStatus: http.StatusBadRequest},
		{name: "no rows", err: pgx.ErrNoRows, wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound},
		{name: "unique violation", err: fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), wantCode: "CONFLICT", wantStatus: http.StatusConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "23503"}, wantCode: "INTERNAL_ERROR", wantStatus: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), wantCode: "INTERNAL_ERROR", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode || got.HTTPStatus != tt.wantStatus {
				t.Errorf("ToDomainError() = %s/%d, want %s/%d", got.Code, got.HTTPStatus, tt.wantCode, tt.wantStatus)
			}
		})
	}
}

func TestNewRedirectDetails(t *testing.T) {
	de := ToDomainError(NewRedirect(http.StatusForbidden, "status_mismatch", "/restaurant/account-suspended", "account_suspended"))
	if de.Code != "REDIRECT" {
		t.Fatalf("code = %s", de.Code)
	}
	if de.Details["redirect"] != "/restaurant/account-suspended" {
		t.Errorf("redirect = %v", de.Details["redirect"])
	}
	if de.Details["destination"] != "account_suspended" {
		t.Errorf("destination = %v", de.Details["destination"])
	}
}

func TestMapErrorNil(t *testing.T) {
	if err := MapError(nil); err != nil {
		t.Fatalf("MapError(nil) = %v, want nil", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) || IsUniqueViolation(errors.New("boom")) {
		t.Error("only 23505 is a unique violation")
	}
}
