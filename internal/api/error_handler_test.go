package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

func renderError(t *testing.T, err error, development bool) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop(), development)(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	ve := domain.NewValidationError()
	ve.Add("title", "title is required")

	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", ve, http.StatusBadRequest, "Validation failed"},
		{"duplicate username", &domain.DuplicateCredentialError{Field: "username"}, http.StatusBadRequest, "Username already exists"},
		{"duplicate email", &domain.DuplicateCredentialError{Field: "email"}, http.StatusBadRequest, "Email already exists"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username/email or password"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
		{"not found", fmt.Errorf("get: %w", domain.ErrWorkItemNotFound), http.StatusNotFound, "work item not found"},
		{"idempotency busy", domain.ErrIdempotencyBusy, http.StatusConflict, "a request with this Idempotency-Key is still in progress"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		code, body := renderError(t, tc.err, false)
		if code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, code)
		}
		if body.Error != tc.msg {
			t.Fatalf("%s: expected message %q, got %q", tc.name, tc.msg, body.Error)
		}
	}
}

func TestHTTPErrorHandler_ValidationDetails(t *testing.T) {
	ve := domain.NewValidationError()
	ve.Add("title", "title is required")
	ve.Add("priority", "priority must be one of: Low, Medium, High")

	_, body := renderError(t, ve, false)
	if body.Details["title"] != "title is required" {
		t.Fatalf("missing title detail: %+v", body.Details)
	}
	if body.Details["priority"] == "" {
		t.Fatalf("missing priority detail: %+v", body.Details)
	}
}

func TestHTTPErrorHandler_InternalDetailOnlyInDevelopment(t *testing.T) {
	cause := errors.New("connection refused")

	_, prod := renderError(t, cause, false)
	if prod.Details != nil {
		t.Fatalf("production response must not leak details: %+v", prod.Details)
	}

	_, dev := renderError(t, cause, true)
	if dev.Details["message"] != "connection refused" {
		t.Fatalf("expected development detail, got %+v", dev.Details)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = c.NoContent(http.StatusNoContent)
	NewHTTPErrorHandler(zerolog.Nop(), false)(errors.New("late"), c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}
