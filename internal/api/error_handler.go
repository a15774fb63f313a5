package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors and hides their cause unless development is set.
//   - Renders a consistent JSON envelope: {"error": "...", "details": {...}}.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, development, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, development bool, c echo.Context) (int, errorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: ve.Fields}
	}

	var dup *domain.DuplicateCredentialError
	if errors.As(err, &dup) {
		return http.StatusBadRequest, errorResponse{Error: dup.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrInvalidCredentials.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
	case errors.Is(err, domain.ErrWorkItemNotFound):
		return http.StatusNotFound, errorResponse{Error: domain.ErrWorkItemNotFound.Error()}
	case errors.Is(err, domain.ErrIdempotencyBusy):
		return http.StatusConflict, errorResponse{Error: domain.ErrIdempotencyBusy.Error()}
	}

	// Echo's own errors (router 404/405, body too large, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	resp := errorResponse{Error: "Internal server error"}
	if development {
		resp.Details = map[string]string{"message": err.Error()}
	}
	return http.StatusInternalServerError, resp
}
