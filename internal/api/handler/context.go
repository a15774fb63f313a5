package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portfolio/workitems-api/internal/api/middleware"
	"github.com/portfolio/workitems-api/internal/core/domain"
)

// bind decodes the request body into req. A malformed body is reported as a
// validation failure on the "body" field.
func bind(c echo.Context, req any) error {
	err := c.Bind(req)
	if err == nil {
		return nil
	}

	msg := "request body is not valid JSON"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusUnsupportedMediaType {
			return err
		}
		if he.Internal != nil {
			msg = he.Internal.Error()
		}
	}

	ve := domain.NewValidationError()
	ve.Add("body", msg)
	return ve
}

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was registered without it.
func ctxClaims(c echo.Context) (*domain.SessionClaims, error) {
	claims, ok := middleware.SessionClaims(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
