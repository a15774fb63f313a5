package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portfolio/workitems-api/internal/core/domain"
	"github.com/portfolio/workitems-api/internal/core/ports"
)

const claimsKey = "session_claims"

// Auth validates the bearer token and injects the session claims into the
// context. Every rejection surfaces as domain.ErrUnauthenticated.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrUnauthenticated
			}

			claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				return domain.ErrUnauthenticated
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// SessionClaims returns the claims stored by Auth, if any.
func SessionClaims(c echo.Context) (*domain.SessionClaims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.SessionClaims)
	return claims, ok && claims != nil
}
