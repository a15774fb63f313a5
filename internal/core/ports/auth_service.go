package ports

import (
	"context"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.AuthResult, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*domain.AuthResult, error)
}

// TokenValidator verifies a session token and returns its claims.
// Every failure is reported as domain.ErrUnauthenticated.
type TokenValidator interface {
	Validate(token string) (*domain.SessionClaims, error)
}
