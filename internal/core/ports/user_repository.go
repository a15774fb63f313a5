package ports

import (
	"context"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

// UserRepository defines persistence operations for registered accounts.
//
// Create must return a *domain.DuplicateCredentialError when a unique index on
// username or email rejects the insert. Field is left empty when the store
// cannot tell which index fired.
type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// FindByUsernameOrEmail returns the first user whose username or email
	// equals identifier exactly, or domain.ErrUserNotFound.
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
