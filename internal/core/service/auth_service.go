package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio/workitems-api/internal/core/domain"
	"github.com/portfolio/workitems-api/internal/core/ports"
	"github.com/portfolio/workitems-api/internal/pkg/validation"
)

type registerInput struct {
	Username string `json:"username" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type loginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"notblank"`
	Password        string `json:"password" validate:"required"`
}

// AuthService implements registration and login.
type AuthService struct {
	users    ports.UserRepository
	tokens   *TokenManager
	validate *validation.Validator
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens *TokenManager, validate *validation.Validator, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.AuthResult, error) {
	if err := s.validate.Struct(registerInput{Username: username, Email: email, Password: password}); err != nil {
		return nil, err
	}

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, &domain.DuplicateCredentialError{Field: "username"}
	}
	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, &domain.DuplicateCredentialError{Field: "email"}
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		var dup *domain.DuplicateCredentialError
		if errors.As(err, &dup) {
			return nil, s.resolveDuplicate(ctx, dup, username)
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return s.issue(user)
}

// resolveDuplicate names the colliding field when the store could not.
func (s *AuthService) resolveDuplicate(ctx context.Context, dup *domain.DuplicateCredentialError, username string) error {
	if dup.Field != "" {
		return dup
	}
	if exists, err := s.users.ExistsByUsername(ctx, username); err == nil && exists {
		return &domain.DuplicateCredentialError{Field: "username"}
	}
	return &domain.DuplicateCredentialError{Field: "email"}
}

func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*domain.AuthResult, error) {
	if err := s.validate.Struct(loginInput{UsernameOrEmail: usernameOrEmail, Password: password}); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, usernameOrEmail)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Same bcrypt cost as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), bcryptInput(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptInput(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// bcrypt only reads the first 72 bytes of a password.
const bcryptMaxBytes = 72

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

var (
	dummyHashOnce sync.Once
	dummyHashVal  []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashVal, _ = bcrypt.GenerateFromPassword([]byte("workitems-unknown-user"), bcrypt.DefaultCost)
	})
	return dummyHashVal
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		Token:     token,
		Username:  user.Username,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}
