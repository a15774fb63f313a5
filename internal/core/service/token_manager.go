package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

const (
	defaultTokenTTL      = 24 * time.Hour
	defaultTokenIssuer   = "WorkItemsApi"
	defaultTokenAudience = "WorkItemsApiUsers"
)

var errEmptySecret = errors.New("token manager: signing secret is empty")

// TokenConfig configures session token signing. Zero values take defaults,
// except Secret which is mandatory.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenManager mints and verifies HS256 session tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

type sessionTokenClaims struct {
	UniqueName string `json:"unique_name"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errEmptySecret
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultTokenIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = defaultTokenAudience
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}, nil
}

// Issue signs a fresh token for user. The returned expiry equals the exp claim.
func (m *TokenManager) Issue(user *domain.User) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl).Truncate(time.Second)

	claims := sessionTokenClaims{
		UniqueName: user.Username,
		Email:      user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate reports domain.ErrUnauthenticated for any token that is malformed,
// not HS256, badly signed, expired, or issued for another issuer or audience.
func (m *TokenManager) Validate(token string) (*domain.SessionClaims, error) {
	var claims sessionTokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.SessionClaims{
		UserID:    claims.Subject,
		Username:  claims.UniqueName,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
