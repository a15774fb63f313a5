package domain

import "time"

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionClaims is the identity carried by a validated session token.
type SessionClaims struct {
	UserID    string
	Username  string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
