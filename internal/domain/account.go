package domain

import (
	"time"
)

// Account roles exposed in access token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account represents a registered account in the system.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Verified     bool       `json:"verified"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Role returns the role encoded into access tokens for this account.
func (a *Account) Role() string {
	if a.IsSuperuser {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated-account view attached to a request after
// credential verification. Derived from Account, never persisted.
type Principal struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// RefreshToken represents a stored refresh token for an account session.
type RefreshToken struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
