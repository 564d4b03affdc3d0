package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User represents an administrator account stored in the users table.
// Accounts are created at seed time only; there is no self-registration.
type User struct {
	ID           int    `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
	Name         string `db:"name" json:"name"`
	Role         string `db:"role" json:"role"`
}

// RoleAdmin is the only role this system assigns.
const RoleAdmin = "admin"

// JWTClaims carries the authenticated user identity inside access tokens.
type JWTClaims struct {
	UserID   int    `json:"uid"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the credentials payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the public projection of a user returned by auth endpoints.
type UserInfo struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginResponse bundles the issued token with the user identity.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}
