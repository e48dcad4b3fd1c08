package account

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is returned by a successful login.
type Session struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
	LandingRoute string    `json:"landing_route"`
}

// NewUser carries the fields accepted when an account is created.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UserUpdate changes profile fields. A non-empty Password resets it.
type UserUpdate struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
	Password string `json:"password"`
}
