package model

import (
	"time"
)

// User is a registered account. IsAdmin and IsOwner are independent flags:
// an account can hold either without the other, and "admin access" means
// IsAdmin OR IsOwner wherever it is checked.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"` // stored lowercased
	HashedPassword string `json:"-"`     // empty for external-login-only accounts
	IsAdmin        bool   `json:"is_admin"`
	IsOwner        bool   `json:"is_owner"`
	IsVerified     bool   `json:"is_email_verified"`

	// Single-use recovery tokens. A token is live only while it is non-null
	// and its paired expiry is in the future; consumption clears both.
	PasswordResetToken      *string    `json:"-"`
	PasswordResetExpires    *time.Time `json:"-"`
	EmailVerificationToken  *string    `json:"-"`
	EmailVerificationExpire *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthSnapshot is the authorization view handed to handlers after a session
// resolves. Fields come from the live user record, not from token claims.
type AuthSnapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	IsOwner  bool   `json:"is_owner"`
}

func (u *User) Snapshot() *AuthSnapshot {
	return &AuthSnapshot{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		IsOwner:  u.IsOwner,
	}
}
