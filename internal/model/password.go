package model

import "time"

// PasswordHistoryEntry is an encoded password kept after a successful change.
// Entries are append-only.
type PasswordHistoryEntry struct {
	UserID       int       `json:"user_id" db:"user_id"`
	EncodedValue string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// PasswordCheckResponse reports the first failing rule, or "valid".
type PasswordCheckResponse struct {
	Outcome string `json:"outcome"`
	Valid   bool   `json:"valid"`
}

// PasswordChangeResponse is returned after a password change attempt.
type PasswordChangeResponse struct {
	PasswordCheckResponse
	PasswordExpiresAt *time.Time `json:"password_expires_at,omitempty"`
}

// ExpiryResponse reports the expiry dates a password or account created now would get.
type ExpiryResponse struct {
	PasswordExpiresAt *time.Time `json:"password_expires_at"`
	AccountExpiresAt  *time.Time `json:"account_expires_at"`
}

// AccessResponse reports whether a login is currently locked out.
type AccessResponse struct {
	Login  string `json:"login"`
	Locked bool   `json:"locked"`
}
