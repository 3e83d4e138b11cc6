package model

import "time"

// Account status constants
const (
	AccountStatusActive   = "active"
	AccountStatusExpired  = "expired"
	AccountStatusDisabled = "disabled"
)

// Account is an end user account whose lifetime is governed by the security parameters.
type Account struct {
	ID                int        `json:"id" db:"id"`
	Login             string     `json:"login" db:"login"`
	Email             string     `json:"email" db:"email"`
	Status            string     `json:"status" db:"status"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	PasswordExpiresAt *time.Time `json:"password_expires_at,omitempty" db:"password_expires_at"`
	AlertsSent        int        `json:"alerts_sent" db:"alerts_sent"`
	LastAlertAt       *time.Time `json:"last_alert_at,omitempty" db:"last_alert_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// ExpiringAccountFilter selects accounts that should receive an expiry alert.
type ExpiringAccountFilter struct {
	ExpiresBefore   time.Time
	MaxAlerts       int
	LastAlertBefore time.Time
	Limit           int
}
