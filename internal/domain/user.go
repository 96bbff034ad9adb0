package domain

import "time"

// User is a dashboard user, identified by the fingerprint of the foxops token
// they logged in with.
type User struct {
	ID               string    `json:"id"                db:"id"`
	TokenFingerprint string    `json:"token_fingerprint" db:"token_fingerprint"`
	AccessToken      string    `json:"-"                 db:"access_token"` // never serialized to JSON
	CreatedAt        time.Time `json:"created_at"        db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"        db:"updated_at"`
	LastLoginAt      time.Time `json:"last_login_at"     db:"last_login_at"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID      string `json:"user_id"`
	Fingerprint string `json:"fingerprint"`
}
