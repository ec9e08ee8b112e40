package domain

import "time"

// Session is the authenticated operator. It is created by sign-in or restored
// from local storage, and destroyed by sign-out.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials are what an operator types at the sign-in prompt.
type Credentials struct {
	Email    string
	Password string
}

// Complete reports whether both values were entered.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// Expired reports whether the token expiry has passed. Sessions without an
// expiry never expire locally.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
