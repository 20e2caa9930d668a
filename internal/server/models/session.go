package models

import "time"

// Session is a server-side login bound to a bearer token.
type Session struct {
	ID                int64
	PublicID          string
	Token             string
	IPAddress         string
	UserAgent         string
	DeviceName        string
	DeviceType        string
	TwoFactorVerified bool
	UserID            int64
	ExpiresAt         time.Time
	IsRevoked         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
