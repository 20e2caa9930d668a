package models

import "time"

type TokenType string

const (
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     TokenType = "PASSWORD_RESET"
	TokenTypeLoginOTP          TokenType = "LOGIN_OTP"
)

// Verification is a hashed one-time code; one per (identifier, type).
type Verification struct {
	ID         int64
	Identifier string
	TokenType  TokenType
	Value      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
