package models

import "time"

// Account links an external identity provider account to a user.
type Account struct {
	ID                    int64
	AccountID             string
	ProviderID            string
	UserID                int64
	AccessToken           string
	RefreshToken          string
	IDToken               string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	Scope                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
