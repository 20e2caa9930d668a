// Package models holds the server's persistent entities.
package models

import (
	"encoding/json"
	"time"
)

// User is a registered person. Password holds a bcrypt hash and is empty for
// OAuth-only accounts.
type User struct {
	ID               int64
	PublicID         string
	Name             string
	Email            string
	Password         string
	EmailVerified    bool
	Image            string
	ImageInformation json.RawMessage
	Phone            string
	Is2FAEnabled     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// WithoutPassword returns a copy of u with the password hash cleared.
func (u *User) WithoutPassword() *User {
	c := *u
	c.Password = ""
	return &c
}
