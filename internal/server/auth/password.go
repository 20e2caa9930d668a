package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

const (
	MsgUserNotFound     = "User with this email does not exist"
	MsgEmailNotVerified = "Email not verified"
	MsgNoPassword       = "User does not have a password set"
	MsgInvalidCreds     = "Invalid credentials"
)

type PasswordAuthenticator struct {
	users users.Repository
}

func NewPasswordAuthenticator(repo users.Repository) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: repo}
}

// Authenticate checks email and password and returns the user without its
// password hash.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.BadRequest(MsgUserNotFound)
		}
		return nil, err
	}

	if !user.EmailVerified {
		return nil, common.Unauthorized(MsgEmailNotVerified)
	}
	if !user.HasPassword() {
		return nil, common.Unauthorized(MsgNoPassword)
	}
	if !cryptox.ComparePassword(user.Password, password) {
		return nil, common.Unauthorized(MsgInvalidCreds)
	}

	return user.WithoutPassword(), nil
}
