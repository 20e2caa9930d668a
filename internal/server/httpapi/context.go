package httpapi

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

func withIdentity(ctx context.Context, u *models.User, s *models.Session) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, s)
}

// UserFromContext returns the user put on the context by the JWT guard.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*models.Session)
	return s, ok && s != nil
}
