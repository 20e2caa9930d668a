// Package sessions implements the server-side session lifecycle: creation at
// login, validation on every authenticated request, and one-way revocation.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	sessionsrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/sessions"
)

const (
	MsgInvalidSession = "Invalid session token"
	MsgRevoked        = "Session has been revoked"
	MsgExpired        = "Session has expired"
)

// Lookup identifies a session either by its numeric id or by its token.
// Build one with ByID or ByToken.
type Lookup struct {
	byID  bool
	id    int64
	token string
}

func ByID(id int64) Lookup {
	return Lookup{byID: true, id: id}
}

func ByToken(token string) Lookup {
	return Lookup{token: token}
}

type Manager struct {
	repo sessionsrepo.Repository
	now  func() time.Time
}

func NewManager(repo sessionsrepo.Repository) *Manager {
	return &Manager{repo: repo, now: time.Now}
}

// CreateSession stores a session for userID bound to token and returns the
// token to be set as the bearer cookie.
func (m *Manager) CreateSession(ctx context.Context, userID int64, expiresAt time.Time, info DeviceInfo, token string) (string, error) {
	s, err := m.repo.Create(ctx, &models.Session{
		Token:      token,
		IPAddress:  info.IPAddress,
		UserAgent:  info.UserAgent,
		DeviceName: info.DeviceName,
		DeviceType: info.DeviceType,
		UserID:     userID,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

// ValidateSession returns the session if it exists for userID, is not
// revoked and has not expired.
func (m *Manager) ValidateSession(ctx context.Context, userID int64, l Lookup) (*models.Session, error) {
	s, err := m.find(ctx, userID, l)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(MsgInvalidSession)
		}
		return nil, err
	}

	if s.IsRevoked {
		return nil, common.Unauthorized(MsgRevoked)
	}
	if s.Expired(m.now()) {
		return nil, common.Unauthorized(MsgExpired)
	}
	return s, nil
}

// RevokeSession validates the session and marks it revoked. Revoking an
// already revoked session fails validation.
func (m *Manager) RevokeSession(ctx context.Context, userID int64, l Lookup) (bool, error) {
	s, err := m.ValidateSession(ctx, userID, l)
	if err != nil {
		return false, err
	}
	if err := m.repo.Revoke(ctx, userID, s.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) RevokeAllUserSessions(ctx context.Context, userID int64) (int64, error) {
	return m.repo.RevokeAll(ctx, userID)
}

func (m *Manager) ListSessions(ctx context.Context, userID int64) ([]*models.Session, error) {
	return m.repo.ListByUser(ctx, userID)
}

// MarkTwoFactorVerified flags a live session as having passed the second
// factor.
func (m *Manager) MarkTwoFactorVerified(ctx context.Context, userID int64, l Lookup) error {
	s, err := m.ValidateSession(ctx, userID, l)
	if err != nil {
		return err
	}
	return m.repo.SetTwoFactorVerified(ctx, userID, s.ID)
}

func (m *Manager) find(ctx context.Context, userID int64, l Lookup) (*models.Session, error) {
	if l.byID {
		return m.repo.FindByID(ctx, userID, l.id)
	}
	return m.repo.FindByToken(ctx, userID, l.token)
}
