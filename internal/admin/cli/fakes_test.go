package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/media"
	sessionsrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/verifications"
)

type fakeRepos struct {
	users      map[string]*models.User
	sessions   []*models.Session
	migrated   bool
	migrateErr error
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{users: map[string]*models.User{}}
}

func (f *fakeRepos) RunMigrations(context.Context, *sql.DB) error {
	if f.migrateErr != nil {
		return f.migrateErr
	}
	f.migrated = true
	return nil
}

func (f *fakeRepos) Users(dbx.DBTX) users.Repository                 { return (*fakeUsers)(f) }
func (f *fakeRepos) Sessions(dbx.DBTX) sessionsrepo.Repository       { return (*fakeSessions)(f) }
func (f *fakeRepos) Accounts(dbx.DBTX) accounts.Repository           { return nil }
func (f *fakeRepos) Verifications(dbx.DBTX) verifications.Repository { return nil }
func (f *fakeRepos) Media(dbx.DBTX) media.Repository                 { return nil }

type fakeUsers fakeRepos

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.users[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = int64(len(f.users) + 1)
	u.PublicID = fmt.Sprintf("user-%d", u.ID)
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) MarkEmailVerified(context.Context, int64) error { return nil }

type fakeSessions fakeRepos

func (f *fakeSessions) Create(_ context.Context, s *models.Session) (*models.Session, error) {
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeSessions) FindByID(_ context.Context, userID, id int64) (*models.Session, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.ID == id {
			return s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) FindByToken(_ context.Context, userID int64, token string) (*models.Session, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.Token == token {
			return s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) Revoke(_ context.Context, userID, id int64) error {
	s, err := f.FindByID(context.Background(), userID, id)
	if err != nil {
		return err
	}
	s.IsRevoked = true
	return nil
}

func (f *fakeSessions) RevokeAll(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.UserID == userID && !s.IsRevoked {
			s.IsRevoked = true
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) ListByUser(_ context.Context, userID int64) ([]*models.Session, error) {
	var out []*models.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) SetTwoFactorVerified(context.Context, int64, int64) error {
	return errors.New("not supported")
}
