package auth

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/media"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/verifications"
)

type fakeUsers struct {
	byEmail map[string]*models.User
	nextID  int64
	err     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}, nextID: 100}
}

func (f *fakeUsers) add(u *models.User) { f.byEmail[u.Email] = u }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	c := *u
	c.ID = f.nextID
	f.byEmail[c.Email] = &c
	return &c, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, id int64) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.EmailVerified = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeAccounts struct {
	rows    []*models.Account
	updates int
}

func (f *fakeAccounts) FindByProvider(_ context.Context, providerID, accountID string) (*models.Account, error) {
	for _, a := range f.rows {
		if a.ProviderID == providerID && a.AccountID == accountID {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	c := *a
	c.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, &c)
	return &c, nil
}

func (f *fakeAccounts) UpdateTokens(_ context.Context, a *models.Account) error {
	f.updates++
	for _, row := range f.rows {
		if row.ID == a.ID {
			row.AccessToken = a.AccessToken
			if a.RefreshToken != "" {
				row.RefreshToken = a.RefreshToken
			}
		}
	}
	return nil
}

type fakeRepoManager struct {
	u *fakeUsers
	a *fakeAccounts
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository           { return m.a }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository           { return nil }
func (m *fakeRepoManager) Verifications(dbx.DBTX) verifications.Repository { return nil }
func (m *fakeRepoManager) Media(dbx.DBTX) media.Repository                 { return nil }
