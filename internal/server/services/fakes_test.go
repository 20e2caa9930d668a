package services

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/media"
	sessionsrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/verifications"
)

// memStore is an in-memory stand-in for all repositories.
type memStore struct {
	users         map[int64]*models.User
	sessions      []*models.Session
	accounts      []*models.Account
	verifications map[string]*models.Verification
	media         []*models.Media
	seq           int64
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*models.User{}, verifications: map[string]*models.Verification{}}
}

func (m *memStore) next() int64 {
	m.seq++
	return m.seq
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeRepoManager struct{ s *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return (*userRepo)(f.s) }
func (f *fakeRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository       { return (*sessionRepo)(f.s) }
func (f *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository           { return (*accountRepo)(f.s) }
func (f *fakeRepoManager) Verifications(dbx.DBTX) verifications.Repository { return (*verificationRepo)(f.s) }
func (f *fakeRepoManager) Media(dbx.DBTX) media.Repository                 { return (*mediaRepo)(f.s) }

type userRepo memStore

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	s := (*memStore)(r)
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = s.next()
	c.PublicID = "pub-user"
	s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) MarkEmailVerified(_ context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.EmailVerified = true
	return nil
}

type sessionRepo memStore

func (r *sessionRepo) Create(_ context.Context, s *models.Session) (*models.Session, error) {
	st := (*memStore)(r)
	c := *s
	c.ID = st.next()
	c.CreatedAt = time.Now()
	st.sessions = append(st.sessions, &c)
	out := c
	return &out, nil
}

func (r *sessionRepo) find(userID int64, match func(*models.Session) bool) (*models.Session, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && match(s) {
			c := *s
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *sessionRepo) FindByID(_ context.Context, userID, id int64) (*models.Session, error) {
	return r.find(userID, func(s *models.Session) bool { return s.ID == id })
}

func (r *sessionRepo) FindByToken(_ context.Context, userID int64, token string) (*models.Session, error) {
	return r.find(userID, func(s *models.Session) bool { return s.Token == token })
}

func (r *sessionRepo) Revoke(_ context.Context, userID, id int64) error {
	for _, s := range r.sessions {
		if s.UserID == userID && s.ID == id {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *sessionRepo) RevokeAll(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && !s.IsRevoked {
			s.IsRevoked = true
			n++
		}
	}
	return n, nil
}

func (r *sessionRepo) ListByUser(_ context.Context, userID int64) ([]*models.Session, error) {
	var out []*models.Session
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].UserID == userID {
			out = append(out, r.sessions[i])
		}
	}
	return out, nil
}

func (r *sessionRepo) SetTwoFactorVerified(_ context.Context, userID, id int64) error {
	for _, s := range r.sessions {
		if s.UserID == userID && s.ID == id {
			s.TwoFactorVerified = true
		}
	}
	return nil
}

type accountRepo memStore

func (r *accountRepo) FindByProvider(_ context.Context, providerID, accountID string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.ProviderID == providerID && a.AccountID == accountID {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *accountRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	st := (*memStore)(r)
	c := *a
	c.ID = st.next()
	st.accounts = append(st.accounts, &c)
	return &c, nil
}

func (r *accountRepo) UpdateTokens(_ context.Context, a *models.Account) error {
	for _, row := range r.accounts {
		if row.ID == a.ID {
			row.AccessToken = a.AccessToken
		}
	}
	return nil
}

type verificationRepo memStore

func vkey(identifier string, t models.TokenType) string { return identifier + "/" + string(t) }

func (r *verificationRepo) Find(_ context.Context, identifier string, t models.TokenType) (*models.Verification, error) {
	v, ok := r.verifications[vkey(identifier, t)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *v
	return &c, nil
}

func (r *verificationRepo) Upsert(_ context.Context, v *models.Verification) error {
	c := *v
	c.UpdatedAt = time.Now()
	r.verifications[vkey(v.Identifier, v.TokenType)] = &c
	return nil
}

func (r *verificationRepo) Delete(_ context.Context, identifier string, t models.TokenType) error {
	delete(r.verifications, vkey(identifier, t))
	return nil
}

type mediaRepo memStore

func (r *mediaRepo) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	st := (*memStore)(r)
	c := *m
	c.ID = st.next()
	c.PublicID = "media-" + string(rune('a'+c.ID%26))
	c.CreatedAt = time.Now().Add(time.Duration(c.ID) * time.Millisecond)
	st.media = append(st.media, &c)
	out := c
	return &out, nil
}

func (r *mediaRepo) ListByUser(_ context.Context, userID int64) ([]*models.Media, error) {
	out := make([]*models.Media, 0)
	for _, m := range r.media {
		if m.UploadedBy == userID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *mediaRepo) GetByPublicID(_ context.Context, userID int64, publicID string) (*models.Media, error) {
	for _, m := range r.media {
		if m.UploadedBy == userID && m.PublicID == publicID {
			c := *m
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *mediaRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, m := range r.media {
		if m.UploadedBy == userID {
			n++
		}
	}
	return n, nil
}

func (r *mediaRepo) Update(_ context.Context, userID int64, publicID string, altText, filename *string) (*models.Media, error) {
	for _, m := range r.media {
		if m.UploadedBy == userID && m.PublicID == publicID {
			if altText != nil {
				m.AltText = *altText
			}
			if filename != nil {
				m.Filename = *filename
			}
			c := *m
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *mediaRepo) Delete(_ context.Context, userID int64, publicID string) error {
	for i, m := range r.media {
		if m.UploadedBy == userID && m.PublicID == publicID {
			r.media = append(r.media[:i], r.media[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// captureMailer records sent emails.
type captureMailer struct {
	sent []mailer.Email
	err  error
}

func (c *captureMailer) Send(_ context.Context, e mailer.Email) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, e)
	return nil
}

// memObjects is an in-memory storage.ObjectStore.
type memObjects struct {
	objects map[string][]byte
	putErr  error
}

func newMemObjects() *memObjects { return &memObjects{objects: map[string][]byte{}} }

func (o *memObjects) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if o.putErr != nil {
		return o.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	o.objects[key] = b
	return nil
}

func (o *memObjects) Delete(_ context.Context, key string) error {
	delete(o.objects, key)
	return nil
}

func (o *memObjects) PresignGet(_ context.Context, key string) (string, error) {
	return "https://storage.test/" + key + "?sig=1", nil
}
