package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionCols = []string{"id", "public_id", "token", "ip_address", "user_agent", "device_name", "device_type",
	"two_factor_verified", "user_id", "expires_at", "is_revoked", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sessionRow(rows *sqlmock.Rows, id int64, token string, created time.Time, revoked bool) *sqlmock.Rows {
	return rows.AddRow(id, "pub", token, "1.2.3.4", "Chrome - 120", "Linux - Chrome", "desktop",
		false, int64(9), created.Add(time.Hour), revoked, created, created)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	exp := now.Add(time.Hour)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+sessions\s*\(token,\s*ip_address,\s*user_agent,\s*device_name,\s*device_type,\s*user_id,\s*expires_at\)`).
		WithArgs("jwt", "1.2.3.4", "Chrome - 120", "Linux - Chrome", "desktop", int64(9), exp).
		WillReturnRows(sessionRow(sqlmock.NewRows(sessionCols), 1, "jwt", now, false))

	got, err := repo.Create(context.Background(), &models.Session{
		Token: "jwt", IPAddress: "1.2.3.4", UserAgent: "Chrome - 120", DeviceName: "Linux - Chrome",
		DeviceType: "desktop", UserID: 9, ExpiresAt: exp,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "jwt", got.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+sessions`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "sessions_token_unique"})

	_, err := repo.Create(context.Background(), &models.Session{Token: "dup"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_NoRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+sessions`).WillReturnRows(sqlmock.NewRows(sessionCols))

	_, err := repo.Create(context.Background(), &models.Session{Token: "t"})
	assert.ErrorIs(t, err, common.ErrorNoRowReturned)
}

func TestFindByToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+sessions\s+WHERE\s+token\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`

	mock.ExpectQuery(q).WithArgs("jwt", int64(9)).
		WillReturnRows(sessionRow(sqlmock.NewRows(sessionCols), 1, "jwt", time.Now(), true))

	got, err := repo.FindByToken(context.Background(), 9, "jwt")
	require.NoError(t, err)
	assert.True(t, got.IsRevoked)

	mock.ExpectQuery(q).WithArgs("nope", int64(9)).WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByToken(context.Background(), 9, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs(int64(5), int64(9)).
		WillReturnRows(sessionRow(sqlmock.NewRows(sessionCols), 5, "jwt", time.Now(), false))

	got, err := repo.FindByID(context.Background(), 9, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestRevoke(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+sessions\s+SET\s+is_revoked\s*=\s*TRUE.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`

	mock.ExpectExec(q).WithArgs(int64(5), int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Revoke(context.Background(), 9, 5))

	mock.ExpectExec(q).WillReturnError(errors.New("boom"))
	assert.Error(t, repo.Revoke(context.Background(), 9, 5))
}

func TestRevokeAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+sessions\s+SET\s+is_revoked\s*=\s*TRUE.*WHERE\s+user_id\s*=\s*\$1\s+AND\s+is_revoked\s*=\s*FALSE$`

	mock.ExpectExec(q).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RevokeAll(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestListByUser_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(sessionCols)
	sessionRow(rows, 2, "b", now, false)
	sessionRow(rows, 1, "a", now.Add(-time.Hour), true)

	mock.ExpectQuery(`(?s)FROM\s+sessions\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WithArgs(int64(9)).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+sessions`).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(sessionCols))

	got, err := repo.ListByUser(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByUser_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+sessions`).WillReturnError(errors.New("boom"))

	_, err := repo.ListByUser(context.Background(), 9)
	assert.Error(t, err)
}

func TestSetTwoFactorVerified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+sessions\s+SET\s+two_factor_verified\s*=\s*TRUE`).
		WithArgs(int64(5), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetTwoFactorVerified(context.Background(), 9, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}
