package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/openlms/facetoface-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func userColumns() []string {
	return []string{"id", "email", "password_hash", "first_name", "last_name", "role", "suspended", "last_login", "created_at", "updated_at"}
}

func TestUserRepositoryFindAllByEmailExact(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow(int64(11), "alice@example.com", "hash", "Alice", "Aalto", models.RoleLearner, false, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 ORDER BY id")).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	users, err := repo.FindAllByEmail(context.Background(), "alice@example.com", true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, int64(11), users[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindAllByEmailFolded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow(int64(11), "alice@example.com", "hash", "Alice", "Aalto", models.RoleLearner, false, nil, now, now).
		AddRow(int64(12), "ALICE@example.com", "hash", "Alice", "Other", models.RoleLearner, false, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1) ORDER BY id")).
		WithArgs("Alice@Example.com").
		WillReturnRows(rows)

	users, err := repo.FindAllByEmail(context.Background(), "Alice@Example.com", false)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	ts := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1")).
		WithArgs(int64(11), ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), 11, ts))
	require.NoError(t, mock.ExpectationsWereMet())
}
