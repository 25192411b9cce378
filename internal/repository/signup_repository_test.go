package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/openlms/facetoface-api/internal/models"
)

func TestSignupRepositoryCountAttendees(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(4)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signups WHERE session_id = $1 AND status >= $2")).
		WithArgs(int64(5), models.StatusApproved).
		WillReturnRows(rows)

	count, err := repo.CountAttendees(context.Background(), 5, models.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (session_id, user_id)")).
		WithArgs(int64(5), int64(11), models.StatusBooked, "EARLY", models.NotifyBoth).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), models.SignupRequest{
		SessionID:        5,
		UserID:           11,
		Status:           models.StatusBooked,
		DiscountCode:     "EARLY",
		NotificationType: models.NotifyBoth,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryCancel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE signups SET status = $3")).
		WithArgs(int64(5), int64(11), models.StatusUserCancelled, models.StatusDeclined).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), 5, 11))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryCancelWithoutActiveSignup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE signups SET status = $3")).
		WithArgs(int64(5), int64(11), models.StatusUserCancelled, models.StatusDeclined).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 5, 11)
	require.ErrorIs(t, err, ErrNoSignup)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryListAttendees(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "email", "first_name", "last_name", "status"}).
		AddRow(int64(11), "alice@example.com", "Alice", "Aalto", models.StatusBooked).
		AddRow(int64(12), "bob@example.com", "Bob", "Berg", models.StatusWaitlisted)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = s.user_id")).
		WithArgs(int64(5), models.StatusRequested).
		WillReturnRows(rows)

	attendees, err := repo.ListAttendees(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	require.Equal(t, "booked", attendees[0].StatusLabel())
	require.NoError(t, mock.ExpectationsWereMet())
}
