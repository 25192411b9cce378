package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlms/facetoface-api/internal/models"
)

// ErrNoSignup indicates a cancellation targeted a user without an active booking.
var ErrNoSignup = errors.New("user has no active signup for session")

// SignupRepository handles persistence of session signups.
type SignupRepository struct {
	db *sqlx.DB
}

// NewSignupRepository constructs the repository.
func NewSignupRepository(db *sqlx.DB) *SignupRepository {
	return &SignupRepository{db: db}
}

// CountAttendees counts signups for a session at or above the given status.
func (r *SignupRepository) CountAttendees(ctx context.Context, sessionID int64, minStatus models.SignupStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM signups WHERE session_id = $1 AND status >= $2`
	if err := r.db.GetContext(ctx, &count, query, sessionID, minStatus); err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	return count, nil
}

// Upsert books a user into a session, updating the existing signup when one
// is already present rather than duplicating it.
func (r *SignupRepository) Upsert(ctx context.Context, req models.SignupRequest) error {
	query := `INSERT INTO signups (session_id, user_id, status, discount_code, notification_type, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (session_id, user_id)
        DO UPDATE SET status = EXCLUDED.status, discount_code = EXCLUDED.discount_code,
            notification_type = EXCLUDED.notification_type, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, req.SessionID, req.UserID, req.Status, req.DiscountCode, req.NotificationType); err != nil {
		return fmt.Errorf("upsert signup: %w", err)
	}
	return nil
}

// Cancel marks a user's active signup as user-cancelled. Returns ErrNoSignup
// when the user holds no signup above the cancellation states.
func (r *SignupRepository) Cancel(ctx context.Context, sessionID, userID int64) error {
	query := `UPDATE signups SET status = $3, updated_at = NOW()
        WHERE session_id = $1 AND user_id = $2 AND status > $4`
	res, err := r.db.ExecContext(ctx, query, sessionID, userID, models.StatusUserCancelled, models.StatusDeclined)
	if err != nil {
		return fmt.Errorf("cancel signup: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel signup: %w", err)
	}
	if affected == 0 {
		return ErrNoSignup
	}
	return nil
}

// ListAttendees returns the session's signups joined with user identity,
// excluding cancellation states.
func (r *SignupRepository) ListAttendees(ctx context.Context, sessionID int64) ([]models.Attendee, error) {
	var attendees []models.Attendee
	query := `SELECT s.user_id, u.email, u.first_name, u.last_name, s.status
        FROM signups s
        JOIN users u ON u.id = s.user_id
        WHERE s.session_id = $1 AND s.status >= $2
        ORDER BY u.last_name, u.first_name`
	if err := r.db.SelectContext(ctx, &attendees, query, sessionID, models.StatusRequested); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}

// FindByUser returns a user's signup for a session if one exists.
func (r *SignupRepository) FindByUser(ctx context.Context, sessionID, userID int64) (*models.Signup, error) {
	var signup models.Signup
	query := `SELECT id, session_id, user_id, status, discount_code, notification_type, created_at, updated_at
        FROM signups WHERE session_id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &signup, query, sessionID, userID); err != nil {
		return nil, err
	}
	return &signup, nil
}
