package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlms/facetoface-api/internal/models"
)

// SessionRepository handles persistence of sessions and their dates.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID returns a session with its date windows loaded.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	var session models.Session
	query := `SELECT id, facetoface_id, capacity, allow_overbook, datetime_known, details, created_at, updated_at
        FROM sessions WHERE id = $1`
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}

	dates, err := r.findDates(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Dates = dates
	return &session, nil
}

// ListByFacetoface returns all sessions of an activity with dates loaded.
func (r *SessionRepository) ListByFacetoface(ctx context.Context, facetofaceID int64) ([]models.Session, error) {
	var sessions []models.Session
	query := `SELECT id, facetoface_id, capacity, allow_overbook, datetime_known, details, created_at, updated_at
        FROM sessions WHERE facetoface_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &sessions, query, facetofaceID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for i := range sessions {
		dates, err := r.findDates(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Dates = dates
	}
	return sessions, nil
}

func (r *SessionRepository) findDates(ctx context.Context, sessionID int64) ([]models.SessionDate, error) {
	var dates []models.SessionDate
	query := `SELECT id, session_id, time_start, time_finish FROM session_dates
        WHERE session_id = $1 ORDER BY time_start`
	if err := r.db.SelectContext(ctx, &dates, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session dates: %w", err)
	}
	return dates, nil
}
