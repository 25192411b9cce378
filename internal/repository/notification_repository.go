package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlms/facetoface-api/internal/models"
)

// NotificationRepository stores outbound notices for the mail dispatcher.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert queues one notice.
func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (kind, user_id, session_id, facetoface_id, channel, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := r.db.ExecContext(ctx, query, n.Kind, n.UserID, n.SessionID, n.FacetofaceID, n.Channel); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
