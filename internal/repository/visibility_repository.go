package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// VisibilityRepository answers manager-visibility questions from the
// organisational hierarchy and profile-field reporting links.
type VisibilityRepository struct {
	db *sqlx.DB
}

// NewVisibilityRepository constructs the repository.
func NewVisibilityRepository(db *sqlx.DB) *VisibilityRepository {
	return &VisibilityRepository{db: db}
}

// CountVisibleUsers counts non-suspended users reporting to the given user.
// A user is visible through either sourcing strategy: a hierarchy position
// the acting user holds a manager or manage-users grant over, or a direct or
// delegated "reports to" profile-field link. The strategies are combined at
// the join level so one query answers both.
func (r *VisibilityRepository) CountVisibleUsers(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(DISTINCT u.id)
        FROM users u
        LEFT JOIN position_assignments pa ON pa.user_id = u.id
        LEFT JOIN position_roles pr ON pr.position_id = pa.position_id
            AND pr.user_id = $1 AND pr.permission IN ('manager', 'manage_users')
        LEFT JOIN user_profile_fields pf_pos ON pf_pos.user_id = $1 AND pf_pos.shortname = 'posid'
        LEFT JOIN user_profile_fields pf_del ON pf_del.user_id = $1 AND pf_del.shortname = 'repdel'
        LEFT JOIN user_profile_fields pf_rep ON pf_rep.user_id = u.id AND pf_rep.shortname = 'reportsto'
        WHERE u.suspended = false AND (
            pr.user_id IS NOT NULL
            OR (pf_pos.value > '1' AND pf_rep.value = pf_pos.value)
            OR (pf_del.value > '1' AND pf_rep.value = pf_del.value)
        )`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count visible users: %w", err)
	}
	return count, nil
}
