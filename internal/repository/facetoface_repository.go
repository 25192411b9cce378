package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/openlms/facetoface-api/internal/models"
)

// FacetofaceRepository handles persistence of face-to-face activities.
type FacetofaceRepository struct {
	db *sqlx.DB
}

// NewFacetofaceRepository constructs the repository.
func NewFacetofaceRepository(db *sqlx.DB) *FacetofaceRepository {
	return &FacetofaceRepository{db: db}
}

// FindByID returns a single activity by id.
func (r *FacetofaceRepository) FindByID(ctx context.Context, id int64) (*models.Facetoface, error) {
	var f models.Facetoface
	query := `SELECT id, course_id, name, description, approval_required, created_at, updated_at
        FROM facetoface WHERE id = $1`
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindCourse returns the course record by id.
func (r *FacetofaceRepository) FindCourse(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	query := `SELECT id, full_name, short_name FROM courses WHERE id = $1`
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
