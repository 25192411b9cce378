package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openlms/facetoface-api/internal/models"
)

// UserRepository handles persistence of users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a single user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, password_hash, first_name, last_name, role, suspended, last_login, created_at, updated_at
        FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the single user matching an email exactly.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, password_hash, first_name, last_name, role, suspended, last_login, created_at, updated_at
        FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAllByEmail returns every user whose email matches, ordered by id.
// Case folding is applied when caseSensitive is false.
func (r *UserRepository) FindAllByEmail(ctx context.Context, email string, caseSensitive bool) ([]models.User, error) {
	query := `SELECT id, email, password_hash, first_name, last_name, role, suspended, last_login, created_at, updated_at
        FROM users WHERE email = $1 ORDER BY id`
	if !caseSensitive {
		query = `SELECT id, email, password_hash, first_name, last_name, role, suspended, last_login, created_at, updated_at
        FROM users WHERE LOWER(email) = LOWER($1) ORDER BY id`
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, email); err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	return users, nil
}

// UpdateLastLogin stamps the user's most recent login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
