package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

const userColumns = `id, organization_id, email, username, first_name, last_name,
	password_hash, role, status, last_login_at, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return mapError(insertUser(ctx, r.db, user), "create user")
}

func insertUser(ctx context.Context, db sqlx.ExecerContext, user *model.User) error {
	query := `
		INSERT INTO users (
			id, organization_id, email, username, first_name, last_name,
			password_hash, role, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.ExecContext(ctx, query,
		user.ID,
		user.OrganizationID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, mapError(err, "get user")
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1) OR username = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &user, query, login); err != nil {
		return nil, mapError(err, "get user by login")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE organization_id = $1 AND ($2 = '' OR role = $2)
		ORDER BY last_name, first_name`

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, filter.OrganizationID, string(filter.Role)); err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filter model.UserFilter) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE organization_id = $1 AND ($2 = '' OR role = $2)`
	if err := r.db.GetContext(ctx, &count, query, filter.OrganizationID, string(filter.Role)); err != nil {
		return 0, mapError(err, "count users")
	}
	return count, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return mapError(err, "update password hash")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return mapError(err, "update last login")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
