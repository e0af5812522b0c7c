package repository

import (
	"context"
	"database/sql"

	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/google/uuid"
)

// PostgresUserRepository stores accounts in the users table.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository with the given
// database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts u, assigning an id when empty. A taken email is
// reported as apperr.ErrConflict by the unique index, not by a prior lookup.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, firstname, lastname, role, is_first_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, u.Firstname, u.Lastname, string(u.Role), u.IsFirstLogin,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return classify("CreateUser", err)
	}
	return nil
}

// GetUserByEmail returns the account registered under email.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		u    models.User
		role string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, firstname, lastname, role, is_first_login, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname, &role,
		&u.IsFirstLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, classify("GetUserByEmail", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}
