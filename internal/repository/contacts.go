package repository

import (
	"context"
	"database/sql"

	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/google/uuid"
)

// PostgresContactRepository stores delivered contact messages.
type PostgresContactRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresContactRepository creates a PostgresContactRepository.
func NewPostgresContactRepository(db *sql.DB) *PostgresContactRepository {
	return &PostgresContactRepository{DB: db}
}

// CreateContactMessage inserts m and fills its id and creation time.
func (r *PostgresContactRepository) CreateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, sender_email, sender_name, subject, message, to_profile_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.SenderEmail, m.SenderName, m.Subject, m.Message, m.ToProfileID).Scan(&m.CreatedAt)
	if err != nil {
		return classify("CreateContactMessage", err)
	}
	return nil
}
