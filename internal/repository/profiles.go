package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const profileColumns = `id, email, firstname, lastname, intro, jobs, bio, contact_details, social_accounts,
		profile_image_url, bio_image_url, download_cv_url, auto_email, auto_email_passcode, created_at, updated_at`

// PostgresProfileRepository stores profiles.
type PostgresProfileRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresProfileRepository creates a PostgresProfileRepository.
func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p                   models.Profile
		contact, social     []byte
		autoEmail, autoPass sql.NullString
	)
	err := row.Scan(&p.ID, &p.Email, &p.Firstname, &p.Lastname, &p.Intro, pq.Array(&p.Jobs), &p.Bio,
		&contact, &social, &p.ProfileImageURL, &p.BioImageURL, &p.DownloadCvURL,
		&autoEmail, &autoPass, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(contact, &p.ContactDetails); err != nil {
		return nil, err
	}
	if err := fromJSON(social, &p.SocialAccounts); err != nil {
		return nil, err
	}
	if autoEmail.Valid || autoPass.Valid {
		p.AutoEmailCredentials = &models.EmailCredentials{Email: autoEmail.String, Passcode: autoPass.String}
	}
	return &p, nil
}

// profileArgs returns the column values shared by insert and update, in
// profileColumns order without id and timestamps.
func profileArgs(p *models.Profile) ([]any, error) {
	contact, err := toJSON(p.ContactDetails)
	if err != nil {
		return nil, err
	}
	social, err := toJSON(p.SocialAccounts)
	if err != nil {
		return nil, err
	}
	var autoEmail, autoPass sql.NullString
	if c := p.AutoEmailCredentials; c != nil {
		autoEmail = sql.NullString{String: c.Email, Valid: c.Email != ""}
		autoPass = sql.NullString{String: c.Passcode, Valid: c.Passcode != ""}
	}
	return []any{
		p.Email, p.Firstname, p.Lastname, p.Intro, pq.Array(p.Jobs), p.Bio, contact, social,
		p.ProfileImageURL, p.BioImageURL, p.DownloadCvURL, autoEmail, autoPass,
	}, nil
}

// CreateProfile inserts p and fills its id and timestamps.
func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	args, err := profileArgs(p)
	if err != nil {
		return fmt.Errorf("CreateProfile: %w", err)
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, firstname, lastname, intro, jobs, bio, contact_details, social_accounts,
			profile_image_url, bio_image_url, download_cv_url, auto_email, auto_email_passcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`, append([]any{p.ID}, args...)...).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classify("CreateProfile", err)
	}
	return nil
}

// GetProfileByID returns the profile with the given id.
func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if !validID(id) {
		return nil, fmt.Errorf("GetProfileByID: %w", apperr.ErrNotFound)
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		return nil, classify("GetProfileByID", err)
	}
	return p, nil
}

// UpdateProfile overwrites every mutable column of the profile with p.ID.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if !validID(p.ID) {
		return fmt.Errorf("UpdateProfile: %w", apperr.ErrNotFound)
	}
	args, err := profileArgs(p)
	if err != nil {
		return fmt.Errorf("UpdateProfile: %w", err)
	}
	err = r.DB.QueryRowContext(ctx, `
		UPDATE profiles SET email = $2, firstname = $3, lastname = $4, intro = $5, jobs = $6, bio = $7,
			contact_details = $8, social_accounts = $9, profile_image_url = $10, bio_image_url = $11,
			download_cv_url = $12, auto_email = $13, auto_email_passcode = $14, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, append([]any{p.ID}, args...)...).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classify("UpdateProfile", err)
	}
	return nil
}

// DeleteProfile removes the profile. Resumes, projects and contact messages
// that reference it are left untouched.
func (r *PostgresProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("DeleteProfile: %w", apperr.ErrNotFound)
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return classify("DeleteProfile", err)
	}
	return checkAffected("DeleteProfile", res)
}
