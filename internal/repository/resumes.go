package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/google/uuid"
)

// PostgresResumeRepository stores resumes, at most one per profile.
type PostgresResumeRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresResumeRepository creates a PostgresResumeRepository.
func NewPostgresResumeRepository(db *sql.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{DB: db}
}

func resumeArgs(rs *models.Resume) ([]any, error) {
	args := make([]any, 0, 4)
	for _, section := range []any{rs.WorkExperiences, rs.TechnicalSkills, rs.Educations, rs.Certifications} {
		b, err := toJSON(section)
		if err != nil {
			return nil, err
		}
		args = append(args, b)
	}
	return args, nil
}

// CreateResume inserts rs. A second resume for the same profile violates
// resumes_profile_id_key and is reported as apperr.ErrConflict.
func (r *PostgresResumeRepository) CreateResume(ctx context.Context, rs *models.Resume) error {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	args, err := resumeArgs(rs)
	if err != nil {
		return fmt.Errorf("CreateResume: %w", err)
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO resumes (id, profile_id, work_experiences, technical_skills, educations, certifications)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, append([]any{rs.ID, rs.ProfileID}, args...)...).Scan(&rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return classify("CreateResume", err)
	}
	return nil
}

// GetResumeByProfileID returns the resume owned by profileID.
func (r *PostgresResumeRepository) GetResumeByProfileID(ctx context.Context, profileID string) (*models.Resume, error) {
	if !validID(profileID) {
		return nil, fmt.Errorf("GetResumeByProfileID: %w", apperr.ErrNotFound)
	}
	var (
		rs                       models.Resume
		work, skills, edu, certs []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, profile_id, work_experiences, technical_skills, educations, certifications, created_at, updated_at
		FROM resumes WHERE profile_id = $1
	`, profileID).Scan(&rs.ID, &rs.ProfileID, &work, &skills, &edu, &certs, &rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return nil, classify("GetResumeByProfileID", err)
	}
	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{work, &rs.WorkExperiences},
		{skills, &rs.TechnicalSkills},
		{edu, &rs.Educations},
		{certs, &rs.Certifications},
	} {
		if err := fromJSON(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("GetResumeByProfileID: %w", err)
		}
	}
	return &rs, nil
}

// UpdateResume overwrites the sections of the resume owned by rs.ProfileID.
func (r *PostgresResumeRepository) UpdateResume(ctx context.Context, rs *models.Resume) error {
	if !validID(rs.ProfileID) {
		return fmt.Errorf("UpdateResume: %w", apperr.ErrNotFound)
	}
	args, err := resumeArgs(rs)
	if err != nil {
		return fmt.Errorf("UpdateResume: %w", err)
	}
	err = r.DB.QueryRowContext(ctx, `
		UPDATE resumes SET work_experiences = $2, technical_skills = $3, educations = $4, certifications = $5,
			updated_at = now()
		WHERE profile_id = $1
		RETURNING id, created_at, updated_at
	`, append([]any{rs.ProfileID}, args...)...).Scan(&rs.ID, &rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return classify("UpdateResume", err)
	}
	return nil
}

// DeleteResumeByProfileID removes the resume owned by profileID. Deleting a
// missing resume is not an error.
func (r *PostgresResumeRepository) DeleteResumeByProfileID(ctx context.Context, profileID string) error {
	if !validID(profileID) {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE profile_id = $1`, profileID); err != nil {
		return classify("DeleteResumeByProfileID", err)
	}
	return nil
}
