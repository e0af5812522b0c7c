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

const projectColumns = `id, profile_id, title, description, image_url, tools, source_code_url, live_url, created_at, updated_at`

// PostgresProjectRepository stores projects.
type PostgresProjectRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresProjectRepository creates a PostgresProjectRepository.
func NewPostgresProjectRepository(db *sql.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.ProfileID, &p.Title, &p.Description, &p.ImageURL, pq.Array(&p.Tools),
		&p.SourceCodeURL, &p.LiveURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProjects inserts all projects for profileID in one transaction.
// Either every project is stored or none is.
//
//	ctx:       context for cancellation and deadlines
//	profileID: owning profile
//	projects:  projects to insert; ids and timestamps are filled in place
func (r *PostgresProjectRepository) CreateProjects(ctx context.Context, profileID string, projects []models.Project) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range projects {
		p := &projects[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.ProfileID = profileID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO projects (id, profile_id, title, description, image_url, tools, source_code_url, live_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`, p.ID, p.ProfileID, p.Title, p.Description, p.ImageURL, pq.Array(p.Tools), p.SourceCodeURL, p.LiveURL,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return classify("CreateProjects", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListProjectsByProfileID returns the projects of profileID, oldest first.
func (r *PostgresProjectRepository) ListProjectsByProfileID(ctx context.Context, profileID string) ([]models.Project, error) {
	projects := []models.Project{}
	if !validID(profileID) {
		return projects, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE profile_id = $1 ORDER BY created_at, id
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("ListProjectsByProfileID: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListProjectsByProfileID: %w", err)
	}
	return projects, nil
}

// GetProjectByID returns a single project.
func (r *PostgresProjectRepository) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	if !validID(id) {
		return nil, fmt.Errorf("GetProjectByID: %w", apperr.ErrNotFound)
	}
	p, err := scanProject(r.DB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, classify("GetProjectByID", err)
	}
	return p, nil
}

// UpdateProject overwrites the mutable columns of the project with p.ID.
func (r *PostgresProjectRepository) UpdateProject(ctx context.Context, p *models.Project) error {
	if !validID(p.ID) {
		return fmt.Errorf("UpdateProject: %w", apperr.ErrNotFound)
	}
	err := r.DB.QueryRowContext(ctx, `
		UPDATE projects SET title = $2, description = $3, image_url = $4, tools = $5, source_code_url = $6,
			live_url = $7, updated_at = now()
		WHERE id = $1
		RETURNING profile_id, created_at, updated_at
	`, p.ID, p.Title, p.Description, p.ImageURL, pq.Array(p.Tools), p.SourceCodeURL, p.LiveURL,
	).Scan(&p.ProfileID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classify("UpdateProject", err)
	}
	return nil
}

// DeleteProject removes a project by id. Deleting a missing project is not
// an error.
func (r *PostgresProjectRepository) DeleteProject(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return classify("DeleteProject", err)
	}
	return nil
}
