package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
)

// Client-facing messages of the portfolio stores.
const (
	MsgInvalidProfileID = "Invalid Profile ID"
	MsgProfileNotFound  = "Profile not found."
	MsgProfileExists    = "Profile with this email already exists. Try creating with another email"
	MsgResumeNotFound   = "Resume not found."
	MsgResumeExists     = "Resume already exists for this profile."
	MsgProjectNotFound  = "Project not found."
)

// ProfileRepository persists profiles.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	DeleteProfile(ctx context.Context, id string) error
}

// ResumeRepository persists resumes keyed by their owning profile.
type ResumeRepository interface {
	CreateResume(ctx context.Context, r *models.Resume) error
	GetResumeByProfileID(ctx context.Context, profileID string) (*models.Resume, error)
	UpdateResume(ctx context.Context, r *models.Resume) error
	DeleteResumeByProfileID(ctx context.Context, profileID string) error
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	CreateProjects(ctx context.Context, profileID string, projects []models.Project) error
	ListProjectsByProfileID(ctx context.Context, profileID string) ([]models.Project, error)
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// kindOr re-labels err with msg when it is of the given kind, and wraps it
// as a fault of op otherwise.
func kindOr(err error, kind error, msg, op string) error {
	if errors.Is(err, kind) {
		return apperr.Wrap(kind, msg, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ProfileService manages portfolio profiles.
type ProfileService struct {
	repo ProfileRepository
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the profile with the given id.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		return nil, kindOr(err, apperr.ErrNotFound, MsgProfileNotFound, "get profile")
	}
	return p, nil
}

// Create stores a new profile. The email is kept as given and must not
// belong to another profile in any letter case.
func (s *ProfileService) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	p.ID = ""
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return nil, kindOr(err, apperr.ErrConflict, MsgProfileExists, "create profile")
	}
	return p, nil
}

// Update loads the profile, lets apply modify it and stores the result.
// apply receives the current record and may reject it with an error.
func (s *ProfileService) Update(ctx context.Context, id string, apply func(*models.Profile) error) (*models.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, MsgProfileNotFound, err)
		}
		return nil, kindOr(err, apperr.ErrConflict, MsgProfileExists, "update profile")
	}
	return p, nil
}

// Delete removes the profile. Its resume and projects are kept.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteProfile(ctx, id); err != nil {
		return kindOr(err, apperr.ErrNotFound, MsgProfileNotFound, "delete profile")
	}
	return nil
}

// requireProfile answers BadRequest when profileID names no profile.
func requireProfile(ctx context.Context, profiles ProfileRepository, profileID string) error {
	_, err := profiles.GetProfileByID(ctx, profileID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.New(apperr.ErrBadRequest, MsgInvalidProfileID)
	default:
		return fmt.Errorf("get profile: %w", err)
	}
}

// ResumeService manages the single resume of each profile.
type ResumeService struct {
	profiles ProfileRepository
	repo     ResumeRepository
}

// NewResumeService constructs a ResumeService.
func NewResumeService(profiles ProfileRepository, repo ResumeRepository) *ResumeService {
	return &ResumeService{profiles: profiles, repo: repo}
}

// Get returns the resume of profileID.
func (s *ResumeService) Get(ctx context.Context, profileID string) (*models.Resume, error) {
	if err := requireProfile(ctx, s.profiles, profileID); err != nil {
		return nil, err
	}
	r, err := s.repo.GetResumeByProfileID(ctx, profileID)
	if err != nil {
		return nil, kindOr(err, apperr.ErrNotFound, MsgResumeNotFound, "get resume")
	}
	return r, nil
}

// Create stores the resume of profileID. A profile has at most one resume.
func (s *ResumeService) Create(ctx context.Context, profileID string, r *models.Resume) (*models.Resume, error) {
	if err := requireProfile(ctx, s.profiles, profileID); err != nil {
		return nil, err
	}
	r.ID = ""
	r.ProfileID = profileID
	if err := s.repo.CreateResume(ctx, r); err != nil {
		return nil, kindOr(err, apperr.ErrConflict, MsgResumeExists, "create resume")
	}
	return r, nil
}

// Update loads the resume of profileID, applies the change and stores it.
func (s *ResumeService) Update(ctx context.Context, profileID string, apply func(*models.Resume) error) (*models.Resume, error) {
	r, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	r.ProfileID = profileID
	if err := s.repo.UpdateResume(ctx, r); err != nil {
		return nil, kindOr(err, apperr.ErrNotFound, MsgResumeNotFound, "update resume")
	}
	return r, nil
}

// Delete removes the resume of profileID. A missing resume is not an error.
func (s *ResumeService) Delete(ctx context.Context, profileID string) error {
	if err := requireProfile(ctx, s.profiles, profileID); err != nil {
		return err
	}
	if err := s.repo.DeleteResumeByProfileID(ctx, profileID); err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	return nil
}

// ProjectService manages the projects of a profile.
type ProjectService struct {
	profiles ProfileRepository
	repo     ProjectRepository
}

// NewProjectService constructs a ProjectService.
func NewProjectService(profiles ProfileRepository, repo ProjectRepository) *ProjectService {
	return &ProjectService{profiles: profiles, repo: repo}
}

// List returns the projects of profileID, oldest first. An unknown profile
// has no projects.
func (s *ProjectService) List(ctx context.Context, profileID string) ([]models.Project, error) {
	projects, err := s.repo.ListProjectsByProfileID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Get returns a single project.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, kindOr(err, apperr.ErrNotFound, MsgProjectNotFound, "get project")
	}
	return p, nil
}

// CreateBatch stores all projects for profileID atomically.
func (s *ProjectService) CreateBatch(ctx context.Context, profileID string, projects []models.Project) ([]models.Project, error) {
	if err := requireProfile(ctx, s.profiles, profileID); err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, apperr.New(apperr.ErrBadRequest, "at least one project is required")
	}
	for i := range projects {
		projects[i].ID = ""
	}
	if err := s.repo.CreateProjects(ctx, profileID, projects); err != nil {
		return nil, fmt.Errorf("create projects: %w", err)
	}
	return projects, nil
}

// Update loads the project, applies the change and stores it.
func (s *ProjectService) Update(ctx context.Context, projectID string, apply func(*models.Project) error) (*models.Project, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	p.ID = projectID
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, kindOr(err, apperr.ErrNotFound, MsgProjectNotFound, "update project")
	}
	return p, nil
}

// Delete removes a project of profileID. The profile must exist; a missing
// project is not an error.
func (s *ProjectService) Delete(ctx context.Context, profileID, projectID string) error {
	if err := requireProfile(ctx, s.profiles, profileID); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
