package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProfileRepo struct {
	CreateProfileFunc  func(ctx context.Context, p *models.Profile) error
	GetProfileByIDFunc func(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfileFunc  func(ctx context.Context, p *models.Profile) error
	DeleteProfileFunc  func(ctx context.Context, id string) error
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	return m.CreateProfileFunc(ctx, p)
}
func (m *mockProfileRepo) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return m.GetProfileByIDFunc(ctx, id)
}
func (m *mockProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	return m.UpdateProfileFunc(ctx, p)
}
func (m *mockProfileRepo) DeleteProfile(ctx context.Context, id string) error {
	return m.DeleteProfileFunc(ctx, id)
}

// profilesWith returns a repository that knows exactly the given profiles.
func profilesWith(profiles ...*models.Profile) *mockProfileRepo {
	return &mockProfileRepo{
		GetProfileByIDFunc: func(ctx context.Context, id string) (*models.Profile, error) {
			for _, p := range profiles {
				if p.ID == id {
					cp := *p
					return &cp, nil
				}
			}
			return nil, apperr.ErrNotFound
		},
	}
}

type mockResumeRepo struct {
	CreateResumeFunc            func(ctx context.Context, r *models.Resume) error
	GetResumeByProfileIDFunc    func(ctx context.Context, profileID string) (*models.Resume, error)
	UpdateResumeFunc            func(ctx context.Context, r *models.Resume) error
	DeleteResumeByProfileIDFunc func(ctx context.Context, profileID string) error
}

func (m *mockResumeRepo) CreateResume(ctx context.Context, r *models.Resume) error {
	return m.CreateResumeFunc(ctx, r)
}
func (m *mockResumeRepo) GetResumeByProfileID(ctx context.Context, profileID string) (*models.Resume, error) {
	return m.GetResumeByProfileIDFunc(ctx, profileID)
}
func (m *mockResumeRepo) UpdateResume(ctx context.Context, r *models.Resume) error {
	return m.UpdateResumeFunc(ctx, r)
}
func (m *mockResumeRepo) DeleteResumeByProfileID(ctx context.Context, profileID string) error {
	return m.DeleteResumeByProfileIDFunc(ctx, profileID)
}

type mockProjectRepo struct {
	CreateProjectsFunc          func(ctx context.Context, profileID string, projects []models.Project) error
	ListProjectsByProfileIDFunc func(ctx context.Context, profileID string) ([]models.Project, error)
	GetProjectByIDFunc          func(ctx context.Context, id string) (*models.Project, error)
	UpdateProjectFunc           func(ctx context.Context, p *models.Project) error
	DeleteProjectFunc           func(ctx context.Context, id string) error
}

func (m *mockProjectRepo) CreateProjects(ctx context.Context, profileID string, projects []models.Project) error {
	return m.CreateProjectsFunc(ctx, profileID, projects)
}
func (m *mockProjectRepo) ListProjectsByProfileID(ctx context.Context, profileID string) ([]models.Project, error) {
	return m.ListProjectsByProfileIDFunc(ctx, profileID)
}
func (m *mockProjectRepo) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	return m.GetProjectByIDFunc(ctx, id)
}
func (m *mockProjectRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	return m.UpdateProjectFunc(ctx, p)
}
func (m *mockProjectRepo) DeleteProject(ctx context.Context, id string) error {
	return m.DeleteProjectFunc(ctx, id)
}

func TestProfileService_Get(t *testing.T) {
	svc := NewProfileService(profilesWith(&models.Profile{ID: "p1", Email: "o@x.com"}))

	p, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "o@x.com", p.Email)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, MsgProfileNotFound, apperr.Message(err, ""))
}

func TestProfileService_CreateKeepsEmailCase(t *testing.T) {
	repo := &mockProfileRepo{
		CreateProfileFunc: func(ctx context.Context, p *models.Profile) error {
			p.ID = "p1"
			return nil
		},
	}
	got, err := NewProfileService(repo).Create(context.Background(), &models.Profile{Email: "Owner@X.com"})
	require.NoError(t, err)
	assert.Equal(t, "Owner@X.com", got.Email)
	assert.Equal(t, "p1", got.ID)
}

func TestProfileService_CreateConflict(t *testing.T) {
	repo := &mockProfileRepo{
		CreateProfileFunc: func(ctx context.Context, p *models.Profile) error {
			return apperr.ErrConflict
		},
	}
	_, err := NewProfileService(repo).Create(context.Background(), &models.Profile{Email: "Owner@X.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, MsgProfileExists, apperr.Message(err, ""))
}

func TestProfileService_UpdateAppliesChange(t *testing.T) {
	repo := profilesWith(&models.Profile{ID: "p1", Email: "o@x.com", Intro: "old", Bio: "bio"})
	var saved *models.Profile
	repo.UpdateProfileFunc = func(ctx context.Context, p *models.Profile) error {
		saved = p
		return nil
	}
	svc := NewProfileService(repo)

	got, err := svc.Update(context.Background(), "p1", func(p *models.Profile) error {
		p.Intro = "new"
		p.ID = "tampered"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "new", saved.Intro)
	assert.Equal(t, "bio", saved.Bio)
}

func TestProfileService_UpdateRejectedByApply(t *testing.T) {
	repo := profilesWith(&models.Profile{ID: "p1"})
	repo.UpdateProfileFunc = func(ctx context.Context, p *models.Profile) error {
		t.Fatal("UpdateProfile must not be called")
		return nil
	}
	wantErr := apperr.New(apperr.ErrBadRequest, "bad")
	_, err := NewProfileService(repo).Update(context.Background(), "p1", func(*models.Profile) error { return wantErr })
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestProfileService_UpdateEmailConflict(t *testing.T) {
	repo := profilesWith(&models.Profile{ID: "p1"})
	repo.UpdateProfileFunc = func(ctx context.Context, p *models.Profile) error {
		return apperr.ErrConflict
	}
	_, err := NewProfileService(repo).Update(context.Background(), "p1", func(*models.Profile) error { return nil })
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestProfileService_Delete(t *testing.T) {
	repo := &mockProfileRepo{
		DeleteProfileFunc: func(ctx context.Context, id string) error {
			if id == "p1" {
				return nil
			}
			return apperr.ErrNotFound
		},
	}
	svc := NewProfileService(repo)
	assert.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "p2"), apperr.ErrNotFound)
}

func TestResumeService_MissingProfile(t *testing.T) {
	svc := NewResumeService(profilesWith(), &mockResumeRepo{})
	ctx := context.Background()

	_, err := svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.Equal(t, MsgInvalidProfileID, apperr.Message(err, ""))

	_, err = svc.Create(ctx, "nope", &models.Resume{})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	assert.ErrorIs(t, svc.Delete(ctx, "nope"), apperr.ErrBadRequest)
}

func TestResumeService_CreateAndConflict(t *testing.T) {
	calls := 0
	repo := &mockResumeRepo{
		CreateResumeFunc: func(ctx context.Context, r *models.Resume) error {
			calls++
			if r.ProfileID != "p1" {
				t.Errorf("CreateResume received profile %q; want p1", r.ProfileID)
			}
			if calls > 1 {
				return apperr.ErrConflict
			}
			return nil
		},
	}
	svc := NewResumeService(profilesWith(&models.Profile{ID: "p1"}), repo)

	_, err := svc.Create(context.Background(), "p1", &models.Resume{ProfileID: "other"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "p1", &models.Resume{})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, MsgResumeExists, apperr.Message(err, ""))
}

func TestResumeService_UpdateMissingResume(t *testing.T) {
	repo := &mockResumeRepo{
		GetResumeByProfileIDFunc: func(ctx context.Context, profileID string) (*models.Resume, error) {
			return nil, apperr.ErrNotFound
		},
	}
	svc := NewResumeService(profilesWith(&models.Profile{ID: "p1"}), repo)
	_, err := svc.Update(context.Background(), "p1", func(*models.Resume) error { return nil })
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, MsgResumeNotFound, apperr.Message(err, ""))
}

func TestResumeService_DeleteMissingIsNoop(t *testing.T) {
	called := false
	repo := &mockResumeRepo{
		DeleteResumeByProfileIDFunc: func(ctx context.Context, profileID string) error {
			called = true
			return nil
		},
	}
	svc := NewResumeService(profilesWith(&models.Profile{ID: "p1"}), repo)
	assert.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.True(t, called)
}

func TestProjectService_CreateBatch(t *testing.T) {
	repo := &mockProjectRepo{
		CreateProjectsFunc: func(ctx context.Context, profileID string, projects []models.Project) error {
			for i := range projects {
				if projects[i].ID != "" {
					t.Errorf("project %d kept client id %q", i, projects[i].ID)
				}
				projects[i].ID = "generated"
				projects[i].ProfileID = profileID
			}
			return nil
		},
	}
	svc := NewProjectService(profilesWith(&models.Profile{ID: "p1"}), repo)

	got, err := svc.CreateBatch(context.Background(), "p1", []models.Project{{ID: "client", Title: "a"}, {Title: "b"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[1].ProfileID)

	_, err = svc.CreateBatch(context.Background(), "p1", nil)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.CreateBatch(context.Background(), "ghost", []models.Project{{Title: "a"}})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestProjectService_GetUpdate(t *testing.T) {
	repo := &mockProjectRepo{
		GetProjectByIDFunc: func(ctx context.Context, id string) (*models.Project, error) {
			if id != "pr1" {
				return nil, apperr.ErrNotFound
			}
			return &models.Project{ID: "pr1", ProfileID: "p1", Title: "old", Tools: []string{"go"}}, nil
		},
		UpdateProjectFunc: func(ctx context.Context, p *models.Project) error { return nil },
	}
	svc := NewProjectService(profilesWith(), repo)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, MsgProjectNotFound, apperr.Message(err, ""))

	got, err := svc.Update(context.Background(), "pr1", func(p *models.Project) error {
		p.Title = "new"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, []string{"go"}, got.Tools)
}

func TestProjectService_Delete(t *testing.T) {
	var deleted string
	repo := &mockProjectRepo{
		DeleteProjectFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewProjectService(profilesWith(&models.Profile{ID: "p1"}), repo)

	require.NoError(t, svc.Delete(context.Background(), "p1", "pr1"))
	assert.Equal(t, "pr1", deleted)
	assert.ErrorIs(t, svc.Delete(context.Background(), "ghost", "pr1"), apperr.ErrBadRequest)
}

func TestProjectService_ListFault(t *testing.T) {
	repo := &mockProjectRepo{
		ListProjectsByProfileIDFunc: func(ctx context.Context, profileID string) ([]models.Project, error) {
			return nil, errors.New("db down")
		},
	}
	_, err := NewProjectService(profilesWith(), repo).List(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, apperr.IsFault(err))
}
