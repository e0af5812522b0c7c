package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectService defines the project operations used by ProjectHandler.
type ProjectService interface {
	List(ctx context.Context, profileID string) ([]models.Project, error)
	Get(ctx context.Context, projectID string) (*models.Project, error)
	CreateBatch(ctx context.Context, profileID string, projects []models.Project) ([]models.Project, error)
	Update(ctx context.Context, projectID string, apply func(*models.Project) error) (*models.Project, error)
	Delete(ctx context.Context, profileID, projectID string) error
}

// ProjectHandler serves /profiles/{profileId}/projects.
type ProjectHandler struct {
	ProjectService ProjectService
	Log            *zap.Logger
}

// ProjectRequest is the JSON payload of a single project.
type ProjectRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	ImageURL      string   `json:"imageUrl" validate:"required,url"`
	Tools         []string `json:"tools" validate:"required,min=1,dive,required"`
	SourceCodeURL string   `json:"sourceCodeUrl" validate:"omitempty,url"`
	LiveURL       string   `json:"liveUrl" validate:"omitempty,url"`
}

// projectBatch wraps the array body of a batch create for validation.
type projectBatch struct {
	Projects []ProjectRequest `json:"projects" validate:"required,min=1,dive"`
}

func (req *ProjectRequest) applyTo(p *models.Project) {
	p.Title = req.Title
	p.Description = req.Description
	p.ImageURL = req.ImageURL
	p.Tools = req.Tools
	p.SourceCodeURL = req.SourceCodeURL
	p.LiveURL = req.LiveURL
}

// List answers GET /profiles/{profileId}/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.ProjectService.List(r.Context(), chi.URLParam(r, "profileId"))
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, projects)
}

// Get answers GET /profiles/{profileId}/projects/{projectId}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProjectService.Get(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// Create answers POST /profiles/{profileId}/projects. The body is a JSON
// array; all projects are stored or none.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	var batch projectBatch
	if err := decodeJSON(w, r, &batch.Projects); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	if err := validateRequest(&batch); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	projects := make([]models.Project, len(batch.Projects))
	for i := range batch.Projects {
		batch.Projects[i].applyTo(&projects[i])
	}

	created, err := h.ProjectService.CreateBatch(r.Context(), chi.URLParam(r, "profileId"), projects)
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update answers PUT /profiles/{profileId}/projects/{projectId}. Fields
// missing from the body keep their stored value.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	updated, err := h.ProjectService.Update(r.Context(), chi.URLParam(r, "projectId"), func(p *models.Project) error {
		req := ProjectRequest{
			Title:         p.Title,
			Description:   p.Description,
			ImageURL:      p.ImageURL,
			Tools:         p.Tools,
			SourceCodeURL: p.SourceCodeURL,
			LiveURL:       p.LiveURL,
		}
		if err := decodeJSON(w, r, &req); err != nil {
			return err
		}
		if err := validateRequest(&req); err != nil {
			return err
		}
		req.applyTo(p)
		return nil
	})
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete answers DELETE /profiles/{profileId}/projects/{projectId}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	err := h.ProjectService.Delete(r.Context(), chi.URLParam(r, "profileId"), chi.URLParam(r, "projectId"))
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
