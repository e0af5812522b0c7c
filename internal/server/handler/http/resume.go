package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ResumeService defines the resume operations used by ResumeHandler.
type ResumeService interface {
	Get(ctx context.Context, profileID string) (*models.Resume, error)
	Create(ctx context.Context, profileID string, r *models.Resume) (*models.Resume, error)
	Update(ctx context.Context, profileID string, apply func(*models.Resume) error) (*models.Resume, error)
	Delete(ctx context.Context, profileID string) error
}

// ResumeHandler serves /profiles/{profileId}/resume.
type ResumeHandler struct {
	ResumeService ResumeService
	Log           *zap.Logger
}

// ResumeRequest is the JSON payload of resume create and update.
type ResumeRequest struct {
	WorkExperiences []models.WorkExperience `json:"workExperiences" validate:"omitempty,dive"`
	TechnicalSkills []models.TechnicalSkill `json:"technicalSkills" validate:"omitempty,dive"`
	Educations      []models.Education      `json:"educations" validate:"omitempty,dive"`
	Certifications  []models.Certification  `json:"certifications" validate:"omitempty,dive"`
}

func (req *ResumeRequest) applyTo(rs *models.Resume) {
	rs.WorkExperiences = req.WorkExperiences
	rs.TechnicalSkills = req.TechnicalSkills
	rs.Educations = req.Educations
	rs.Certifications = req.Certifications
}

// Get answers GET /profiles/{profileId}/resume.
func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rs, err := h.ResumeService.Get(r.Context(), chi.URLParam(r, "profileId"))
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rs)
}

// Create answers POST /profiles/{profileId}/resume.
func (h *ResumeHandler) Create(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	var req ResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	var rs models.Resume
	req.applyTo(&rs)

	created, err := h.ResumeService.Create(r.Context(), chi.URLParam(r, "profileId"), &rs)
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update answers PUT /profiles/{profileId}/resume. Sections missing from the
// body are kept.
func (h *ResumeHandler) Update(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	updated, err := h.ResumeService.Update(r.Context(), chi.URLParam(r, "profileId"), func(rs *models.Resume) error {
		req := ResumeRequest{
			WorkExperiences: rs.WorkExperiences,
			TechnicalSkills: rs.TechnicalSkills,
			Educations:      rs.Educations,
			Certifications:  rs.Certifications,
		}
		if err := decodeJSON(w, r, &req); err != nil {
			return err
		}
		if err := validateRequest(&req); err != nil {
			return err
		}
		req.applyTo(rs)
		return nil
	})
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete answers DELETE /profiles/{profileId}/resume.
func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	if err := h.ResumeService.Delete(r.Context(), chi.URLParam(r, "profileId")); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
