package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfileService defines the profile operations used by ProfileHandler.
type ProfileService interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	Update(ctx context.Context, id string, apply func(*models.Profile) error) (*models.Profile, error)
	Delete(ctx context.Context, id string) error
}

// ProfileHandler serves /profiles.
type ProfileHandler struct {
	ProfileService ProfileService
	Log            *zap.Logger
}

// EmailCredentialsRequest is a mailbox login for contact mail.
type EmailCredentialsRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Passcode string `json:"passcode"`
}

// ProfileRequest is the JSON payload of profile create and update.
type ProfileRequest struct {
	Email                string                   `json:"email" validate:"required,email"`
	Firstname            string                   `json:"firstname" validate:"required"`
	Lastname             string                   `json:"lastname" validate:"required"`
	Intro                string                   `json:"intro" validate:"required"`
	Jobs                 []string                 `json:"jobs" validate:"required,min=1,dive,required"`
	Bio                  string                   `json:"bio" validate:"required"`
	ContactDetails       models.ContactDetails    `json:"contactDetails" validate:"required"`
	SocialAccounts       models.SocialAccounts    `json:"socialAccounts"`
	ProfileImageURL      string                   `json:"profileImageUrl" validate:"required,url"`
	BioImageURL          string                   `json:"bioImageUrl" validate:"required,url"`
	DownloadCvURL        string                   `json:"downloadCvUrl" validate:"required,url"`
	AutoEmailCredentials *EmailCredentialsRequest `json:"autoEmailCredentials,omitempty"`
}

func profileRequestFrom(p *models.Profile) ProfileRequest {
	req := ProfileRequest{
		Email:           p.Email,
		Firstname:       p.Firstname,
		Lastname:        p.Lastname,
		Intro:           p.Intro,
		Jobs:            p.Jobs,
		Bio:             p.Bio,
		ContactDetails:  p.ContactDetails,
		SocialAccounts:  p.SocialAccounts,
		ProfileImageURL: p.ProfileImageURL,
		BioImageURL:     p.BioImageURL,
		DownloadCvURL:   p.DownloadCvURL,
	}
	if c := p.AutoEmailCredentials; c != nil {
		req.AutoEmailCredentials = &EmailCredentialsRequest{Email: c.Email, Passcode: c.Passcode}
	}
	return req
}

func (req *ProfileRequest) applyTo(p *models.Profile) {
	p.Email = req.Email
	p.Firstname = req.Firstname
	p.Lastname = req.Lastname
	p.Intro = req.Intro
	p.Jobs = req.Jobs
	p.Bio = req.Bio
	p.ContactDetails = req.ContactDetails
	p.SocialAccounts = req.SocialAccounts
	p.ProfileImageURL = req.ProfileImageURL
	p.BioImageURL = req.BioImageURL
	p.DownloadCvURL = req.DownloadCvURL
	p.AutoEmailCredentials = nil
	if c := req.AutoEmailCredentials; c != nil {
		p.AutoEmailCredentials = &models.EmailCredentials{Email: c.Email, Passcode: c.Passcode}
	}
}

// Get answers GET /profiles/{profileId}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.Get(r.Context(), chi.URLParam(r, "profileId"))
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// Create answers POST /profiles.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	var p models.Profile
	req.applyTo(&p)

	created, err := h.ProfileService.Create(r.Context(), &p)
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update answers PUT /profiles/{profileId}. Fields missing from the body
// keep their stored value; the merged profile must pass the create rules.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	updated, err := h.ProfileService.Update(r.Context(), chi.URLParam(r, "profileId"), func(p *models.Profile) error {
		req := profileRequestFrom(p)
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

// Delete answers DELETE /profiles/{profileId}. Admin only.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	if err := h.ProfileService.Delete(r.Context(), chi.URLParam(r, "profileId")); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
