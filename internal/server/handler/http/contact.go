package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"go.uber.org/zap"
)

// ContactService defines the contact notifier used by ContactHandler.
type ContactService interface {
	ContactMe(ctx context.Context, in models.ContactInput) error
}

// ContactHandler serves POST /contact.
type ContactHandler struct {
	ContactService ContactService
	Log            *zap.Logger
}

// ContactRequest is the JSON payload of the contact form.
type ContactRequest struct {
	SenderEmail string `json:"senderEmail" validate:"required,email"`
	SenderName  string `json:"senderName" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Message     string `json:"message" validate:"required"`
	ToProfileID string `json:"toProfileId" validate:"required"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Contact mails the visitor and the profile owner.
func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}

	err := h.ContactService.ContactMe(r.Context(), models.ContactInput{
		SenderEmail: req.SenderEmail,
		SenderName:  req.SenderName,
		Subject:     req.Subject,
		Message:     req.Message,
		ToProfileID: req.ToProfileID,
	})
	switch {
	case err == nil:
		middleware.RecordContact("sent")
	case errors.Is(err, apperr.ErrBadRequest):
		middleware.RecordContact("rejected")
	default:
		middleware.RecordContact("failed")
	}
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Email sent successfully."})
}
