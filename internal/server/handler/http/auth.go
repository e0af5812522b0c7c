// Package http provides the HTTP handlers and router of the portfolio API.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/atinyakov/portfolio-api/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// SignUp creates an account and returns its public projection.
	SignUp(ctx context.Context, in service.SignUpInput) (models.UserSummary, error)
	// Login returns a signed access token for valid credentials.
	Login(ctx context.Context, email, password string) (string, error)
	// Logout revokes the token until it expires.
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Log receives faults.
	Log *zap.Logger
}

// SignupRequest is the JSON payload of POST /auth/signup.
type SignupRequest struct {
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,strongpassword,bcryptlen"`
	Firstname string      `json:"firstname" validate:"required"`
	Lastname  string      `json:"lastname" validate:"required"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// LoginRequest is the JSON payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupResponse is returned on a successful signup.
type SignupResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Signup creates an account. It answers 201 with the account summary, 409
// when the email is taken and 400 on an invalid payload.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}

	user, err := h.AuthService.SignUp(r.Context(), service.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
	})
	middleware.RecordAuthAttempt("signup", err == nil)
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, SignupResponse{Message: "User Created Successful", User: user})
}

// Login exchanges credentials for an access token. Unknown emails answer
// 404 and wrong passwords 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	middleware.RecordAuthAttempt("login", err == nil)
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
}

// Logout revokes the bearer token of the request. It runs behind the guard,
// so the token is known to be valid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	token, _ := middleware.BearerToken(r)
	err := h.AuthService.Logout(r.Context(), token)
	middleware.RecordAuthAttempt("logout", err == nil)
	if err != nil {
		middleware.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
